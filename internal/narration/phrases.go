package narration

import (
	"github.com/kjstillabower/krishivani/internal/advisory"
	"github.com/kjstillabower/krishivani/internal/language"
	"github.com/kjstillabower/krishivani/internal/models"
)

var englishBundle = &Bundle{
	Code:             language.English,
	UnknownCondition: "unknown conditions",
	Current: CurrentPhrases{
		Intro:       "Good day! Here is the current weather for %s. ",
		Temperature: "The temperature is %d degrees Celsius. ",
		Conditions:  "Weather conditions are %s. ",
		FeelsLike:   "It feels like %d degrees. ",
		Humidity:    "Humidity is %d percent. ",
		Wind:        "Wind speed is %d meters per second. ",
		Comfort: map[advisory.Comfort]string{
			advisory.ComfortHot:   "It's very hot today. Stay hydrated and avoid direct sunlight. ",
			advisory.ComfortCold:  "It's quite cold. Wear warm clothes. ",
			advisory.ComfortHumid: "It's very humid today. ",
			advisory.ComfortWindy: "It's windy today. ",
		},
		Umbrella: "Don't forget to carry an umbrella as it might rain. ",
	},
	Forecast: ForecastPhrases{
		Intro:         "Here is the 5-day weather forecast. ",
		Outro:         "That's your 5-day forecast. Plan your activities accordingly.",
		RelativeDays:  []string{"Today, ", "Tomorrow, "},
		Naming:        NameByWeekday,
		Weekdays:      [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		WeekdayFormat: "On %s, ",
		Day:           "temperature will be %d degrees with %s. ",
		RainChance:    "There is a %d percent chance of rain. ",
		DayTips: map[advisory.DayTip]string{
			advisory.DayTipIndoorWork:     "Good day for indoor farm work. ",
			advisory.DayTipWatering:       "Good day for watering crops. ",
			advisory.DayTipColdProtection: "Protect sensitive plants from cold. ",
		},
	},
	DayDetail: &DayDetailPhrases{
		NotAvailable: "Weather information not available for that day.",
		Intro:        "Detailed forecast for %s. ",
		Morning:      "In the morning, temperature will be %d degrees with %s. ",
		Afternoon:    "In the afternoon, %d degrees with %s. ",
		Evening:      "In the evening, %d degrees with %s. ",
		HighLow:      "Daily high will be %d degrees, low %d degrees. ",
		Humidity:     "Average humidity %d percent. ",
	},
	NoData: NoDataPhrases{
		Current:  "Weather data is not available. Please refresh and try again.",
		Forecast: "Weather forecast is not available. Please refresh and try again.",
	},
}

var hindiBundle = &Bundle{
	Code: language.Hindi,
	Conditions: map[models.Condition]string{
		models.ConditionClear:        "साफ",
		models.ConditionClouds:       "बादल",
		models.ConditionRain:         "बारिश",
		models.ConditionDrizzle:      "फुहार",
		models.ConditionThunderstorm: "तूफान",
		models.ConditionSnow:         "बर्फ",
		models.ConditionMist:         "कोहरा",
		models.ConditionFog:          "कोहरा",
	},
	UnknownCondition: "सामान्य",
	Current: CurrentPhrases{
		Intro:       "नमस्कार! यहाँ है %s का मौसम। ",
		Temperature: "तापमान %d डिग्री सेल्सियस है। ",
		Conditions:  "मौसम %s है। ",
		FeelsLike:   "%d डिग्री जैसा महसूस हो रहा है। ",
		Humidity:    "नमी %d प्रतिशत है। ",
		Wind:        "हवा की गति %d मीटर प्रति सेकंड है। ",
		Comfort: map[advisory.Comfort]string{
			advisory.ComfortHot:   "आज बहुत गर्मी है। पानी पिएं और धूप से बचें। ",
			advisory.ComfortCold:  "आज ठंड है। गर्म कपड़े पहनें। ",
			advisory.ComfortHumid: "आज बहुत उमस है। ",
			advisory.ComfortWindy: "आज हवा तेज है। ",
		},
		Umbrella: "छाता ले जाना न भूलें क्योंकि बारिश हो सकती है। ",
	},
	Forecast: ForecastPhrases{
		Intro:         "यहाँ है 5 दिन का मौसम पूर्वानुमान। ",
		Outro:         "यह था आपका 5 दिन का मौसम पूर्वानुमान। अपनी गतिविधियों की योजना बनाएं।",
		RelativeDays:  []string{"आज, ", "कल, ", "परसों, "},
		Naming:        NameByOrdinal,
		OrdinalFormat: "%d दिन बाद, ",
		Day:           "तापमान %d डिग्री होगा और मौसम %s होगा। ",
		RainChance:    "बारिश की %d प्रतिशत संभावना है। ",
	},
	NoData: NoDataPhrases{
		Current:  "मौसम की जानकारी उपलब्ध नहीं है। कृपया रीफ्रेश करें और फिर से कोशिश करें।",
		Forecast: "मौसम पूर्वानुमान उपलब्ध नहीं है। कृपया रीफ्रेश करें और फिर से कोशिश करें।",
	},
}

var teluguBundle = &Bundle{
	Code: language.Telugu,
	Conditions: map[models.Condition]string{
		models.ConditionClear:        "ఆకాశం స్పష్టంగా",
		models.ConditionClouds:       "మేఘాలతో",
		models.ConditionRain:         "వర్షంతో",
		models.ConditionDrizzle:      "చినుకులతో",
		models.ConditionThunderstorm: "ఉరుములు మరియు వర్షంతో",
		models.ConditionSnow:         "మంచుతో",
		models.ConditionMist:         "పొగమంచుతో",
		models.ConditionFog:          "పొగమంచుతో",
		models.ConditionDust:         "దుమ్ముతో",
		models.ConditionHaze:         "మబ్బుతో",
	},
	UnknownCondition: "సాధారణంగా",
	Current: CurrentPhrases{
		Intro:        "నమస్కారం! ఇది %s వాతావరణ వివరాలు. ",
		Temperature:  "ఈరోజు ఉష్ణోగ్రత %d డిగ్రీ సెల్సియస్ ఉంది. ",
		Conditions:   "వాతావరణం %s ఉంది. ",
		FeelsLike:    "%d డిగ్రీల వలె అనిపిస్తోంది. ",
		Humidity:     "గాలిలో తేమ %d శాతం ఉంది. ",
		Wind:         "గాలి వేగం సెకనుకు %d మీటర్లు ఉంది. ",
		AdviceHeader: "వ్యవసాయ సలహాలు: ",
		Comfort: map[advisory.Comfort]string{
			advisory.ComfortHot:   "ఈరోజు చాలా వేడిమిగా ఉంది. నీళ్లు ఎక్కువగా తాగండి మరియు ఎండ వేళల్లో బయటకు వెళ్లవద్దు. ",
			advisory.ComfortCold:  "ఈరోజు చలిగా ఉంది. వెచ్చని బట్టలు ధరించండి. ",
			advisory.ComfortHumid: "ఈరోజు చాలా తేమగా ఉంది. ",
			advisory.ComfortWindy: "ఈరోజు గాలులు వేగంగా ఉన్నాయి. ",
		},
		Umbrella: "వర్షం వచ్చే అవకాశం ఉంది కాబట్టి గొడుగు తీసుకెళ్లండి. ",
	},
	InlineAdvice: true,
	Tips: map[advisory.Tip]string{
		advisory.TipHeatWatering:         "చాలా వేడిగా ఉంది - తెల్లవారుజామున లేదా సాయంత్రం పంటలకు నీళ్లు పోయండి",
		advisory.TipHeatLivestock:        "పశువులను వేడి నుండి కాపాడండి",
		advisory.TipColdCover:            "చలిగా ఉంది - చిన్న మొక్కలను కాపాడండి",
		advisory.TipColdFrost:            "మంచు నుండి పంటలను కాపాడండి",
		advisory.TipRainPostponeSpraying: "వర్షం వస్తుంది - మందుల కొట్టడం వాయిదా వేయండి",
		advisory.TipRainIndoorWork:       "ఇంట్లో చేయగల పనులు చేయండి",
		advisory.TipLowHumidity:          "తేమ తక్కువగా ఉంది - నీళ్లు ఎక్కువగా పోయండి",
		advisory.TipWindNoSpraying:       "గాలి వేగంగా ఉంది - మందుల కొట్టడం చేయవద్దు",
	},
	Forecast: ForecastPhrases{
		Intro:         "ఐదు రోజుల వాతావరణ సమాచారం మరియు వ్యవసాయ మార్గదర్శకం వినండి. ",
		Outro:         "ఇది మీ ఐదు రోజుల వాతావరణ సమాచారం. దీని ఆధారంగా మీ వ్యవసాయ పనులను ప్లాన్ చేసుకోండి.",
		RelativeDays:  []string{"ఈరోజు ", "రేపు ", "ఎల్లుండి ", "నాలుగవ రోజు ", "ఐదవ రోజు "},
		Naming:        NameByOrdinal,
		OrdinalFormat: "%dవ రోజు ",
		Day:           "ఉష్ణోగ్రత %d డిగ్రీలు ఉంటుంది. వాతావరణం %s ఉంటుంది. ",
		RainChance:    "వర్షం రావడానికి %d శాతం అవకాశం ఉంది. ",
		DayTips: map[advisory.DayTip]string{
			advisory.DayTipIndoorWork:     "వర్షం ఎక్కువగా ఉంటుంది కాబట్టి ఇంట్లో పని చేయండి. ",
			advisory.DayTipWatering:       "వేడి ఎక్కువ ఉంది కాబట్టి మొక్కలకు నీళ్లు పోయండి. ",
			advisory.DayTipColdProtection: "చలిగా ఉంటుంది కాబట్టి మొక్కలను కాపాడండి. ",
		},
	},
	NoData: NoDataPhrases{
		Current:  "వాతావరణ సమాచారం అందుబాటులో లేదు. దయచేసి రీఫ్రెష్ చేసి మళ్లీ ప్రయత్నించండి.",
		Forecast: "వాతావరణ సమాచారం అందుబాటులో లేదు. దయచేసి రీఫ్రెష్ చేసి మళ్లీ ప్రయత్నించండి.",
	},
}

var tamilBundle = &Bundle{
	Code: language.Tamil,
	Conditions: map[models.Condition]string{
		models.ConditionClear:        "தெளிவான",
		models.ConditionClouds:       "மேகங்கள்",
		models.ConditionRain:         "மழை",
		models.ConditionDrizzle:      "தூறல்",
		models.ConditionThunderstorm: "இடியுடன் கூடிய மழை",
		models.ConditionSnow:         "பனி",
		models.ConditionMist:         "மூடுபனி",
		models.ConditionFog:          "மூடுபனி",
	},
	UnknownCondition: "சாதாரண",
	Current: CurrentPhrases{
		Intro:       "வணக்கம்! இதோ %s இன் வானிலை. ",
		Temperature: "வெப்பநிலை %d டிகிரி செல்சியஸ். ",
		Conditions:  "வானிலை %s ஆக உள்ளது. ",
		FeelsLike:   "%d டிகிரி போல் உணர்கிறது. ",
		Humidity:    "ஈரப்பதம் %d சதவீதம். ",
		Wind:        "காற்றின் வேகம் வினாடிக்கு %d மீட்டர். ",
		Comfort: map[advisory.Comfort]string{
			advisory.ComfortHot:   "இன்று மிகவும் வெப்பமாக உள்ளது. தண்ணீர் குடியுங்கள் மற்றும் வெயிலில் இருந்து தவிர்த்துக் கொள்ளுங்கள். ",
			advisory.ComfortCold:  "இன்று குளிராக உள்ளது. வெதுவெதுப்பான உடைகளை அணியுங்கள். ",
			advisory.ComfortHumid: "இன்று மிகவும் ஈரப்பதமாக உள்ளது. ",
			advisory.ComfortWindy: "இன்று காற்று வேகமாக உள்ளது. ",
		},
		Umbrella: "மழை பெய்ய வாய்ப்பு உள்ளதால் குடை எடுத்துச் செல்ல மறக்காதீர்கள். ",
	},
	Forecast: ForecastPhrases{
		Intro:        "இதோ 5 நாள் வானிலை முன்னறிவிப்பு. ",
		Outro:        "இது உங்கள் 5 நாள் வானிலை முன்னறிவிப்பு. அதற்கேற்ப உங்கள் செயல்பாடுகளைத் திட்டமிடுங்கள்.",
		RelativeDays: []string{"இன்று, ", "நாளை, ", "நாளை மறுநாள், "},
		Naming:       NameByWeekday,
		Weekdays: [7]string{
			"ஞாயிற்றுக்கிழமை", "திங்கட்கிழமை", "செவ்வாய்க்கிழமை", "புதன்கிழமை",
			"வியாழக்கிழமை", "வெள்ளிக்கிழமை", "சனிக்கிழமை",
		},
		WeekdayFormat: "%s, ",
		Day:           "வெப்பநிலை %d டிகிரி இருக்கும் மற்றும் வானிலை %s ஆக இருக்கும். ",
		RainChance:    "மழைக்கான வாய்ப்பு %d சதவீதம் உள்ளது. ",
	},
	NoData: NoDataPhrases{
		Current:  "வானிலை தகவல் கிடைக்கவில்லை. தயவுசெய்து புதுப்பித்து மீண்டும் முயற்சிக்கவும்.",
		Forecast: "வானிலை முன்னறிவிப்பு கிடைக்கவில்லை. தயவுசெய்து புதுப்பித்து மீண்டும் முயற்சிக்கவும்.",
	},
}

var kannadaBundle = &Bundle{
	Code: language.Kannada,
	Conditions: map[models.Condition]string{
		models.ConditionClear:        "ಸ್ಪಷ್ಟ",
		models.ConditionClouds:       "ಮೋಡಗಳು",
		models.ConditionRain:         "ಮಳೆ",
		models.ConditionDrizzle:      "ಚಿಮುಕಿಸುವ ಮಳೆ",
		models.ConditionThunderstorm: "ಗುಡುಗುಸಹಿತ ಮಳೆ",
		models.ConditionSnow:         "ಹಿಮ",
		models.ConditionMist:         "ಮಂಜು",
		models.ConditionFog:          "ಮಂಜು",
	},
	UnknownCondition: "ಸಾಮಾನ್ಯ",
	Current: CurrentPhrases{
		Intro:       "ನಮಸ್ಕಾರ! ಇಲ್ಲಿ %s ಹವಾಮಾನ. ",
		Temperature: "ತಾಪಮಾನ %d ಡಿಗ್ರಿ ಸೆಲ್ಸಿಯಸ್. ",
		Conditions:  "ಹವಾಮಾನ %s ಇದೆ. ",
		FeelsLike:   "%d ಡಿಗ್ರಿಯಂತೆ ಅನಿಸುತ್ತಿದೆ. ",
		Humidity:    "ತೇವಾಂಶ %d ಶೇಕಡಾ. ",
		Wind:        "ಗಾಳಿಯ ವೇಗ ಸೆಕೆಂಡಿಗೆ %d ಮೀಟರ್. ",
		Comfort: map[advisory.Comfort]string{
			advisory.ComfortHot:   "ಇಂದು ತುಂಬಾ ಬಿಸಿಯಾಗಿದೆ. ನೀರು ಕುಡಿಯಿರಿ ಮತ್ತು ಬಿಸಿಲಿನಿಂದ ದೂರವಿರಿ. ",
			advisory.ComfortCold:  "ಇಂದು ತಣ್ಣಗಿದೆ. ಬೆಚ್ಚಗಿನ ಬಟ್ಟೆಗಳನ್ನು ಧರಿಸಿ. ",
			advisory.ComfortHumid: "ಇಂದು ತುಂಬಾ ತೇವಾಂಶವಿದೆ. ",
			advisory.ComfortWindy: "ಇಂದು ಗಾಳಿ ವೇಗವಾಗಿದೆ. ",
		},
		Umbrella: "ಮಳೆ ಬರುವ ಸಾಧ್ಯತೆ ಇರುವುದರಿಂದ ಛತ್ರಿ ತೆಗೆದುಕೊಂಡು ಹೋಗಲು ಮರೆಯಬೇಡಿ. ",
	},
	Forecast: ForecastPhrases{
		Intro:         "ಇಲ್ಲಿ 5 ದಿನಗಳ ಹವಾಮಾನ ಮುನ್ಸೂಚನೆ. ",
		Outro:         "ಇದು ನಿಮ್ಮ 5 ದಿನಗಳ ಹವಾಮಾನ ಮುನ್ಸೂಚನೆ. ಅದರ ಪ್ರಕಾರ ನಿಮ್ಮ ಚಟುವಟಿಕೆಗಳನ್ನು ಯೋಜಿಸಿ.",
		RelativeDays:  []string{"ಇಂದು, ", "ನಾಳೆ, ", "ನಾಡಿದ್ದು, "},
		Naming:        NameByOrdinal,
		OrdinalFormat: "%d ದಿನಗಳ ನಂತರ, ",
		Day:           "ತಾಪಮಾನ %d ಡಿಗ್ರಿ ಇರುತ್ತದೆ ಮತ್ತು ಹವಾಮಾನ %s ಇರುತ್ತದೆ. ",
		RainChance:    "ಮಳೆಯ ಸಾಧ್ಯತೆ %d ಶೇಕಡಾ ಇದೆ. ",
	},
	NoData: NoDataPhrases{
		Current:  "ಹವಾಮಾನ ಮಾಹಿತಿ ಲಭ್ಯವಿಲ್ಲ. ದಯವಿಟ್ಟು ರಿಫ್ರೆಶ್ ಮಾಡಿ ಮತ್ತು ಮತ್ತೆ ಪ್ರಯತ್ನಿಸಿ.",
		Forecast: "ಹವಾಮಾನ ಮುನ್ಸೂಚನೆ ಲಭ್ಯವಿಲ್ಲ. ದಯವಿಟ್ಟು ರಿಫ್ರೆಶ್ ಮಾಡಿ ಮತ್ತೆ ಪ್ರಯತ್ನಿಸಿ.",
	},
}

var bundles = map[string]*Bundle{
	language.English: englishBundle,
	language.Hindi:   hindiBundle,
	language.Telugu:  teluguBundle,
	language.Tamil:   tamilBundle,
	language.Kannada: kannadaBundle,
}

// BundleFor returns the phrase bundle for code, falling back to English.
func BundleFor(code string) *Bundle {
	if b, ok := bundles[language.NormalizeCode(code)]; ok {
		return b
	}
	return englishBundle
}
