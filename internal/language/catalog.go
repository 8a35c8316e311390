package language

import "strings"

// Language codes with narration phrase bundles.
const (
	English = "en"
	Hindi   = "hi"
	Telugu  = "te"
	Tamil   = "ta"
	Kannada = "kn"
)

// SupportedLanguage is one entry of the speech language catalog.
type SupportedLanguage struct {
	Code        string `json:"code"`
	Locale      string `json:"locale"`
	DisplayName string `json:"displayName"`
	NativeName  string `json:"nativeName"`
	Available   bool   `json:"available"`
}

// candidates is the fixed list probed against the speech engine, in display order.
var candidates = []SupportedLanguage{
	{Code: English, Locale: "en", DisplayName: "English", NativeName: "English"},
	{Code: Hindi, Locale: "hi-IN", DisplayName: "Hindi", NativeName: "हिंदी"},
	{Code: Telugu, Locale: "te-IN", DisplayName: "Telugu", NativeName: "తెలుగు"},
	{Code: Tamil, Locale: "ta-IN", DisplayName: "Tamil", NativeName: "தமிழ்"},
	{Code: Kannada, Locale: "kn-IN", DisplayName: "Kannada", NativeName: "ಕನ್ನಡ"},
	{Code: "bn", Locale: "bn-IN", DisplayName: "Bengali", NativeName: "বাংলা"},
	{Code: "mr", Locale: "mr-IN", DisplayName: "Marathi", NativeName: "मराठी"},
	{Code: "gu", Locale: "gu-IN", DisplayName: "Gujarati", NativeName: "ગુજરાતી"},
}

// defaultPriority orders the languages considered for the default selection.
var defaultPriority = []string{Telugu, Hindi, Tamil, Kannada, English}

// Candidates returns a copy of the candidate list with Available unset.
func Candidates() []SupportedLanguage {
	out := make([]SupportedLanguage, len(candidates))
	copy(out, candidates)
	return out
}

// ProbeFunc reports whether the speech engine can render a locale.
type ProbeFunc func(locale string) bool

// Catalog is the probed, immutable set of available languages plus the default.
type Catalog struct {
	available []SupportedLanguage
	def       SupportedLanguage
}

// ProbeAvailability checks every candidate once with probe. Unavailable candidates are
// dropped, except English which is always included as the fallback. A nil probe marks
// every candidate available.
func ProbeAvailability(probe ProbeFunc) *Catalog {
	var available []SupportedLanguage
	hasEnglish := false
	for _, c := range candidates {
		if probe != nil && !probe(c.Locale) {
			continue
		}
		c.Available = true
		if c.Code == English {
			hasEnglish = true
		}
		available = append(available, c)
	}
	if !hasEnglish {
		en := candidates[0]
		en.Available = true
		available = append(available, en)
	}

	cat := &Catalog{available: available}
	cat.def = cat.pickDefault()
	return cat
}

func (c *Catalog) pickDefault() SupportedLanguage {
	for _, code := range defaultPriority {
		if l, ok := c.lookup(code); ok {
			return l
		}
	}
	// unreachable: English is always present
	return c.available[0]
}

func (c *Catalog) lookup(code string) (SupportedLanguage, bool) {
	for _, l := range c.available {
		if l.Code == code {
			return l, true
		}
	}
	return SupportedLanguage{}, false
}

// Languages returns the available languages in catalog order.
func (c *Catalog) Languages() []SupportedLanguage {
	out := make([]SupportedLanguage, len(c.available))
	copy(out, c.available)
	return out
}

// Default returns the default language chosen at probe time.
func (c *Catalog) Default() SupportedLanguage {
	return c.def
}

// Resolve returns the available language for code, or the default when code is empty,
// unknown, or unavailable. Locale forms such as "te-IN" or "te_IN" are accepted.
func (c *Catalog) Resolve(code string) SupportedLanguage {
	if l, ok := c.lookup(NormalizeCode(code)); ok {
		return l
	}
	return c.def
}

// NormalizeCode lowercases code and strips any region suffix.
func NormalizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return code
}
