package forecast

import "github.com/kjstillabower/krishivani/internal/models"

// Chunk splits samples into consecutive fixed-size groups, keeping at most limit groups.
// The last group may be shorter than size. A non-positive limit keeps every group.
func Chunk(samples []models.ForecastSample, size, limit int) [][]models.ForecastSample {
	if size <= 0 {
		size = SamplesPerDay
	}
	var out [][]models.ForecastSample
	for start := 0; start < len(samples); start += size {
		if limit > 0 && len(out) == limit {
			break
		}
		end := start + size
		if end > len(samples) {
			end = len(samples)
		}
		out = append(out, samples[start:end])
	}
	return out
}

// Window returns samples[from:to] clamped to the slice bounds.
func Window(samples []models.ForecastSample, from, to int) []models.ForecastSample {
	if from < 0 {
		from = 0
	}
	if to > len(samples) {
		to = len(samples)
	}
	if from >= to {
		return nil
	}
	return samples[from:to]
}
