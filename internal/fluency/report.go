// Package fluency produces heuristic feedback on a practice transcript.
package fluency

import (
	"errors"
	"strings"

	"speech-practice-service/internal/models"
)

// ErrNoTranscript is returned for an empty or whitespace-only transcript.
var ErrNoTranscript = errors.New("no transcript provided")

const vocabularySample = 5

// Report summarizes a transcript: encouragement based on length, a
// filler-word check, and a sample of the vocabulary used.
func Report(transcript string) (*models.FluencySummary, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrNoTranscript
	}

	positives := "Try speaking more."
	if len(transcript) > 50 {
		positives = "Good fluency and natural speech!"
	}

	improvements := "Keep up the smooth flow!"
	if strings.Contains(transcript, "um") {
		improvements = "Reduce filler words."
	}

	words := strings.Fields(transcript)
	if len(words) > vocabularySample {
		words = words[:vocabularySample]
	}

	return &models.FluencySummary{
		Positives:    positives,
		Improvements: improvements,
		Vocabulary:   words,
	}, nil
}
