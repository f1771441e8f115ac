package speech

import "NutriVision/pkg/response"

var (
	ErrInvalidAudioFile    = response.NewError(400, "invalid audio file")
	ErrEmptyTranscript     = response.NewError(400, "no speech detected in audio")
	ErrTranscriptionFailed = response.NewError(500, "failed to transcribe audio")
	ErrExtractionFailed    = response.NewError(500, "failed to extract meal items")
)
