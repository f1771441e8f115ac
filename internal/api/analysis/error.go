package analysis

import "NutriVision/pkg/response"

var (
	ErrInvalidImage         = response.NewError(400, "invalid image file")
	ErrSegmenterUnavailable = response.NewError(503, "segmentation service unavailable")
	ErrInferenceFailed      = response.NewError(500, "failed to segment image")
)
