package entity

// SegmentationResult is the raw output of the segmenter service for one
// image: a class-id grid plus the id-to-label vocabulary of the model that
// produced it. Class id 0 is background.
type SegmentationResult struct {
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Classes [][]int        `json:"classes"`
	Labels  map[int]string `json:"labels"`
}
