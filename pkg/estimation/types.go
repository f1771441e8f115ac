package estimation

import "strings"

// SegmentationMap is an HxW grid of class ids produced by the segmentation
// model. Class id 0 marks background and never contributes to an estimate.
type SegmentationMap [][]int

// ClassLabelIndex maps class ids to semantic labels. Label comparisons are
// case-insensitive; lookups normalize to lowercase.
type ClassLabelIndex map[int]string

// Lookup resolves a class id to its normalized label. The second return is
// false when the id is missing from the index, in which case the label is
// "unknown".
func (idx ClassLabelIndex) Lookup(classID int) (string, bool) {
	label, ok := idx[classID]
	if !ok {
		return LabelUnknown, false
	}
	return strings.ToLower(label), true
}

// LabelFor is Lookup without the presence flag.
func (idx ClassLabelIndex) LabelFor(classID int) string {
	label, _ := idx.Lookup(classID)
	return label
}

type PlateType string

const (
	PlateTypeFlat PlateType = "flat"
	PlateTypeDeep PlateType = "deep"
)

// ClassArea is the pixel count of a single class id.
type ClassArea struct {
	ClassID int
	Pixels  int
}

// AreaAggregate holds per-class pixel counts with background removed,
// sorted by ascending class id. The fixed order keeps equal-mass ties
// reproducible further down the pipeline.
type AreaAggregate []ClassArea

func (a AreaAggregate) TotalPixels() int {
	total := 0
	for _, c := range a {
		total += c.Pixels
	}
	return total
}

type FoodItemEstimate struct {
	ClassID    int     `json:"class_id"`
	Label      string  `json:"label"`
	PixelCount int     `json:"pixel_count"`
	AreaRatio  float64 `json:"area_ratio"`
	AreaCM2    float64 `json:"area_cm2"`
	GramsEst   float64 `json:"grams_est"`
}

// AnalysisResult is the terminal artifact of one pipeline run. Items are
// ordered by descending grams and truncated to the caller's display limit;
// TotalGramsEst always covers every surviving item, truncated or not.
type AnalysisResult struct {
	PlateType       PlateType          `json:"plate_type"`
	PlateAreaCM2    float64            `json:"plate_area_cm2"`
	TotalFoodPixels int                `json:"total_food_pixels"`
	TotalGramsEst   float64            `json:"total_grams_est"`
	Items           []FoodItemEstimate `json:"items"`
}

type IEstimator interface {
	Analyze(seg SegmentationMap, labels ClassLabelIndex, topK int) AnalysisResult
	DefaultProfileCount() uint64
	UnknownLabelCount() uint64
}
