package analysis

// DefaultTopK caps the item list when the client does not ask for a
// specific count.
const DefaultTopK = 10

type ItemResponse struct {
	ClassID    int     `json:"class_id"`
	Label      string  `json:"label"`
	PixelCount int     `json:"pixel_count"`
	AreaRatio  float64 `json:"area_ratio"`
	AreaCM2    float64 `json:"area_cm2"`
	GramsEst   float64 `json:"grams_est"`
}

type SummaryItem struct {
	Name  string  `json:"name"`
	Grams float64 `json:"grams"`
}

// Summary is the display block shown to end users. Gram values here are
// rounded to one decimal place, everything outside it keeps full precision.
type Summary struct {
	PlateType  string        `json:"plate_type"`
	TotalGrams float64       `json:"total_grams"`
	Items      []SummaryItem `json:"items"`
}

type AnalyzePlateResponse struct {
	PlateType       string         `json:"plate_type"`
	PlateAreaCM2    float64        `json:"plate_area_cm2"`
	TotalFoodPixels int            `json:"total_food_pixels"`
	TotalGramsEst   float64        `json:"total_grams_est"`
	Items           []ItemResponse `json:"items"`
	Summary         Summary        `json:"summary"`
}
