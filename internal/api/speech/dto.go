package speech

// ExtractedItem is one food item pulled out of a spoken meal description.
// Grams stays nil when the speaker did not state an amount.
type ExtractedItem struct {
	Name  string   `json:"name"`
	Grams *float64 `json:"grams"`
}

type ExtractionResult struct {
	Items []ExtractedItem `json:"items"`
}

type SpeechMealResponse struct {
	Transcript string          `json:"transcript"`
	Items      []ExtractedItem `json:"items"`
	HasGrams   bool            `json:"has_grams"`
}
