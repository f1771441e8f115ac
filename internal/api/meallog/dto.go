package meallog

type CreateMealEntryRequest struct {
	UserID          string  `json:"user_id" form:"user_id" validate:"required"`
	PlateType       string  `json:"plate_type" form:"plate_type" validate:"required,oneof=flat deep"`
	PlateAreaCM2    float64 `json:"plate_area_cm2" form:"plate_area_cm2" validate:"required,gt=0"`
	TotalFoodPixels int     `json:"total_food_pixels" form:"total_food_pixels" validate:"gte=0"`
	TotalGramsEst   float64 `json:"total_grams_est" form:"total_grams_est" validate:"gte=0"`
	// Items carries the analyzed food items as a JSON encoded array so it
	// survives multipart form encoding.
	Items string `json:"items" form:"items"`
}

type MealItemResponse struct {
	ClassID    int     `json:"class_id"`
	Label      string  `json:"label"`
	PixelCount int     `json:"pixel_count"`
	AreaRatio  float64 `json:"area_ratio"`
	AreaCM2    float64 `json:"area_cm2"`
	GramsEst   float64 `json:"grams_est"`
}

type MealEntryResponse struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	ImageLink       string             `json:"image_link,omitempty"`
	PlateType       string             `json:"plate_type"`
	PlateAreaCM2    float64            `json:"plate_area_cm2"`
	TotalFoodPixels int                `json:"total_food_pixels"`
	TotalGramsEst   float64            `json:"total_grams_est"`
	Items           []MealItemResponse `json:"items"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
}

type MealEntrySummaryResponse struct {
	ID            string  `json:"id"`
	PlateType     string  `json:"plate_type"`
	TotalGramsEst float64 `json:"total_grams_est"`
	ItemCount     int     `json:"item_count"`
	CreatedAt     string  `json:"created_at"`
}

type MealEntryListResponse struct {
	Entries       []MealEntrySummaryResponse `json:"entries"`
	TotalGramsEst float64                    `json:"total_grams_est"`
	Count         int                        `json:"count"`
}
