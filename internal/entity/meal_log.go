package entity

import (
	"NutriVision/internal/api/meallog"
	"time"
)

type MealPeriod string

const (
	MealPeriodAll   MealPeriod = "all"
	MealPeriodWeek  MealPeriod = "week"
	MealPeriodMonth MealPeriod = "month"
)

func IsValidMealPeriod(period string) bool {
	switch MealPeriod(period) {
	case MealPeriodAll, MealPeriodWeek, MealPeriodMonth:
		return true
	default:
		return false
	}
}

type MealItem struct {
	ClassID    int     `json:"class_id"`
	Label      string  `json:"label"`
	PixelCount int     `json:"pixel_count"`
	AreaRatio  float64 `json:"area_ratio"`
	AreaCM2    float64 `json:"area_cm2"`
	GramsEst   float64 `json:"grams_est"`
}

type MealEntry struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ImageLink       string     `json:"image_link"`
	PlateType       string     `json:"plate_type"`
	PlateAreaCM2    float64    `json:"plate_area_cm2"`
	TotalFoodPixels int        `json:"total_food_pixels"`
	TotalGramsEst   float64    `json:"total_grams_est"`
	Items           []MealItem `json:"items"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (m *MealEntry) Validate() error {
	if m.PlateType != "flat" && m.PlateType != "deep" {
		return meallog.ErrInvalidPlateType
	}

	if m.TotalGramsEst < 0 || m.TotalFoodPixels < 0 {
		return meallog.ErrInvalidMealData
	}

	return nil
}
