package meallog

import "NutriVision/pkg/response"

var (
	ErrEntryNotFound       = response.NewError(404, "meal entry not found")
	ErrInvalidImageFile    = response.NewError(400, "invalid image file")
	ErrEntryNotOwned       = response.NewError(403, "meal entry does not belong to user")
	ErrInvalidPeriod       = response.NewError(400, "invalid period filter")
	ErrInvalidPlateType    = response.NewError(400, "invalid plate type")
	ErrInvalidMealData     = response.NewError(400, "invalid meal entry data")
	ErrCreateEntry         = response.NewError(500, "failed to create meal entry")
	ErrUpdateEntry         = response.NewError(500, "failed to update meal entry")
	ErrDeleteEntry         = response.NewError(500, "failed to delete meal entry")
	ErrFailedToUploadImage = response.NewError(500, "failed to upload meal image")
)
