package meallogHandler

import (
	"NutriVision/internal/api/meallog"
	"NutriVision/internal/entity"
	contextPkg "NutriVision/pkg/context"
	"NutriVision/pkg/handlerUtil"
	jwtPkg "NutriVision/pkg/jwt"
	"NutriVision/pkg/log"
	"errors"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
	"time"
)

func (h *MealLogHandler) CreateMealEntry(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing create meal entry request")

	var req meallog.CreateMealEntryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	req.UserID = userData.ID

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	imageFile, _ := ctx.FormFile("image")

	entry, err := h.meallogService.CreateEntry(c, req, imageFile)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_meal_entry")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, fiber.Map{
			"message": "Meal entry created successfully",
			"id":      entry.ID,
		})
	}
}

func (h *MealLogHandler) GetMealEntries(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing list meal entries request")

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	period := ctx.Query("period", string(entity.MealPeriodAll))

	entries, err := h.meallogService.GetEntriesByPeriod(c, userData.ID, period)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_meal_entries")
	}

	var (
		summaries  []meallog.MealEntrySummaryResponse
		totalGrams float64
	)

	for _, entry := range entries {
		summaries = append(summaries, meallog.MealEntrySummaryResponse{
			ID:            entry.ID,
			PlateType:     entry.PlateType,
			TotalGramsEst: entry.TotalGramsEst,
			ItemCount:     len(entry.Items),
			CreatedAt:     entry.CreatedAt.Format(time.RFC3339),
		})

		totalGrams += entry.TotalGramsEst
	}

	response := meallog.MealEntryListResponse{
		Entries:       summaries,
		TotalGramsEst: totalGrams,
		Count:         len(summaries),
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, response)
	}
}

func (h *MealLogHandler) GetMealEntryByID(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing get meal entry by ID request")

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("meal entry ID is required"), ctx.Path())
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	entry, err := h.meallogService.GetEntryByID(c, id, userData.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_meal_entry")
	}

	response := makeMealEntryResponse(entry)

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, response)
	}
}

func (h *MealLogHandler) DeleteMealEntry(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing delete meal entry request")

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("meal entry ID is required"), ctx.Path())
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := h.meallogService.DeleteEntry(c, id, userData.ID); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_meal_entry")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Meal entry deleted successfully",
		})
	}
}

func makeMealEntryResponse(entry entity.MealEntry) meallog.MealEntryResponse {
	items := make([]meallog.MealItemResponse, 0, len(entry.Items))
	for _, item := range entry.Items {
		items = append(items, meallog.MealItemResponse{
			ClassID:    item.ClassID,
			Label:      item.Label,
			PixelCount: item.PixelCount,
			AreaRatio:  item.AreaRatio,
			AreaCM2:    item.AreaCM2,
			GramsEst:   item.GramsEst,
		})
	}

	return meallog.MealEntryResponse{
		ID:              entry.ID,
		UserID:          entry.UserID,
		ImageLink:       entry.ImageLink,
		PlateType:       entry.PlateType,
		PlateAreaCM2:    entry.PlateAreaCM2,
		TotalFoodPixels: entry.TotalFoodPixels,
		TotalGramsEst:   entry.TotalGramsEst,
		Items:           items,
		CreatedAt:       entry.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       entry.UpdatedAt.Format(time.RFC3339),
	}
}
