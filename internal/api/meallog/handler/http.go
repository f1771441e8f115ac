package meallogHandler

import (
	meallogService "NutriVision/internal/api/meallog/service"
	"NutriVision/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type MealLogHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	meallogService meallogService.IMealLogService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	meallogService meallogService.IMealLogService,
) *MealLogHandler {
	return &MealLogHandler{
		log:            log,
		validator:      validate,
		middleware:     middleware,
		meallogService: meallogService,
	}
}

func (h *MealLogHandler) Start(srv fiber.Router) {
	meals := srv.Group("/meals")

	meals.Post("", h.middleware.NewTokenMiddleware, h.CreateMealEntry)
	meals.Get("", h.middleware.NewTokenMiddleware, h.GetMealEntries)
	meals.Get("/:id", h.middleware.NewTokenMiddleware, h.GetMealEntryByID)
	meals.Delete("/:id", h.middleware.NewTokenMiddleware, h.DeleteMealEntry)
}
