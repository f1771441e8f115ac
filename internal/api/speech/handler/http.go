package speechHandler

import (
	speechService "NutriVision/internal/api/speech/service"
	"NutriVision/internal/middleware"
	"NutriVision/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type SpeechHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	speechService speechService.ISpeechService
	utils         utils.IUtils
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	speechService speechService.ISpeechService,
	utils utils.IUtils,
) *SpeechHandler {
	return &SpeechHandler{
		log:           log,
		validator:     validate,
		middleware:    middleware,
		speechService: speechService,
		utils:         utils,
	}
}

func (h *SpeechHandler) Start(srv fiber.Router) {
	speech := srv.Group("/speech")

	speech.Post("/meals", h.middleware.NewRateLimiter, h.ProcessMealAudio)
}
