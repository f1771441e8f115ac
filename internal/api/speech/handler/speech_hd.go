package speechHandler

import (
	"NutriVision/internal/api/speech"
	contextPkg "NutriVision/pkg/context"
	"NutriVision/pkg/handlerUtil"
	"NutriVision/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
	"time"
)

func (h *SpeechHandler) ProcessMealAudio(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing speech meal request")

	audioFile, err := ctx.FormFile("audio")
	if err != nil {
		return errHandler.Handle(ctx, requestID, speech.ErrInvalidAudioFile, ctx.Path(), "get_audio_file")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  audioFile.Filename,
		"file_size":  audioFile.Size,
	}).Debug("Processing audio upload")

	if err := h.utils.ValidateAudioFile(audioFile); err != nil {
		return errHandler.Handle(ctx, requestID, speech.ErrInvalidAudioFile, ctx.Path(), "validate_audio_file")
	}

	result, err := h.speechService.ProcessMealAudio(c, audioFile)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "process_meal_audio")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"items":      len(result.Items),
			"has_grams":  result.HasGrams,
		}).Info("Speech meal processed successfully")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}
