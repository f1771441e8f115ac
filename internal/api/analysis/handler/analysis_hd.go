package analysisHandler

import (
	"NutriVision/internal/api/analysis"
	contextPkg "NutriVision/pkg/context"
	"NutriVision/pkg/handlerUtil"
	"NutriVision/pkg/log"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
	"io"
	"strconv"
	"time"
)

func (h *AnalysisHandler) AnalyzePlate(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing plate analysis request")

	file, err := ctx.FormFile("image")
	if err != nil {
		return errHandler.Handle(ctx, requestID, analysis.ErrInvalidImage, ctx.Path(), "get_image_file")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing file upload")

	if err := h.utils.ValidateImageFile(file); err != nil {
		return errHandler.Handle(ctx, requestID, analysis.ErrInvalidImage, ctx.Path(), "validate_image_file")
	}

	fileContent, err := file.Open()
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "open_file")
	}
	defer fileContent.Close()

	imageData, err := io.ReadAll(fileContent)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_file")
	}

	topK := analysis.DefaultTopK
	if raw := ctx.FormValue("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return errHandler.HandleValidationError(ctx, requestID,
				errors.New("top_k must be an integer"), ctx.Path())
		}
		topK = parsed
	}

	result, err := h.analysisService.AnalyzePlate(c, imageData, topK)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_plate")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id":  requestID,
			"path":        ctx.Path(),
			"plate_type":  result.PlateType,
			"total_grams": result.TotalGramsEst,
			"items":       len(result.Items),
		}).Info("Plate analysis successful")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

func (h *AnalysisHandler) handleAnalysisWebSocket(c *websocket.Conn) {
	h.log.Info("Plate analysis WebSocket client connected")
	defer h.log.Info("Plate analysis WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		h.log.Debug("Received ping, sending pong")
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	maxReadTimeout := 60 * time.Second

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Errorf("Plate analysis WebSocket error: %v", err)
			} else {
				h.log.Info("Plate analysis WebSocket connection closed")
			}
			break
		}

		if messageType == websocket.BinaryMessage {
			frameCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			result, err := h.analysisService.AnalyzeFrame(frameCtx, message, analysis.DefaultTopK)
			cancel()

			if err != nil {
				h.log.Errorf("Error analyzing frame: %v", err)
				if writeErr := c.WriteJSON(map[string]string{"error": err.Error()}); writeErr != nil {
					h.log.Errorf("Error sending error response: %v", writeErr)
					break
				}
				continue
			}

			if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
				h.log.Errorf("Error setting write deadline: %v", err)
				break
			}

			if err := c.WriteJSON(result); err != nil {
				h.log.Errorf("Error writing JSON response: %v", err)
				break
			}

			if err := c.SetWriteDeadline(time.Time{}); err != nil {
				h.log.Errorf("Error resetting write deadline: %v", err)
				break
			}
		} else {
			h.log.Warnf("Received unexpected message type: %d", messageType)
		}
	}
}
