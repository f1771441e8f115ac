package speechService

import (
	"NutriVision/internal/api/speech"
	contextPkg "NutriVision/pkg/context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

func (s *speechService) ProcessMealAudio(ctx context.Context, audioFile *multipart.FileHeader) (*speech.SpeechMealResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	audioPath, cleanup, err := s.saveAudioFile(audioFile)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to save audio file")
		return nil, err
	}
	defer cleanup()

	transcript, err := s.transcriber.TranscribeAudio(ctx, audioPath)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to transcribe audio")
		return nil, speech.ErrTranscriptionFailed
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Transcription produced no text")
		return nil, speech.ErrEmptyTranscript
	}

	result, err := s.extractMealItems(ctx, transcript)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"transcript": transcript,
			"error":      err.Error(),
		}).Error("Failed to extract meal items")
		return nil, speech.ErrExtractionFailed
	}

	hasGrams := false
	for _, item := range result.Items {
		if item.Grams != nil {
			hasGrams = true
			break
		}
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"items":      len(result.Items),
		"has_grams":  hasGrams,
	}).Info("Meal audio processed")

	return &speech.SpeechMealResponse{
		Transcript: transcript,
		Items:      result.Items,
		HasGrams:   hasGrams,
	}, nil
}

func (s *speechService) saveAudioFile(audioFile *multipart.FileHeader) (string, func(), error) {
	src, err := audioFile.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer src.Close()

	tmpFile, err := os.CreateTemp("", "speech-*"+filepath.Ext(audioFile.Filename))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmpFile, src); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return "", nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		return "", nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	return tmpFile.Name(), func() { os.Remove(tmpFile.Name()) }, nil
}

func (s *speechService) extractMealItems(ctx context.Context, transcript string) (*speech.ExtractionResult, error) {
	prompt := fmt.Sprintf(`
	You are a nutrition logging assistant. Extract the food items from the meal description below.

	Rules:
	1. Respond with ONLY valid JSON, no markdown fences and no extra text.
	2. Use exactly this format: {"items":[{"name":"fried rice","grams":150}]}
	3. "grams" is the amount the speaker explicitly stated for that item. If no amount was stated, use null. Never guess an amount.
	4. Keep food names short and in the speaker's language.
	5. If the description contains no food at all, return {"items":[]}.

	Meal description:
	%s
	`, transcript)

	raw, err := s.gemini.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseExtractionResponse(raw)
}

func parseExtractionResponse(response string) (*speech.ExtractionResult, error) {
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")

	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, errors.New("cannot find valid JSON in response")
	}

	jsonStr := response[jsonStart : jsonEnd+1]

	var result speech.ExtractionResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, err
	}

	items := make([]speech.ExtractedItem, 0, len(result.Items))
	for _, item := range result.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		items = append(items, speech.ExtractedItem{
			Name:  name,
			Grams: item.Grams,
		})
	}
	result.Items = items

	return &result, nil
}
