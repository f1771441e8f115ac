package audio

import (
	"context"
	"errors"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

type ITranscriber interface {
	TranscribeAudio(ctx context.Context, filePath string) (string, error)
}

type transcriptionService struct {
	client   *openai.Client
	language string
}

func NewTranscriptionService() (ITranscriber, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}

	return &transcriptionService{
		client:   openai.NewClient(apiKey),
		language: os.Getenv("TRANSCRIPTION_LANGUAGE"),
	}, nil
}

func (t *transcriptionService) TranscribeAudio(ctx context.Context, filePath string) (string, error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filePath,
		Language: t.language,
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", err
	}

	return resp.Text, nil
}
