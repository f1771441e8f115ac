package speechService

import (
	"NutriVision/internal/api/speech"
	"NutriVision/pkg/audio"
	"NutriVision/pkg/gemini"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"mime/multipart"
)

type ISpeechService interface {
	ProcessMealAudio(ctx context.Context, audioFile *multipart.FileHeader) (*speech.SpeechMealResponse, error)
}

type speechService struct {
	log         *logrus.Logger
	transcriber audio.ITranscriber
	gemini      gemini.IGemini
}

func New(log *logrus.Logger, transcriber audio.ITranscriber, gemini gemini.IGemini) ISpeechService {
	return &speechService{
		log:         log,
		transcriber: transcriber,
		gemini:      gemini,
	}
}
