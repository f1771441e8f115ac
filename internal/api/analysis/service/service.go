package analysisService

import (
	"NutriVision/internal/api/analysis"
	"NutriVision/pkg/estimation"
	"NutriVision/pkg/redis"
	"NutriVision/pkg/segmentation"
	"NutriVision/pkg/utils"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	// Segmentation quality is stable past this resolution, anything larger
	// just costs inference time.
	downscaleMaxSize = 512

	cacheTTL = 30 * time.Minute
)

type IAnalysisService interface {
	AnalyzePlate(ctx context.Context, imageData []byte, topK int) (*analysis.AnalyzePlateResponse, error)
	AnalyzeFrame(ctx context.Context, frame []byte, topK int) (*analysis.AnalyzePlateResponse, error)
}

type analysisService struct {
	log         *logrus.Logger
	segmenter   segmentation.ISegmenter
	estimator   estimation.IEstimator
	redisServer redis.IRedis
	utils       utils.IUtils
}

func New(
	log *logrus.Logger,
	segmenter segmentation.ISegmenter,
	estimator estimation.IEstimator,
	redisServer redis.IRedis,
	utils utils.IUtils,
) IAnalysisService {
	return &analysisService{
		log:         log,
		segmenter:   segmenter,
		estimator:   estimator,
		redisServer: redisServer,
		utils:       utils,
	}
}
