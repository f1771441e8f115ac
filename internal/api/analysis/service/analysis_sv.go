package analysisService

import (
	"NutriVision/internal/api/analysis"
	contextPkg "NutriVision/pkg/context"
	"NutriVision/pkg/estimation"
	"NutriVision/pkg/segmentation"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"math"
)

func (s *analysisService) AnalyzePlate(ctx context.Context, imageData []byte, topK int) (*analysis.AnalyzePlateResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	downscaled, err := s.utils.DownscaleImage(imageData, downscaleMaxSize)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to decode uploaded image")
		return nil, analysis.ErrInvalidImage
	}

	cacheKey := fmt.Sprintf("analysis:%s:%d", s.utils.HashBytes(downscaled), topK)

	if payload, err := s.redisServer.GetAnalysis(ctx, cacheKey); err == nil && payload != nil {
		var cached analysis.AnalyzePlateResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"cache_key":  cacheKey,
			}).Debug("Returning cached analysis result")
			return &cached, nil
		}
	}

	result, err := s.segmentAndEstimate(ctx, requestID, downscaled, topK)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(result); err == nil {
		if err := s.redisServer.SetAnalysis(ctx, cacheKey, payload, cacheTTL); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to cache analysis result")
		}
	}

	return result, nil
}

func (s *analysisService) AnalyzeFrame(ctx context.Context, frame []byte, topK int) (*analysis.AnalyzePlateResponse, error) {
	return s.segmentAndEstimate(ctx, contextPkg.GetRequestID(ctx), frame, topK)
}

func (s *analysisService) segmentAndEstimate(ctx context.Context, requestID string, image []byte, topK int) (*analysis.AnalyzePlateResponse, error) {
	segResult, err := s.segmenter.Segment(ctx, image)
	if err != nil {
		if errors.Is(err, segmentation.ErrNoSessionAvailable) {
			stats := s.segmenter.Stats()
			s.log.WithFields(logrus.Fields{
				"request_id":       requestID,
				"in_use":           stats.InUse,
				"total_acquired":   stats.TotalAcquired,
				"acquire_failures": stats.AcquireFailures,
			}).Warn("No segmenter session available")
			return nil, analysis.ErrSegmenterUnavailable
		}

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Segmentation failed")
		return nil, analysis.ErrInferenceFailed
	}

	estimate := s.estimator.Analyze(
		estimation.SegmentationMap(segResult.Classes),
		estimation.ClassLabelIndex(segResult.Labels),
		topK,
	)

	return makeAnalyzeResponse(estimate), nil
}

func makeAnalyzeResponse(result estimation.AnalysisResult) *analysis.AnalyzePlateResponse {
	items := make([]analysis.ItemResponse, 0, len(result.Items))
	summaryItems := make([]analysis.SummaryItem, 0, len(result.Items))

	for _, item := range result.Items {
		items = append(items, analysis.ItemResponse{
			ClassID:    item.ClassID,
			Label:      item.Label,
			PixelCount: item.PixelCount,
			AreaRatio:  item.AreaRatio,
			AreaCM2:    item.AreaCM2,
			GramsEst:   item.GramsEst,
		})
		summaryItems = append(summaryItems, analysis.SummaryItem{
			Name:  item.Label,
			Grams: round1(item.GramsEst),
		})
	}

	return &analysis.AnalyzePlateResponse{
		PlateType:       string(result.PlateType),
		PlateAreaCM2:    result.PlateAreaCM2,
		TotalFoodPixels: result.TotalFoodPixels,
		TotalGramsEst:   result.TotalGramsEst,
		Items:           items,
		Summary: analysis.Summary{
			PlateType:  string(result.PlateType),
			TotalGrams: round1(result.TotalGramsEst),
			Items:      summaryItems,
		},
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
