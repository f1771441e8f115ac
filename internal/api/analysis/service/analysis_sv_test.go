package analysisService

import (
	"NutriVision/internal/api/analysis"
	"NutriVision/internal/entity"
	"NutriVision/pkg/estimation"
	"NutriVision/pkg/segmentation"
	"context"
	"encoding/hex"
	"errors"
	"github.com/sirupsen/logrus"
	"io"
	"math"
	"mime/multipart"
	"reflect"
	"testing"
	"time"
)

type fakeSegmenter struct {
	result *entity.SegmentationResult
	err    error
	calls  int
}

func (f *fakeSegmenter) Segment(_ context.Context, _ []byte) (*entity.SegmentationResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSegmenter) Stats() segmentation.PoolStats {
	return segmentation.PoolStats{}
}

type fakeRedis struct {
	store map[string][]byte
	sets  int
}

func (f *fakeRedis) SetAnalysis(_ context.Context, key string, payload []byte, _ time.Duration) error {
	if f.store == nil {
		f.store = make(map[string][]byte)
	}
	f.store[key] = payload
	f.sets++
	return nil
}

func (f *fakeRedis) GetAnalysis(_ context.Context, key string) ([]byte, error) {
	return f.store[key], nil
}

type fakeUtils struct {
	downscaleErr error
}

func (f *fakeUtils) NewULIDFromTimestamp(time.Time) (string, error) { return "01TESTULID", nil }

func (f *fakeUtils) ValidateImageFile(*multipart.FileHeader) error { return nil }

func (f *fakeUtils) ValidateAudioFile(*multipart.FileHeader) error { return nil }

func (f *fakeUtils) DownscaleImage(imageData []byte, _ int) ([]byte, error) {
	if f.downscaleErr != nil {
		return nil, f.downscaleErr
	}
	return imageData, nil
}

func (f *fakeUtils) HashBytes(data []byte) string { return hex.EncodeToString(data) }

func segFixture() *entity.SegmentationResult {
	row := make([]int, 100)
	for i := 0; i < 60; i++ {
		row[i] = 1
	}
	for i := 60; i < 100; i++ {
		row[i] = 2
	}

	return &entity.SegmentationResult{
		Width:   100,
		Height:  1,
		Classes: [][]int{row},
		Labels:  map[int]string{1: "rice", 2: "chicken duck"},
	}
}

func newTestService(t *testing.T, seg *fakeSegmenter, redisServer *fakeRedis, utils *fakeUtils) IAnalysisService {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	estimator, err := estimation.NewEstimator(logger, estimation.DefaultProfileTable())
	if err != nil {
		t.Fatalf("NewEstimator() error = %v", err)
	}

	return New(logger, seg, estimator, redisServer, utils)
}

func TestAnalyzePlateComputesEstimate(t *testing.T) {
	seg := &fakeSegmenter{result: segFixture()}
	svc := newTestService(t, seg, &fakeRedis{}, &fakeUtils{})

	resp, err := svc.AnalyzePlate(context.Background(), []byte("plate-photo"), 10)
	if err != nil {
		t.Fatalf("AnalyzePlate() error = %v", err)
	}

	if resp.PlateType != "flat" {
		t.Errorf("PlateType = %q, want flat", resp.PlateType)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(resp.Items))
	}
	if resp.Items[0].Label != "rice" || resp.Items[1].Label != "chicken duck" {
		t.Errorf("item order = [%s, %s], want [rice, chicken duck]", resp.Items[0].Label, resp.Items[1].Label)
	}
	if resp.TotalFoodPixels != 100 {
		t.Errorf("TotalFoodPixels = %d, want 100", resp.TotalFoodPixels)
	}

	if resp.Summary.PlateType != resp.PlateType {
		t.Errorf("Summary.PlateType = %q, want %q", resp.Summary.PlateType, resp.PlateType)
	}
	if want := math.Round(resp.TotalGramsEst*10) / 10; resp.Summary.TotalGrams != want {
		t.Errorf("Summary.TotalGrams = %v, want %v", resp.Summary.TotalGrams, want)
	}
	if len(resp.Summary.Items) != len(resp.Items) {
		t.Fatalf("len(Summary.Items) = %d, want %d", len(resp.Summary.Items), len(resp.Items))
	}
	for i, item := range resp.Items {
		if want := math.Round(item.GramsEst*10) / 10; resp.Summary.Items[i].Grams != want {
			t.Errorf("Summary.Items[%d].Grams = %v, want %v", i, resp.Summary.Items[i].Grams, want)
		}
		if resp.Summary.Items[i].Name != item.Label {
			t.Errorf("Summary.Items[%d].Name = %q, want %q", i, resp.Summary.Items[i].Name, item.Label)
		}
	}
}

func TestAnalyzePlateCachesResult(t *testing.T) {
	seg := &fakeSegmenter{result: segFixture()}
	redisServer := &fakeRedis{}
	svc := newTestService(t, seg, redisServer, &fakeUtils{})

	first, err := svc.AnalyzePlate(context.Background(), []byte("same-photo"), 10)
	if err != nil {
		t.Fatalf("first AnalyzePlate() error = %v", err)
	}

	second, err := svc.AnalyzePlate(context.Background(), []byte("same-photo"), 10)
	if err != nil {
		t.Fatalf("second AnalyzePlate() error = %v", err)
	}

	if seg.calls != 1 {
		t.Errorf("segmenter calls = %d, want 1", seg.calls)
	}
	if redisServer.sets != 1 {
		t.Errorf("cache writes = %d, want 1", redisServer.sets)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached response differs from original:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestAnalyzePlateCacheKeyIncludesTopK(t *testing.T) {
	seg := &fakeSegmenter{result: segFixture()}
	svc := newTestService(t, seg, &fakeRedis{}, &fakeUtils{})

	if _, err := svc.AnalyzePlate(context.Background(), []byte("same-photo"), 1); err != nil {
		t.Fatalf("AnalyzePlate(topK=1) error = %v", err)
	}
	if _, err := svc.AnalyzePlate(context.Background(), []byte("same-photo"), 2); err != nil {
		t.Fatalf("AnalyzePlate(topK=2) error = %v", err)
	}

	if seg.calls != 2 {
		t.Errorf("segmenter calls = %d, want 2 for distinct top_k values", seg.calls)
	}
}

func TestAnalyzePlateSegmenterExhausted(t *testing.T) {
	seg := &fakeSegmenter{err: segmentation.ErrNoSessionAvailable}
	svc := newTestService(t, seg, &fakeRedis{}, &fakeUtils{})

	_, err := svc.AnalyzePlate(context.Background(), []byte("photo"), 10)
	if !errors.Is(err, analysis.ErrSegmenterUnavailable) {
		t.Errorf("AnalyzePlate() error = %v, want ErrSegmenterUnavailable", err)
	}
}

func TestAnalyzePlateSegmenterFailure(t *testing.T) {
	seg := &fakeSegmenter{err: errors.New("connection reset")}
	svc := newTestService(t, seg, &fakeRedis{}, &fakeUtils{})

	_, err := svc.AnalyzePlate(context.Background(), []byte("photo"), 10)
	if !errors.Is(err, analysis.ErrInferenceFailed) {
		t.Errorf("AnalyzePlate() error = %v, want ErrInferenceFailed", err)
	}
}

func TestAnalyzePlateRejectsUndecodableImage(t *testing.T) {
	seg := &fakeSegmenter{result: segFixture()}
	svc := newTestService(t, seg, &fakeRedis{}, &fakeUtils{downscaleErr: errors.New("not an image")})

	_, err := svc.AnalyzePlate(context.Background(), []byte("garbage"), 10)
	if !errors.Is(err, analysis.ErrInvalidImage) {
		t.Errorf("AnalyzePlate() error = %v, want ErrInvalidImage", err)
	}
	if seg.calls != 0 {
		t.Errorf("segmenter calls = %d, want 0 for rejected image", seg.calls)
	}
}

func TestAnalyzeFrameSkipsCache(t *testing.T) {
	seg := &fakeSegmenter{result: segFixture()}
	redisServer := &fakeRedis{}
	svc := newTestService(t, seg, redisServer, &fakeUtils{})

	for i := 0; i < 2; i++ {
		if _, err := svc.AnalyzeFrame(context.Background(), []byte("frame"), 10); err != nil {
			t.Fatalf("AnalyzeFrame() error = %v", err)
		}
	}

	if seg.calls != 2 {
		t.Errorf("segmenter calls = %d, want 2", seg.calls)
	}
	if redisServer.sets != 0 {
		t.Errorf("cache writes = %d, want 0 for frames", redisServer.sets)
	}
}
