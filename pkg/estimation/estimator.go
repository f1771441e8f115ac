package estimation

import (
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Estimator converts segmentation maps into per-item mass estimates using
// the fixed plate geometry and a static physical-profile table. It holds no
// per-request state and is safe for concurrent use.
type Estimator struct {
	log      *logrus.Logger
	profiles ProfileTable

	defaultProfileHits atomic.Uint64
	unknownLabelHits   atomic.Uint64
}

// NewEstimator validates the profile table and takes a normalized private
// copy of it. A missing or malformed table fails here, never at request
// time. The logger may be nil.
func NewEstimator(log *logrus.Logger, profiles ProfileTable) (IEstimator, error) {
	if err := profiles.validate(); err != nil {
		return nil, err
	}

	owned := make(ProfileTable, len(profiles))
	for label, p := range profiles {
		key := strings.ToLower(label)
		if _, dup := owned[key]; dup {
			return nil, &ConfigurationError{Reason: "duplicate profile label " + key + " after normalization"}
		}
		owned[key] = p
	}

	return &Estimator{log: log, profiles: owned}, nil
}

// Analyze runs the aggregation, plate classification, mass estimation and
// ranking stages over one segmentation map. It never fails: an all
// background map resolves to a well-formed zero result.
func (e *Estimator) Analyze(seg SegmentationMap, labels ClassLabelIndex, topK int) AnalysisResult {
	agg := AggregateAreas(seg)
	total := agg.TotalPixels()
	if total == 0 {
		return AnalysisResult{
			PlateType:       PlateTypeFlat,
			PlateAreaCM2:    PlateAreaCM2,
			TotalFoodPixels: 0,
			TotalGramsEst:   0.0,
			Items:           []FoodItemEstimate{},
		}
	}

	plateType := ClassifyPlate(LabelRatios(agg, labels))
	items := e.estimateItems(agg, total, labels, plateType)
	rankItems(items)

	totalGrams := 0.0
	for _, it := range items {
		totalGrams += it.GramsEst
	}

	return AnalysisResult{
		PlateType:       plateType,
		PlateAreaCM2:    PlateAreaCM2,
		TotalFoodPixels: total,
		TotalGramsEst:   totalGrams,
		Items:           truncateItems(items, topK),
	}
}

func (e *Estimator) estimateItems(agg AreaAggregate, totalPixels int, labels ClassLabelIndex, plateType PlateType) []FoodItemEstimate {
	items := make([]FoodItemEstimate, 0, len(agg))
	var unknownIDs []int
	var defaultLabels []string

	for _, c := range agg {
		label, known := labels.Lookup(c.ClassID)
		if !known {
			e.unknownLabelHits.Add(1)
			unknownIDs = append(unknownIDs, c.ClassID)
		}

		ratio := float64(c.Pixels) / float64(totalPixels)

		// Sauce never counts toward the estimate; below the noise floor a
		// region is assumed to be mis-segmentation, not food.
		if label == LabelSauce {
			continue
		}
		if ratio < MinAreaRatioKeep {
			continue
		}

		areaCM2 := ratio * PlateAreaCM2

		profile, ok := e.profiles[label]
		if !ok {
			profile = PhysicalProfile{Density: DefaultDensity, HeightCM: DefaultHeightCM}
			e.defaultProfileHits.Add(1)
			defaultLabels = append(defaultLabels, label)
		}

		height := profile.HeightCM
		if plateType == PlateTypeFlat && label == LabelSoup {
			height = FlatPlateSoupHeightCM
		}
		if plateType == PlateTypeDeep {
			height = math.Min(height, DeepPlateDepthCM)
		}

		volumeCM3 := areaCM2 * height
		items = append(items, FoodItemEstimate{
			ClassID:    c.ClassID,
			Label:      label,
			PixelCount: c.Pixels,
			AreaRatio:  ratio,
			AreaCM2:    areaCM2,
			GramsEst:   volumeCM3 * profile.Density,
		})
	}

	if e.log != nil && (len(unknownIDs) > 0 || len(defaultLabels) > 0) {
		e.log.WithFields(logrus.Fields{
			"unknown_class_ids": unknownIDs,
			"default_labels":    defaultLabels,
		}).Debug("estimator fell back to default label data")
	}

	return items
}

// rankItems orders by descending estimated grams; equal masses fall back to
// ascending class id so reruns yield identical output.
func rankItems(items []FoodItemEstimate) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].GramsEst != items[j].GramsEst {
			return items[i].GramsEst > items[j].GramsEst
		}
		return items[i].ClassID < items[j].ClassID
	})
}

func truncateItems(items []FoodItemEstimate, topK int) []FoodItemEstimate {
	if topK <= 0 {
		return []FoodItemEstimate{}
	}
	if topK >= len(items) {
		return items
	}
	return items[:topK]
}

// DefaultProfileCount reports how many estimates used the fallback
// density/height pair since construction. A climbing count means the model
// vocabulary has drifted from the profile table.
func (e *Estimator) DefaultProfileCount() uint64 {
	return e.defaultProfileHits.Load()
}

// UnknownLabelCount reports how many class ids were absent from the label
// index since construction.
func (e *Estimator) UnknownLabelCount() uint64 {
	return e.unknownLabelHits.Load()
}
