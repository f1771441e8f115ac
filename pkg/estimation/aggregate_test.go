package estimation

import (
	"math"
	"testing"
)

func TestAggregateAreasDropsBackground(t *testing.T) {
	seg := SegmentationMap{
		{0, 0, 1, 1, 2},
		{0, 2, 2, 1, 0},
	}

	agg := AggregateAreas(seg)

	if len(agg) != 2 {
		t.Fatalf("aggregate has %d classes, want 2", len(agg))
	}
	if agg[0].ClassID != 1 || agg[0].Pixels != 3 {
		t.Fatalf("agg[0] = %+v, want class 1 with 3 pixels", agg[0])
	}
	if agg[1].ClassID != 2 || agg[1].Pixels != 3 {
		t.Fatalf("agg[1] = %+v, want class 2 with 3 pixels", agg[1])
	}
	if total := agg.TotalPixels(); total != 6 {
		t.Fatalf("total pixels = %d, want 6", total)
	}
}

func TestAggregateAreasSortedByClassID(t *testing.T) {
	seg := SegmentationMap{{9, 3, 7, 3, 9, 1}}

	agg := AggregateAreas(seg)

	for i := 1; i < len(agg); i++ {
		if agg[i-1].ClassID >= agg[i].ClassID {
			t.Fatalf("aggregate not in ascending class id order: %+v", agg)
		}
	}
}

func TestAggregateAreasAllBackground(t *testing.T) {
	seg := SegmentationMap{{0, 0}, {0, 0}}

	agg := AggregateAreas(seg)

	if len(agg) != 0 {
		t.Fatalf("aggregate has %d classes, want 0", len(agg))
	}
	if agg.TotalPixels() != 0 {
		t.Fatalf("total pixels = %d, want 0", agg.TotalPixels())
	}
}

func TestLabelRatiosSumToOne(t *testing.T) {
	seg := SegmentationMap{{1, 1, 1, 2, 2, 3, 4, 4, 4, 4}}
	labels := ClassLabelIndex{1: "rice", 2: "egg", 3: "salad", 4: "steak"}

	ratios := LabelRatios(AggregateAreas(seg), labels)

	sum := 0.0
	for _, r := range ratios {
		sum += r
	}
	if math.Abs(sum-1.0) > 1e-12 {
		t.Fatalf("ratio sum = %v, want 1.0", sum)
	}
}

func TestLabelRatiosMergeSharedLabels(t *testing.T) {
	// Class ids 2 and 5 both resolve to "rice"; their shares must combine.
	seg := SegmentationMap{{2, 2, 5, 5, 5, 1, 1, 1, 1, 1}}
	labels := ClassLabelIndex{1: "soup", 2: "Rice", 5: "rice"}

	ratios := LabelRatios(AggregateAreas(seg), labels)

	if got := ratios["rice"]; math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("rice ratio = %v, want 0.5", got)
	}
	if got := ratios["soup"]; math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("soup ratio = %v, want 0.5", got)
	}
}

func TestClassifyPlate(t *testing.T) {
	tests := []struct {
		name   string
		ratios map[string]float64
		want   PlateType
	}{
		{"no soup", map[string]float64{"rice": 1.0}, PlateTypeFlat},
		{"soup below threshold", map[string]float64{"soup": 0.249999, "rice": 0.750001}, PlateTypeFlat},
		{"soup at threshold", map[string]float64{"soup": 0.25, "rice": 0.75}, PlateTypeDeep},
		{"soup above threshold", map[string]float64{"soup": 0.9}, PlateTypeDeep},
		{"empty ratios", map[string]float64{}, PlateTypeFlat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPlate(tt.ratios); got != tt.want {
				t.Fatalf("ClassifyPlate() = %q, want %q", got, tt.want)
			}
		})
	}
}
