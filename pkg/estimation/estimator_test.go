package estimation

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
)

// segWith builds a single-row map containing the given pixel counts.
func segWith(counts ...ClassArea) SegmentationMap {
	var row []int
	for _, c := range counts {
		for i := 0; i < c.Pixels; i++ {
			row = append(row, c.ClassID)
		}
	}
	return SegmentationMap{row}
}

func approx(t *testing.T, got, want, tol float64, name string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v (tolerance %v)", name, got, want, tol)
	}
}

func newTestEstimator(t *testing.T) IEstimator {
	t.Helper()
	est, err := NewEstimator(nil, DefaultProfileTable())
	if err != nil {
		t.Fatalf("NewEstimator failed: %v", err)
	}
	return est
}

func TestAnalyzeWorkedExample(t *testing.T) {
	est := newTestEstimator(t)
	seg := segWith(
		ClassArea{ClassID: 1, Pixels: 60},
		ClassArea{ClassID: 2, Pixels: 40},
	)
	labels := ClassLabelIndex{1: "rice", 2: "chicken duck"}

	res := est.Analyze(seg, labels, 10)

	if res.PlateType != PlateTypeFlat {
		t.Fatalf("plate type = %q, want flat", res.PlateType)
	}
	approx(t, res.PlateAreaCM2, 530.93, 0.01, "plate area")
	if res.TotalFoodPixels != 100 {
		t.Fatalf("total food pixels = %d, want 100", res.TotalFoodPixels)
	}
	if len(res.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(res.Items))
	}

	rice, chicken := res.Items[0], res.Items[1]
	if rice.Label != "rice" || chicken.Label != "chicken duck" {
		t.Fatalf("items ordered [%s, %s], want [rice, chicken duck]", rice.Label, chicken.Label)
	}
	approx(t, rice.AreaCM2, 318.56, 0.01, "rice area")
	approx(t, rice.GramsEst, 406.16, 0.01, "rice grams")
	approx(t, chicken.AreaCM2, 212.37, 0.01, "chicken duck area")
	approx(t, chicken.GramsEst, 267.59, 0.01, "chicken duck grams")
	approx(t, res.TotalGramsEst, 673.75, 0.02, "total grams")
}

func TestAnalyzeAllBackground(t *testing.T) {
	est := newTestEstimator(t)

	res := est.Analyze(SegmentationMap{{0, 0, 0}, {0, 0, 0}}, ClassLabelIndex{}, 10)

	if res.PlateType != PlateTypeFlat {
		t.Fatalf("plate type = %q, want flat", res.PlateType)
	}
	if res.TotalFoodPixels != 0 {
		t.Fatalf("total food pixels = %d, want 0", res.TotalFoodPixels)
	}
	if res.TotalGramsEst != 0.0 {
		t.Fatalf("total grams = %v, want 0.0", res.TotalGramsEst)
	}
	if res.Items == nil || len(res.Items) != 0 {
		t.Fatalf("items = %#v, want empty non-nil slice", res.Items)
	}
	approx(t, res.PlateAreaCM2, PlateAreaCM2, 0, "plate area")
}

func TestAnalyzeEmptyMap(t *testing.T) {
	est := newTestEstimator(t)

	res := est.Analyze(SegmentationMap{}, ClassLabelIndex{1: "rice"}, 10)

	if res.TotalFoodPixels != 0 || res.TotalGramsEst != 0.0 || len(res.Items) != 0 {
		t.Fatalf("empty map did not resolve to the zero result: %+v", res)
	}
}

func TestAnalyzeDeepPlateAtSoupBoundary(t *testing.T) {
	est := newTestEstimator(t)
	labels := ClassLabelIndex{1: "rice", 3: "soup"}

	// 100/400 puts soup exactly on the threshold.
	res := est.Analyze(segWith(
		ClassArea{ClassID: 1, Pixels: 300},
		ClassArea{ClassID: 3, Pixels: 100},
	), labels, 10)
	if res.PlateType != PlateTypeDeep {
		t.Fatalf("soup ratio 0.25: plate type = %q, want deep", res.PlateType)
	}

	// One pixel less and the plate is flat again.
	res = est.Analyze(segWith(
		ClassArea{ClassID: 1, Pixels: 301},
		ClassArea{ClassID: 3, Pixels: 99},
	), labels, 10)
	if res.PlateType != PlateTypeFlat {
		t.Fatalf("soup ratio 0.2475: plate type = %q, want flat", res.PlateType)
	}
}

func TestAnalyzeFlatPlateCapsSoupHeight(t *testing.T) {
	est := newTestEstimator(t)
	labels := ClassLabelIndex{1: "rice", 3: "soup"}

	// Soup at 20% keeps the plate flat, so its height drops to 0.8 cm.
	res := est.Analyze(segWith(
		ClassArea{ClassID: 1, Pixels: 320},
		ClassArea{ClassID: 3, Pixels: 80},
	), labels, 10)

	var soup *FoodItemEstimate
	for i := range res.Items {
		if res.Items[i].Label == "soup" {
			soup = &res.Items[i]
		}
	}
	if soup == nil {
		t.Fatal("soup missing from items")
	}
	want := 0.2 * PlateAreaCM2 * 0.8 * 1.00
	approx(t, soup.GramsEst, want, 1e-9, "flat-plate soup grams")
}

func TestAnalyzeDeepPlateClampsTallItems(t *testing.T) {
	est := newTestEstimator(t)
	labels := ClassLabelIndex{3: "soup", 4: "salad"}

	// Salad's 3.0 cm profile height clamps to the 2.0 cm rim depth.
	res := est.Analyze(segWith(
		ClassArea{ClassID: 3, Pixels: 100},
		ClassArea{ClassID: 4, Pixels: 300},
	), labels, 10)

	if res.PlateType != PlateTypeDeep {
		t.Fatalf("plate type = %q, want deep", res.PlateType)
	}
	var salad *FoodItemEstimate
	for i := range res.Items {
		if res.Items[i].Label == "salad" {
			salad = &res.Items[i]
		}
	}
	if salad == nil {
		t.Fatal("salad missing from items")
	}
	want := 0.75 * PlateAreaCM2 * 2.0 * 0.25
	approx(t, salad.GramsEst, want, 1e-9, "clamped salad grams")
}

func TestAnalyzeSauceAlwaysDropped(t *testing.T) {
	est := newTestEstimator(t)
	labels := ClassLabelIndex{1: "rice", 5: "sauce"}

	// Even at a 90% share, sauce never appears in the result.
	res := est.Analyze(segWith(
		ClassArea{ClassID: 1, Pixels: 10},
		ClassArea{ClassID: 5, Pixels: 90},
	), labels, 10)

	if len(res.Items) != 1 || res.Items[0].Label != "rice" {
		t.Fatalf("items = %+v, want rice only", res.Items)
	}
	want := 0.1 * PlateAreaCM2 * 1.5 * 0.85
	approx(t, res.TotalGramsEst, want, 1e-9, "total grams")
}

func TestAnalyzeMinAreaBoundary(t *testing.T) {
	est := newTestEstimator(t)
	labels := ClassLabelIndex{1: "rice", 2: "egg"}

	// A share of exactly 0.01 survives.
	res := est.Analyze(segWith(
		ClassArea{ClassID: 1, Pixels: 9900},
		ClassArea{ClassID: 2, Pixels: 100},
	), labels, 10)
	if len(res.Items) != 2 {
		t.Fatalf("share 0.01: got %d items, want 2", len(res.Items))
	}

	// A share of 0.0099 is noise and is dropped.
	res = est.Analyze(segWith(
		ClassArea{ClassID: 1, Pixels: 9901},
		ClassArea{ClassID: 2, Pixels: 99},
	), labels, 10)
	if len(res.Items) != 1 || res.Items[0].Label != "rice" {
		t.Fatalf("share 0.0099: items = %+v, want rice only", res.Items)
	}
}

func TestAnalyzeUnknownLabelUsesDefaults(t *testing.T) {
	est := newTestEstimator(t)

	res := est.Analyze(segWith(ClassArea{ClassID: 7, Pixels: 100}), ClassLabelIndex{}, 10)

	if len(res.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(res.Items))
	}
	if res.Items[0].Label != LabelUnknown {
		t.Fatalf("label = %q, want %q", res.Items[0].Label, LabelUnknown)
	}
	want := 1.0 * PlateAreaCM2 * DefaultHeightCM * DefaultDensity
	approx(t, res.Items[0].GramsEst, want, 1e-9, "unknown-label grams")

	if n := est.UnknownLabelCount(); n != 1 {
		t.Fatalf("unknown label count = %d, want 1", n)
	}
	if n := est.DefaultProfileCount(); n != 1 {
		t.Fatalf("default profile count = %d, want 1", n)
	}
}

func TestAnalyzeTopKTruncation(t *testing.T) {
	est := newTestEstimator(t)
	seg := segWith(
		ClassArea{ClassID: 1, Pixels: 50},
		ClassArea{ClassID: 2, Pixels: 30},
		ClassArea{ClassID: 3, Pixels: 20},
	)
	labels := ClassLabelIndex{1: "rice", 2: "egg", 3: "broccoli"}

	full := est.Analyze(seg, labels, 10)
	if len(full.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(full.Items))
	}
	sum := 0.0
	for _, it := range full.Items {
		sum += it.GramsEst
	}
	approx(t, full.TotalGramsEst, sum, 1e-9, "untruncated total")

	truncated := est.Analyze(seg, labels, 2)
	if len(truncated.Items) != 2 {
		t.Fatalf("top_k=2: got %d items, want 2", len(truncated.Items))
	}
	displayed := 0.0
	for _, it := range truncated.Items {
		displayed += it.GramsEst
	}
	if truncated.TotalGramsEst <= displayed {
		t.Fatalf("total %v must exceed displayed sum %v after truncation", truncated.TotalGramsEst, displayed)
	}
	approx(t, truncated.TotalGramsEst, full.TotalGramsEst, 0, "total unaffected by top_k")
}

func TestAnalyzeTopKNonPositive(t *testing.T) {
	est := newTestEstimator(t)
	seg := segWith(ClassArea{ClassID: 1, Pixels: 100})
	labels := ClassLabelIndex{1: "rice"}

	for _, topK := range []int{0, -5} {
		res := est.Analyze(seg, labels, topK)
		if res.Items == nil || len(res.Items) != 0 {
			t.Fatalf("top_k=%d: items = %#v, want empty non-nil slice", topK, res.Items)
		}
		if res.TotalGramsEst <= 0 {
			t.Fatalf("top_k=%d: total grams = %v, want > 0", topK, res.TotalGramsEst)
		}
	}
}

func TestAnalyzeEqualMassTieBreak(t *testing.T) {
	est := newTestEstimator(t)
	// Class ids 9 and 4 share a label and a pixel count, so their masses
	// are identical; the lower id must come first.
	seg := segWith(
		ClassArea{ClassID: 9, Pixels: 50},
		ClassArea{ClassID: 4, Pixels: 50},
	)
	labels := ClassLabelIndex{4: "rice", 9: "rice"}

	res := est.Analyze(seg, labels, 10)

	if len(res.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(res.Items))
	}
	if res.Items[0].GramsEst != res.Items[1].GramsEst {
		t.Fatalf("masses differ: %v vs %v", res.Items[0].GramsEst, res.Items[1].GramsEst)
	}
	if res.Items[0].ClassID != 4 || res.Items[1].ClassID != 9 {
		t.Fatalf("tie broken as [%d, %d], want [4, 9]", res.Items[0].ClassID, res.Items[1].ClassID)
	}
}

func TestAnalyzeDeterministicReruns(t *testing.T) {
	est := newTestEstimator(t)
	seg := segWith(
		ClassArea{ClassID: 1, Pixels: 37},
		ClassArea{ClassID: 2, Pixels: 21},
		ClassArea{ClassID: 4, Pixels: 21},
		ClassArea{ClassID: 8, Pixels: 21},
	)
	labels := ClassLabelIndex{1: "rice", 2: "egg", 4: "egg", 8: "pasta"}

	first := est.Analyze(seg, labels, 10)
	second := est.Analyze(seg, labels, 10)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reruns differ:\n%+v\n%+v", first, second)
	}
}

func TestAnalyzeConcurrentInvocations(t *testing.T) {
	est := newTestEstimator(t)
	seg := segWith(
		ClassArea{ClassID: 1, Pixels: 60},
		ClassArea{ClassID: 2, Pixels: 40},
	)
	labels := ClassLabelIndex{1: "rice", 2: "chicken duck"}
	want := est.Analyze(seg, labels, 10)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if got := est.Analyze(seg, labels, 10); !reflect.DeepEqual(got, want) {
					errs <- errMismatch
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		t.Fatal("concurrent invocations produced diverging results")
	}
}

var errMismatch = errors.New("mismatch")
