package estimation

import "sort"

// AggregateAreas counts the pixels of every class in the map, dropping
// background (id 0) unconditionally. The result is ordered by ascending
// class id.
func AggregateAreas(seg SegmentationMap) AreaAggregate {
	counts := make(map[int]int)
	for _, row := range seg {
		for _, id := range row {
			if id == 0 {
				continue
			}
			counts[id]++
		}
	}

	agg := make(AreaAggregate, 0, len(counts))
	for id, px := range counts {
		agg = append(agg, ClassArea{ClassID: id, Pixels: px})
	}
	sort.Slice(agg, func(i, j int) bool { return agg[i].ClassID < agg[j].ClassID })
	return agg
}

// LabelRatios groups the aggregate by normalized label and divides by the
// total non-background pixel count. Shares of distinct class ids carrying
// the same label are summed; before any filtering the values add up to 1.0.
func LabelRatios(agg AreaAggregate, labels ClassLabelIndex) map[string]float64 {
	ratios := make(map[string]float64, len(agg))
	total := agg.TotalPixels()
	if total == 0 {
		return ratios
	}
	for _, c := range agg {
		ratios[labels.LabelFor(c.ClassID)] += float64(c.Pixels) / float64(total)
	}
	return ratios
}

// ClassifyPlate decides flat versus deep from the soup area share alone.
func ClassifyPlate(ratios map[string]float64) PlateType {
	if ratios[LabelSoup] >= SoupDeepThreshold {
		return PlateTypeDeep
	}
	return PlateTypeFlat
}
