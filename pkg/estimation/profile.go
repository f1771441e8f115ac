package estimation

import (
	"fmt"
	"math"
)

// Reference plate geometry. A single fixed circular plate is assumed; the
// real plate size is never derived from the image.
const (
	PlateDiameterCM = 26.0
	PlateRadiusCM   = PlateDiameterCM / 2.0
)

// PlateAreaCM2 is the reference plate surface, about 530.93 cm2.
var PlateAreaCM2 = math.Pi * PlateRadiusCM * PlateRadiusCM

const (
	// SoupDeepThreshold is the soup area share at or above which the plate
	// is classified as deep.
	SoupDeepThreshold = 0.25

	DeepPlateDepthCM    = 2.0
	DeepPlateFillFactor = 0.8

	// MinAreaRatioKeep drops classes whose area share falls strictly below
	// it; a share of exactly 0.01 is kept. Regions this small are assumed
	// to be segmentation noise rather than food.
	MinAreaRatioKeep = 0.01

	// MinSauceRatioKeep is carried over from the reference configuration
	// but is not consulted: sauce is excluded outright whatever its share.
	MinSauceRatioKeep = 0.02

	// FlatPlateSoupHeightCM caps soup on a flat plate, which cannot hold it
	// as deep as a bowl.
	FlatPlateSoupHeightCM = 0.8
)

const (
	LabelSoup    = "soup"
	LabelSauce   = "sauce"
	LabelUnknown = "unknown"
)

// Fallback profile for labels absent from the table. This models an
// average-density assumption for unseen food classes, not a lookup failure.
const (
	DefaultDensity  = 0.80
	DefaultHeightCM = 1.50
)

// PhysicalProfile is the static pair assumed for a food label, used to turn
// a 2D area share into an estimated 3D mass.
type PhysicalProfile struct {
	Density  float64 // g/cm3
	HeightCM float64
}

type ProfileTable map[string]PhysicalProfile

// DefaultProfileTable returns the built-in density and height assumptions
// for the label vocabulary of the segmentation model.
func DefaultProfileTable() ProfileTable {
	return ProfileTable{
		"soup":         {Density: 1.00, HeightCM: DeepPlateDepthCM * DeepPlateFillFactor},
		"sauce":        {Density: 1.05, HeightCM: 0.30},
		"rice":         {Density: 0.85, HeightCM: 1.50},
		"noodles":      {Density: 0.75, HeightCM: 1.60},
		"pasta":        {Density: 0.75, HeightCM: 1.60},
		"french fries": {Density: 0.55, HeightCM: 1.80},
		"steak":        {Density: 1.05, HeightCM: 1.20},
		"pork":         {Density: 1.05, HeightCM: 1.20},
		"chicken duck": {Density: 1.05, HeightCM: 1.20},
		"fried meat":   {Density: 1.05, HeightCM: 1.20},
		"sausage":      {Density: 1.05, HeightCM: 1.20},
		"egg":          {Density: 1.00, HeightCM: 1.20},
		"salad":        {Density: 0.25, HeightCM: 3.00},
		"lettuce":      {Density: 0.20, HeightCM: 2.50},
		"broccoli":     {Density: 0.35, HeightCM: 2.50},
	}
}

// ConfigurationError reports an unusable profile table at construction
// time. It is never produced per request.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "estimation: " + e.Reason
}

func (t ProfileTable) validate() error {
	if len(t) == 0 {
		return &ConfigurationError{Reason: "profile table is empty"}
	}
	for label, p := range t {
		if label == "" {
			return &ConfigurationError{Reason: "profile table contains an empty label"}
		}
		if p.Density <= 0 {
			return &ConfigurationError{Reason: fmt.Sprintf("label %q has non-positive density %v", label, p.Density)}
		}
		if p.HeightCM <= 0 {
			return &ConfigurationError{Reason: fmt.Sprintf("label %q has non-positive height %v", label, p.HeightCM)}
		}
	}
	return nil
}
