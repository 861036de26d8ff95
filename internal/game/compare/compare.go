// Package compare sizes a trainer against a creature for the height and
// weight comparison views.
package compare

import "github.com/cory-johannsen/dexcompanion/internal/game/record"

const (
	// MaxVisualHeight is the tallest figure the height view draws, in pixels.
	MaxVisualHeight = 300.0
	// MaxTilt is the largest balance-scale rotation, in degrees.
	MaxTilt = 20.0
	tiltPerKg      = 0.5
)

// HeightCM converts a catalog height in decimetres to centimetres. A missing
// height is 0.
func HeightCM(r record.Record) float64 {
	if r.Height == nil {
		return 0
	}
	return float64(*r.Height) * 10
}

// WeightKG converts a catalog weight in hectograms to kilograms. A missing
// weight is 0.
func WeightKG(r record.Record) float64 {
	if r.Weight == nil {
		return 0
	}
	return float64(*r.Weight) / 10
}

// Heights is the result of a height comparison.
type Heights struct {
	TrainerCM      float64
	CreatureCM     float64
	Scale          float64
	TrainerVisual  float64
	CreatureVisual float64
}

// Height scales both figures so the taller one is MaxVisualHeight tall.
//
// Postcondition: Scale > 0; the larger visual height equals MaxVisualHeight
// unless both heights are below 1 cm.
func Height(trainerCM float64, r record.Record) Heights {
	creature := HeightCM(r)
	scale := MaxVisualHeight / max(trainerCM, creature, 1)
	return Heights{
		TrainerCM:      trainerCM,
		CreatureCM:     creature,
		Scale:          scale,
		TrainerVisual:  trainerCM * scale,
		CreatureVisual: creature * scale,
	}
}

// Weights is the result of a weight comparison.
type Weights struct {
	TrainerKG  float64
	CreatureKG float64
	// Tilt is the balance rotation in degrees; positive means the creature's
	// side is lower.
	Tilt float64
}

// Weight computes the balance-scale tilt, clamped to ±MaxTilt.
func Weight(trainerKG float64, r record.Record) Weights {
	creature := WeightKG(r)
	w := Weights{TrainerKG: trainerKG, CreatureKG: creature}
	if trainerKG+creature > 0 {
		w.Tilt = min(max((creature-trainerKG)*tiltPerKg, -MaxTilt), MaxTilt)
	}
	return w
}
