// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package scoring

// Weights are the four term coefficients of the rank score. Distance is
// subtracted at scoring time: a positive Beta penalizes far venues.
type Weights struct {
	// Alpha weighs cosine similarity between profile and venue.
	Alpha float64 `json:"alpha" koanf:"alpha"`
	// Beta weighs the distance penalty (km, subtracted).
	Beta float64 `json:"beta" koanf:"beta"`
	// Gamma weighs the normalized venue rating.
	Gamma float64 `json:"gamma" koanf:"gamma"`
	// Delta weighs the normalized price contribution.
	Delta float64 `json:"delta" koanf:"delta"`
}

// DefaultWeights returns the production defaults.
func DefaultWeights() Weights {
	return Weights{Alpha: 0.8, Beta: 0.7, Gamma: 0.2, Delta: 0.4}
}

// withOverride returns a copy with the named weight replaced. Unknown
// names leave the weights unchanged.
func (w Weights) withOverride(name string, value float64) Weights {
	switch name {
	case "alpha":
		w.Alpha = value
	case "beta":
		w.Beta = value
	case "gamma":
		w.Gamma = value
	case "delta":
		w.Delta = value
	}
	return w
}
