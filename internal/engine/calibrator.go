package engine

// Calibrator applies the symptom-count confidence adjustment: thin
// evidence halves confidence, convergent evidence boosts it slightly.
// The final value always lands in [0, 1].
type Calibrator struct {
	lowFactor  float64
	highFactor float64
	lowCount   int
	highCount  int
}

// NewCalibrator configures the evidence thresholds and factors.
func NewCalibrator(lowFactor, highFactor float64, lowCount, highCount int) *Calibrator {
	return &Calibrator{
		lowFactor:  lowFactor,
		highFactor: highFactor,
		lowCount:   lowCount,
		highCount:  highCount,
	}
}

// Calibrate adjusts confidence for the detected symptom count and
// clamps to [0, 1].
func (c *Calibrator) Calibrate(confidence float64, symptomCount int) float64 {
	if symptomCount < c.lowCount {
		confidence *= c.lowFactor
	} else if symptomCount > c.highCount {
		confidence *= c.highFactor
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
