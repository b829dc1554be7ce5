// Package tradeoff estimates the bleeding/thrombosis tradeoff by composing
// published hazard ratios over the patient's risk factors and transforming
// the aggregate hazard into an event probability.
package tradeoff

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Predictor is one risk factor with its hazard ratio in a predictor group.
type Predictor struct {
	Factor      string  `json:"factor"`
	HazardRatio float64 `json:"hazardRatio"`
	Description string  `json:"description,omitempty"`
}

// DisplayString renders the predictor for the factor lists shown to
// clinicians.  A predictor with no description falls back to its factor key.
func (p Predictor) DisplayString() string {
	name := p.Description
	if name == "" {
		name = p.Factor
	}
	return fmt.Sprintf("%s (HR: %g)", name, p.HazardRatio)
}

// PredictorGroup is the predictor list for one outcome.
type PredictorGroup struct {
	Predictors []Predictor `json:"predictors"`
}

// Model is the static hazard model with separate predictor lists for
// bleeding and thrombotic events.
type Model struct {
	BleedingEvents   PredictorGroup `json:"bleedingEvents"`
	ThromboticEvents PredictorGroup `json:"thromboticEvents"`
}

type modelFile struct {
	TradeoffModel Model `json:"tradeoffModel"`
}

// LoadModel reads the hazard model JSON at path.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tradeoff model: %w", err)
	}
	file := modelFile{}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing tradeoff model %s: %w", path, err)
	}
	if len(file.TradeoffModel.BleedingEvents.Predictors) == 0 &&
		len(file.TradeoffModel.ThromboticEvents.Predictors) == 0 {
		return nil, fmt.Errorf("tradeoff model %s has no predictors", path)
	}
	return &file.TradeoffModel, nil
}

// ComposeHR multiplies the hazard ratios of the active predictors and returns
// the aggregate hazard ratio plus the display strings of the predictors that
// contributed.
func ComposeHR(active map[string]bool, predictors []Predictor) (float64, []string) {
	hr := 1.0
	var applied []string
	for _, predictor := range predictors {
		if active[predictor.Factor] {
			hr *= predictor.HazardRatio
			applied = append(applied, predictor.DisplayString())
		}
	}
	return hr, applied
}

// HRToProbability converts a baseline event rate (percent) and an aggregate
// hazard ratio to an adjusted event probability (percent) via the exponential
// survival transform.  The result is clamped to [0, 100] and rounded to two
// decimals.  A baseline at or above 100% is already certainty.
func HRToProbability(baselineRatePercent, hazardRatio float64) float64 {
	if baselineRatePercent >= 100 {
		return 100.0
	}
	if baselineRatePercent <= 0 {
		return 0.0
	}
	baselineHazard := -math.Log(1 - baselineRatePercent/100)
	probability := (1 - math.Exp(-baselineHazard*hazardRatio)) * 100
	probability = math.Max(0, math.Min(probability, 100))
	return math.Round(probability*100) / 100
}
