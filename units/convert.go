// Package units normalizes laboratory observation values to the canonical
// unit each analyte is scored in, and derives eGFR when only a serum
// creatinine is available.
package units

import (
	"strings"

	"github.com/intervention-engine/fhir/models"
	"github.com/rs/zerolog"
)

// AnalyteSpec describes the canonical unit for an analyte and the
// multiplicative factors from recognized source units.  Source unit keys are
// lowercase; the canonical unit itself always converts with factor 1.
type AnalyteSpec struct {
	Unit    string
	Factors map[string]float64
}

// TargetUnits maps analyte keys (HEMOGLOBIN, CREATININE, EGFR, WBC,
// PLATELETS) to their canonical unit and conversion table.
var TargetUnits = map[string]AnalyteSpec{
	"HEMOGLOBIN": {
		Unit: "g/dl",
		Factors: map[string]float64{
			"g/l":    0.1,
			"mmol/l": 1.61135,
			"mg/dl":  0.001,
		},
	},
	"CREATININE": {
		Unit: "mg/dl",
		Factors: map[string]float64{
			"umol/l": 0.0113,
			"µmol/l": 0.0113,
		},
	},
	"EGFR": {
		Unit: "ml/min/1.73m2",
		Factors: map[string]float64{
			"ml/min/{1.73_m2}":  1.0,
			"ml/min/1.73m^2":    1.0,
			"ml/min/1.73 m2":    1.0,
			"ml/min/1.73 m^2":   1.0,
			"ml/min per 1.73m2": 1.0,
			"ml/min/bsa":        1.0,
			"ml/min":            1.0,
		},
	},
	"WBC": {
		Unit: "10*9/l",
		Factors: map[string]float64{
			"10*3/ul": 1.0,
			"k/ul":    1.0,
			"/ul":     0.001,
			"/mm3":    0.001,
			"10^9/l":  1.0,
			"giga/l":  1.0,
		},
	},
	"PLATELETS": {
		Unit: "10*9/l",
		Factors: map[string]float64{
			"10*3/ul": 1.0,
			"k/ul":    1.0,
			"/ul":     0.001,
			"10^9/l":  1.0,
			"giga/l":  1.0,
		},
	},
}

// Converter converts observation values to canonical units.  Unconvertible
// values are logged and reported as absent rather than failing the
// calculation.
type Converter struct {
	log zerolog.Logger
}

// NewConverter returns a Converter that logs degradations to the given logger.
func NewConverter(log zerolog.Logger) *Converter {
	return &Converter{log: log}
}

// TargetUnit returns the canonical unit for the analyte, or "" for an unknown
// analyte key.
func TargetUnit(analyte string) string {
	return TargetUnits[analyte].Unit
}

// Convert converts value from sourceUnit to the analyte's canonical unit.
// Unit comparison is case-insensitive.  The second return is false when the
// analyte or unit is not recognized.
func (c *Converter) Convert(value float64, sourceUnit, analyte string) (float64, bool) {
	spec, ok := TargetUnits[analyte]
	if !ok {
		c.log.Warn().Str("analyte", analyte).Msg("no conversion table for analyte")
		return 0, false
	}
	unit := strings.ToLower(strings.TrimSpace(sourceUnit))
	if unit == spec.Unit {
		return value, true
	}
	factor, ok := spec.Factors[unit]
	if !ok {
		c.log.Warn().
			Str("analyte", analyte).
			Str("unit", sourceUnit).
			Msg("unconvertible unit, treating value as missing")
		return 0, false
	}
	return value * factor, true
}

// ValueFromObservation extracts the numeric value of an observation and
// converts it to the analyte's canonical unit.  Returns nil when the
// observation has no numeric value or the unit cannot be converted.
func (c *Converter) ValueFromObservation(obs *models.Observation, analyte string) *float64 {
	if obs == nil || obs.ValueQuantity == nil || obs.ValueQuantity.Value == nil {
		return nil
	}
	converted, ok := c.Convert(*obs.ValueQuantity.Value, obs.ValueQuantity.Unit, analyte)
	if !ok {
		return nil
	}
	return &converted
}
