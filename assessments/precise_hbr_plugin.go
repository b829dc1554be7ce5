// Package assessments implements the PRECISE-HBR bleeding risk calculation
// as a risk service plugin, from input extraction through the per-component
// score breakdown.
package assessments

import (
	"fmt"
	"math"
	"time"

	"github.com/intervention-engine/fhir/models"
	"github.com/rs/zerolog"

	"github.com/Justine11289/Precise-HBR/concept"
	"github.com/Justine11289/Precise-HBR/config"
	"github.com/Justine11289/Precise-HBR/plugin"
	"github.com/Justine11289/Precise-HBR/units"
)

// Scoring constants.  The clamp windows bound each continuous term's
// contribution; values outside a window score as if at its edge.
const (
	baseScore = 2.0

	ageFloor     = 30.0
	ageCeiling   = 80.0
	agePerYear   = 0.25
	hbFloor      = 5.0
	hbCeiling    = 15.0
	hbPerUnit    = 2.5
	egfrFloor    = 5.0
	egfrCeiling  = 100.0
	egfrPerUnit  = 0.05
	wbcReference = 3.0
	wbcCeiling   = 15.0
	wbcPerUnit   = 0.8

	priorBleedingPoints   = 7.0
	anticoagulationPoints = 5.0
	arcHBRPoints          = 3.0
)

// outdatedAfter is how old a lab observation can be before its breakdown row
// is flagged as outdated.
const outdatedAfter = 90 * 24 * time.Hour

// LabValue is one continuous input after unit normalization.  A nil Value
// means the input is missing and contributes nothing to the score.
type LabValue struct {
	Value    *float64
	Date     string
	Outdated bool
	Derived  bool
}

// ScoreInputs are the extracted inputs to the scoring formula.  Continuous
// absences are listed in MissingFields; absent conditions and medications are
// confirmed negatives and never appear there.
type ScoreInputs struct {
	Age                 *int
	Hemoglobin          LabValue
	EGFR                LabValue
	WBC                 LabValue
	Platelets           *float64
	PriorBleeding       bool
	OralAnticoagulation bool
	ARCHBR              concept.ARCHBRFactors
	MissingFields       []string
}

// ScoreComponents are the unrounded per-term contributions.  Their sum,
// rounded half to even, is the total score.
type ScoreComponents struct {
	Base            float64
	Age             float64
	Hemoglobin      float64
	EGFR            float64
	WBC             float64
	PriorBleeding   float64
	Anticoagulation float64
	ARCHBR          float64
}

// Sum totals the contributions.
func (s ScoreComponents) Sum() float64 {
	return s.Base + s.Age + s.Hemoglobin + s.EGFR + s.WBC +
		s.PriorBleeding + s.Anticoagulation + s.ARCHBR
}

// PreciseHBRPlugin is a RiskServicePlugin that calculates the PRECISE-HBR
// bleeding risk score.
type PreciseHBRPlugin struct {
	ref       *config.Reference
	converter *units.Converter
	matcher   *concept.Matcher
	log       zerolog.Logger
}

// NewPreciseHBRPlugin returns a plugin wired to the given reference tables.
func NewPreciseHBRPlugin(ref *config.Reference, log zerolog.Logger) *PreciseHBRPlugin {
	return &PreciseHBRPlugin{
		ref:       ref,
		converter: units.NewConverter(log),
		matcher:   concept.NewMatcher(ref, log),
		log:       log,
	}
}

// Config provides the configuration parameters for the PRECISE-HBR plugin.
func (p *PreciseHBRPlugin) Config() plugin.RiskServicePluginConfig {
	return plugin.RiskServicePluginConfig{
		Name: "PRECISE-HBR",
		Method: models.CodeableConcept{
			Text: "PRECISE-HBR bleeding risk score",
		},
		PredictedOutcome: models.CodeableConcept{
			Text: "Major bleeding (BARC 3 or 5) within 1 year",
		},
		RequiredResourceTypes: []string{"Patient", "Observation", "Condition", "MedicationStatement"},
	}
}

// Calculate extracts the score inputs from the clinical data and produces the
// score with its full component breakdown.
func (p *PreciseHBRPlugin) Calculate(data *plugin.ClinicalData, demographics plugin.Demographics) (*plugin.RiskServiceCalculationResult, error) {
	if data == nil {
		return nil, plugin.NewNotApplicableError("no clinical data supplied")
	}

	inputs := p.ExtractInputs(data, demographics)
	components := CalculatePureScore(inputs)
	breakdown := p.buildBreakdown(data.PatientRef(), inputs, components)
	breakdown.Finalize()

	score := breakdown.TotalScore
	return &plugin.RiskServiceCalculationResult{
		AsOf:          time.Now(),
		Score:         &score,
		Breakdown:     breakdown,
		MissingFields: inputs.MissingFields,
	}, nil
}

// ExtractInputs normalizes the clinical data into the scoring formula's
// inputs.  Each continuous input that cannot be obtained is recorded in
// MissingFields; binary inputs default to false when undocumented.
func (p *PreciseHBRPlugin) ExtractInputs(data *plugin.ClinicalData, demographics plugin.Demographics) ScoreInputs {
	inputs := ScoreInputs{Age: demographics.Age}
	if inputs.Age == nil {
		inputs.MissingFields = append(inputs.MissingFields, "Age")
	}

	inputs.Hemoglobin = p.labValue(data.Hemoglobin, "HEMOGLOBIN")
	if inputs.Hemoglobin.Value == nil {
		inputs.MissingFields = append(inputs.MissingFields, "Hemoglobin")
	}

	inputs.EGFR = p.egfrValue(data, demographics)
	if inputs.EGFR.Value == nil {
		inputs.MissingFields = append(inputs.MissingFields, "eGFR")
	}

	inputs.WBC = p.labValue(data.WBC, "WBC")
	if inputs.WBC.Value == nil {
		inputs.MissingFields = append(inputs.MissingFields, "WBC")
	}

	inputs.Platelets = p.labValue(data.Platelets, "PLATELETS").Value

	inputs.PriorBleeding = p.matcher.PriorBleeding(data.Conditions)
	inputs.OralAnticoagulation = p.matcher.OralAnticoagulation(data.MedRequests)
	inputs.ARCHBR = p.matcher.ARCHBRFactors(data.Conditions, data.MedRequests, inputs.Platelets)
	return inputs
}

// CalculatePureScore evaluates the scoring formula over already-extracted
// inputs.  Missing continuous inputs contribute zero.
func CalculatePureScore(inputs ScoreInputs) ScoreComponents {
	components := ScoreComponents{Base: baseScore}

	if inputs.Age != nil {
		age := clamp(float64(*inputs.Age), ageFloor, ageCeiling)
		if age > ageFloor {
			components.Age = agePerYear * (age - ageFloor)
		}
	}
	if inputs.Hemoglobin.Value != nil {
		hb := clamp(*inputs.Hemoglobin.Value, hbFloor, hbCeiling)
		if hb < hbCeiling {
			components.Hemoglobin = hbPerUnit * (hbCeiling - hb)
		}
	}
	if inputs.EGFR.Value != nil {
		egfr := clamp(*inputs.EGFR.Value, egfrFloor, egfrCeiling)
		if egfr < egfrCeiling {
			components.EGFR = egfrPerUnit * (egfrCeiling - egfr)
		}
	}
	if inputs.WBC.Value != nil {
		wbc := math.Min(*inputs.WBC.Value, wbcCeiling)
		if wbc > wbcReference {
			components.WBC = wbcPerUnit * (wbc - wbcReference)
		}
	}
	if inputs.PriorBleeding {
		components.PriorBleeding = priorBleedingPoints
	}
	if inputs.OralAnticoagulation {
		components.Anticoagulation = anticoagulationPoints
	}
	if inputs.ARCHBR.Any() {
		components.ARCHBR = arcHBRPoints
	}
	return components
}

func (p *PreciseHBRPlugin) labValue(observations []models.Observation, analyte string) LabValue {
	if len(observations) == 0 {
		return LabValue{}
	}
	obs := &observations[0]
	value := p.converter.ValueFromObservation(obs, analyte)
	if value == nil {
		return LabValue{}
	}
	return LabValue{
		Value:    value,
		Date:     plugin.EffectiveDateString(obs),
		Outdated: observationOutdated(obs),
	}
}

// egfrValue prefers a reported eGFR observation and falls back to deriving
// one from serum creatinine when age and gender allow.
func (p *PreciseHBRPlugin) egfrValue(data *plugin.ClinicalData, demographics plugin.Demographics) LabValue {
	if reported := p.labValue(data.EGFR, "EGFR"); reported.Value != nil {
		return reported
	}
	creatinine := p.labValue(data.Creatinine, "CREATININE")
	if creatinine.Value == nil || demographics.Age == nil {
		return LabValue{}
	}
	egfr, err := units.CalculateEGFR(*creatinine.Value, *demographics.Age, demographics.Gender)
	if err != nil {
		p.log.Warn().Err(err).Msg("cannot derive eGFR from creatinine")
		return LabValue{}
	}
	derived := float64(egfr)
	return LabValue{
		Value:    &derived,
		Date:     creatinine.Date,
		Outdated: creatinine.Outdated,
		Derived:  true,
	}
}

func (p *PreciseHBRPlugin) buildBreakdown(patientRef string, inputs ScoreInputs, components ScoreComponents) *plugin.Breakdown {
	breakdown := plugin.NewBreakdown(patientRef)
	breakdown.Components = append(breakdown.Components,
		plugin.Component{
			Parameter: "PRECISE-HBR - Base Score",
			Value:     "2",
			Score:     components.Base,
			IsPresent: true,
		},
		ageComponent(inputs, components),
		labComponent("PRECISE-HBR - Hemoglobin", inputs.Hemoglobin, components.Hemoglobin, units.TargetUnit("HEMOGLOBIN")),
		egfrComponent(inputs, components),
		labComponent("PRECISE-HBR - WBC", inputs.WBC, components.WBC, units.TargetUnit("WBC")),
		booleanComponent("PRECISE-HBR - Prior Bleeding", inputs.PriorBleeding, components.PriorBleeding),
		booleanComponent("PRECISE-HBR - Oral Anticoagulation", inputs.OralAnticoagulation, components.Anticoagulation),
		plugin.Component{
			Parameter: "PRECISE-HBR - ARC-HBR Criteria",
			Value:     fmt.Sprintf("%d", inputs.ARCHBR.Count()),
			Score:     components.ARCHBR,
			IsPresent: inputs.ARCHBR.Any(),
		},
	)
	breakdown.Components = append(breakdown.Components, arcElementComponents(inputs.ARCHBR)...)
	return breakdown
}

func ageComponent(inputs ScoreInputs, components ScoreComponents) plugin.Component {
	component := plugin.Component{
		Parameter: "PRECISE-HBR - Age",
		Value:     "N/A",
		Score:     components.Age,
	}
	if inputs.Age != nil {
		raw := float64(*inputs.Age)
		component.Value = fmt.Sprintf("%d years", *inputs.Age)
		component.RawValue = &raw
		component.IsPresent = true
	}
	return component
}

func egfrComponent(inputs ScoreInputs, components ScoreComponents) plugin.Component {
	component := labComponent("PRECISE-HBR - eGFR", inputs.EGFR, components.EGFR, units.TargetUnit("EGFR"))
	if inputs.EGFR.Derived {
		component.Description = "Derived from serum creatinine (" + units.EGFRMethod + ")"
	}
	return component
}

func labComponent(parameter string, value LabValue, score float64, unit string) plugin.Component {
	component := plugin.Component{
		Parameter:  parameter,
		Value:      "N/A",
		Score:      score,
		Date:       value.Date,
		IsOutdated: value.Outdated,
	}
	if value.Value != nil {
		component.Value = fmt.Sprintf("%g %s", *value.Value, unit)
		component.RawValue = value.Value
		component.IsPresent = true
	}
	return component
}

func booleanComponent(parameter string, present bool, score float64) plugin.Component {
	value := "No"
	if present {
		value = "Yes"
	}
	return plugin.Component{
		Parameter: parameter,
		Value:     value,
		Score:     score,
		IsPresent: present,
	}
}

// arcElementComponents emits display-only rows for the individual ARC-HBR
// criteria.  They carry no score; the aggregate row already holds the points.
func arcElementComponents(factors concept.ARCHBRFactors) []plugin.Component {
	elements := []struct {
		name    string
		present bool
	}{
		{"ARC-HBR - Bleeding Diathesis", factors.BleedingDiathesis},
		{"ARC-HBR - Liver Cirrhosis with Portal Hypertension", factors.CirrhosisWithPortalHTN},
		{"ARC-HBR - Active Malignancy", factors.ActiveCancer},
		{"ARC-HBR - Thrombocytopenia", factors.Thrombocytopenia},
		{"ARC-HBR - Chronic NSAID or Corticosteroid Use", factors.NSAIDsOrCorticosteroids},
	}
	components := make([]plugin.Component, 0, len(elements))
	for _, element := range elements {
		value := "No"
		if element.present {
			value = "Yes"
		}
		components = append(components, plugin.Component{
			Parameter:       element.name,
			Value:           value,
			IsPresent:       element.present,
			IsARCHBRElement: true,
		})
	}
	return components
}

func observationOutdated(obs *models.Observation) bool {
	if obs.EffectiveDateTime == nil {
		return false
	}
	return time.Since(obs.EffectiveDateTime.Time) > outdatedAfter
}

func clamp(value, low, high float64) float64 {
	return math.Max(low, math.Min(value, high))
}
