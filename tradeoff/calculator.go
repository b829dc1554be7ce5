package tradeoff

import (
	"github.com/intervention-engine/fhir/models"
	"github.com/rs/zerolog"

	"github.com/Justine11289/Precise-HBR/concept"
	"github.com/Justine11289/Precise-HBR/config"
	"github.com/Justine11289/Precise-HBR/plugin"
	"github.com/Justine11289/Precise-HBR/units"
)

// Factor keys shared between detection and the model's predictor lists.
const (
	FactorAge65              = "age_ge_65"
	FactorHemoglobinModerate = "hemoglobin_11_12.9"
	FactorHemoglobinSevere   = "hemoglobin_lt_11"
	FactorEGFRModerate       = "egfr_30_59"
	FactorEGFRSevere         = "egfr_lt_30"
	FactorDiabetes           = "diabetes"
	FactorPriorMI            = "prior_mi"
	FactorSmoker             = "smoker"
	FactorNSTEMISTEMI        = "nstemi_stemi"
	FactorComplexPCI         = "complex_pci"
	FactorBMS                = "bms"
	FactorCOPD               = "copd"
	FactorOACDischarge       = "oac_discharge"
)

// Result is the tradeoff estimate for one patient: the adjusted 1-year event
// probabilities (percent) with the descriptions of the predictors that drove
// each, and the inputs that could not be evaluated.
type Result struct {
	BleedingRisk      float64  `json:"bleedingRisk"`
	ThromboticRisk    float64  `json:"thromboticRisk"`
	BleedingFactors   []string `json:"bleedingFactors"`
	ThromboticFactors []string `json:"thromboticFactors"`
	MissingData       []string `json:"missingData,omitempty"`
	Warning           string   `json:"warning,omitempty"`
}

// Calculator detects tradeoff risk factors from clinical data and evaluates
// the hazard model over them.
type Calculator struct {
	model     *Model
	cfg       config.TradeoffConfig
	matcher   *concept.Matcher
	converter *units.Converter
	log       zerolog.Logger
}

// NewCalculator wires a Calculator to the loaded model and reference tables.
func NewCalculator(model *Model, ref *config.Reference, log zerolog.Logger) *Calculator {
	return &Calculator{
		model:     model,
		cfg:       ref.Tradeoff,
		matcher:   concept.NewMatcher(ref, log),
		converter: units.NewConverter(log),
		log:       log,
	}
}

// Calculate detects the patient's risk factors and evaluates both outcome
// probabilities at the configured baseline rates.
func (c *Calculator) Calculate(data *plugin.ClinicalData, demographics plugin.Demographics) Result {
	active, missing := c.DetectFactors(data, demographics)
	result := c.evaluate(active, c.cfg.DefaultBleedingRate, c.cfg.DefaultThromboticRate)
	result.MissingData = missing
	if len(missing) > 0 {
		result.Warning = "Some inputs were unavailable; the estimate assumes the corresponding factors are absent."
	}
	return result
}

// CalculateInteractive evaluates both outcome probabilities for a caller
// supplied factor set, serving interactive what-if recalculation.  Zero
// baseline rates fall back to the configured defaults.
func (c *Calculator) CalculateInteractive(active map[string]bool, baselineBleeding, baselineThrombotic float64) Result {
	if baselineBleeding == 0 {
		baselineBleeding = c.cfg.DefaultBleedingRate
	}
	if baselineThrombotic == 0 {
		baselineThrombotic = c.cfg.DefaultThromboticRate
	}
	return c.evaluate(active, baselineBleeding, baselineThrombotic)
}

func (c *Calculator) evaluate(active map[string]bool, baselineBleeding, baselineThrombotic float64) Result {
	bleedingHR, bleedingFactors := ComposeHR(active, c.model.BleedingEvents.Predictors)
	thromboticHR, thromboticFactors := ComposeHR(active, c.model.ThromboticEvents.Predictors)
	return Result{
		BleedingRisk:      HRToProbability(baselineBleeding, bleedingHR),
		ThromboticRisk:    HRToProbability(baselineThrombotic, thromboticHR),
		BleedingFactors:   bleedingFactors,
		ThromboticFactors: thromboticFactors,
	}
}

// DetectFactors evaluates every factor the model knows over the clinical
// data.  Continuous inputs that cannot be obtained are reported in the
// missing list and leave their factors inactive; undocumented conditions,
// procedures, and medications are confirmed negatives.
func (c *Calculator) DetectFactors(data *plugin.ClinicalData, demographics plugin.Demographics) (map[string]bool, []string) {
	active := make(map[string]bool)
	var missing []string

	if demographics.Age != nil {
		active[FactorAge65] = *demographics.Age >= c.cfg.AgeThreshold
	} else {
		missing = append(missing, "age")
	}

	if hb := c.labValue(data.Hemoglobin, "HEMOGLOBIN"); hb != nil {
		active[FactorHemoglobinSevere] = *hb < c.cfg.HemoglobinSevereBelow
		active[FactorHemoglobinModerate] = *hb >= c.cfg.HemoglobinSevereBelow && *hb < c.cfg.HemoglobinModerateBelow
	} else {
		missing = append(missing, "hemoglobin")
	}

	if egfr := c.egfrValue(data, demographics); egfr != nil {
		active[FactorEGFRSevere] = *egfr < c.cfg.EGFRSevereBelow
		active[FactorEGFRModerate] = *egfr >= c.cfg.EGFRSevereBelow && *egfr < c.cfg.EGFRModerateBelow
	} else {
		missing = append(missing, "egfr")
	}

	if len(data.SmokingStatus) > 0 {
		active[FactorSmoker] = c.isSmoker(&data.SmokingStatus[0])
	} else {
		missing = append(missing, "smoking_status")
	}

	for factor, conceptName := range map[string]string{
		FactorDiabetes:    "diabetes",
		FactorPriorMI:     "prior_mi",
		FactorNSTEMISTEMI: "nstemi_stemi",
		FactorCOPD:        "copd",
	} {
		active[factor] = c.anyConditionMatches(data.Conditions, conceptName)
	}
	for factor, conceptName := range map[string]string{
		FactorComplexPCI: "complex_pci",
		FactorBMS:        "bms",
	} {
		active[factor] = c.anyProcedureMatches(data.Procedures, conceptName)
	}
	active[FactorOACDischarge] = c.matcher.OralAnticoagulation(data.MedRequests)

	return active, missing
}

func (c *Calculator) anyConditionMatches(conditions []models.Condition, conceptName string) bool {
	criteria := c.cfg.ConditionCodes[conceptName]
	for i := range conditions {
		if c.matcher.CodeMatches(conditions[i].Code, criteria) {
			return true
		}
	}
	return false
}

func (c *Calculator) anyProcedureMatches(procedures []models.Procedure, conceptName string) bool {
	criteria := c.cfg.ConditionCodes[conceptName]
	for i := range procedures {
		if c.matcher.CodeMatches(procedures[i].Code, criteria) {
			return true
		}
	}
	return false
}

// isSmoker checks the smoking status observation's coded answer against the
// configured current-smoker codes, regardless of code system.
func (c *Calculator) isSmoker(obs *models.Observation) bool {
	if obs.ValueCodeableConcept == nil {
		return false
	}
	for _, coding := range obs.ValueCodeableConcept.Coding {
		for _, code := range c.cfg.SmokerCodes {
			if coding.Code == code {
				return true
			}
		}
	}
	return false
}

func (c *Calculator) labValue(observations []models.Observation, analyte string) *float64 {
	if len(observations) == 0 {
		return nil
	}
	return c.converter.ValueFromObservation(&observations[0], analyte)
}

func (c *Calculator) egfrValue(data *plugin.ClinicalData, demographics plugin.Demographics) *float64 {
	if reported := c.labValue(data.EGFR, "EGFR"); reported != nil {
		return reported
	}
	creatinine := c.labValue(data.Creatinine, "CREATININE")
	if creatinine == nil || demographics.Age == nil {
		return nil
	}
	egfr, err := units.CalculateEGFR(*creatinine, *demographics.Age, demographics.Gender)
	if err != nil {
		c.log.Warn().Err(err).Msg("cannot derive eGFR for tradeoff factors")
		return nil
	}
	derived := float64(egfr)
	return &derived
}
