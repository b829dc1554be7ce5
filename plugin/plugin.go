package plugin

import (
	"time"

	"github.com/intervention-engine/fhir/models"
)

// RiskServicePlugin provides the interface that risk calculation plugins
// should adhere to.  This pertains only to this implementation -- as the only
// real interface that matters is the FHIR API.  But... this provides an easy
// entry point for Go-based risk calculators.
type RiskServicePlugin interface {
	// Config returns the configuration information for the risk service plugin
	Config() RiskServicePluginConfig
	// Calculate accepts the materialized clinical data for a single patient and
	// returns the corresponding calculation result.  The clinical data must be
	// fully materialized before the call; plugins never perform I/O.
	Calculate(data *ClinicalData, demographics Demographics) (*RiskServiceCalculationResult, error)
}

// RiskServicePluginConfig represents key information about the risk service plugin.
type RiskServicePluginConfig struct {
	Name                  string
	Method                models.CodeableConcept
	PredictedOutcome      models.CodeableConcept
	RequiredResourceTypes []string
}

// RiskServiceCalculationResult represents the risk assessment for a patient at
// a point in time.  The Score is the raw score from the algorithm, while the
// ProbabilityDecimal represents a percentage probability of the predicted
// outcome.  Since it is a percentage, the value should never exceed 100.
// MissingFields names the continuous inputs that were unavailable; a non-empty
// list means the score was computed with reduced confidence, not that it
// failed.
type RiskServiceCalculationResult struct {
	AsOf               time.Time
	Score              *int
	ProbabilityDecimal *float64
	Breakdown          *Breakdown
	MissingFields      []string
}

// GetProbabilityDecimalOrScore returns the ProbabilityDecimal value if it exists, otherwise it returns the score.
func (r *RiskServiceCalculationResult) GetProbabilityDecimalOrScore() *float64 {
	if r.ProbabilityDecimal != nil {
		return r.ProbabilityDecimal
	} else if r.Score != nil {
		f := float64(*r.Score)
		return &f
	}
	return nil
}

// ToRiskAssessment converts the RiskServiceCalculationResult to a FHIR RiskAssessment.
// The basis reference points back to the stored breakdown, which carries the
// per-component detail that FHIR cannot represent.
func (r *RiskServiceCalculationResult) ToRiskAssessment(patientID string, basisBreakdownURL string, config RiskServicePluginConfig) *models.RiskAssessment {
	return &models.RiskAssessment{
		Subject: &models.Reference{Reference: "Patient/" + patientID},
		Method:  &config.Method,
		Date:    &models.FHIRDateTime{Time: r.AsOf, Precision: models.Timestamp},
		Prediction: []models.RiskAssessmentPredictionComponent{
			{
				ProbabilityDecimal: r.GetProbabilityDecimalOrScore(),
				Outcome:            &config.PredictedOutcome,
			},
		},
		Basis: []models.Reference{
			{Reference: basisBreakdownURL + "/" + r.Breakdown.Id.Hex()},
		},
	}
}

// NotApplicableError indicates that the given algorithm is not applicable
// for the requested patient.  It would be inappropriate to return a score.
type NotApplicableError struct {
	msg string
}

// NewNotApplicableError returns a new NotApplicableError with the given
// message.
func NewNotApplicableError(msg string) NotApplicableError {
	return NotApplicableError{msg: msg}
}

func (e NotApplicableError) Error() string { return e.msg }
