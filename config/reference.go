// Package config loads the reference tables driving concept matching and
// tradeoff factor detection, and the process settings for the server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ConceptCodes holds the code lists and keywords that identify one clinical
// concept.  All fields are optional; a matcher uses whichever are present.
// PortalHypertension nests the second half of the composite cirrhosis rule.
type ConceptCodes struct {
	SpecificCodes      []string      `json:"specific_codes,omitempty"`
	ParentCode         string        `json:"parent_code,omitempty"`
	ExcludeCodes       []string      `json:"exclude_codes,omitempty"`
	ICD10CMCodes       []string      `json:"icd10cm_codes,omitempty"`
	NHICodes           []string      `json:"nhi_codes,omitempty"`
	Keywords           []string      `json:"keywords,omitempty"`
	ExclusionKeywords  []string      `json:"exclusion_keywords,omitempty"`
	PortalHypertension *ConceptCodes `json:"portal_hypertension,omitempty"`
	Threshold          *float64      `json:"threshold,omitempty"`
}

// MedicationCriteria identifies a medication class by RxNorm codes, NHI drug
// codes, and name keywords.
type MedicationCriteria struct {
	RxNormCodes []string `json:"rxnorm_codes,omitempty"`
	NHICodes    []string `json:"nhi_codes,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// TradeoffConfig carries the thresholds, baseline event rates, and condition
// code tables used by tradeoff factor detection.  Hemoglobin and eGFR each
// have a severe band below the severe threshold and a moderate band from the
// severe threshold up to (excluding) the moderate threshold.
type TradeoffConfig struct {
	ModelPath               string                  `json:"model_path"`
	DefaultBleedingRate     float64                 `json:"default_baseline_bleeding_rate"`
	DefaultThromboticRate   float64                 `json:"default_baseline_thrombotic_rate"`
	AgeThreshold            int                     `json:"age_threshold"`
	HemoglobinSevereBelow   float64                 `json:"hemoglobin_severe_below"`
	HemoglobinModerateBelow float64                 `json:"hemoglobin_moderate_below"`
	EGFRSevereBelow         float64                 `json:"egfr_severe_below"`
	EGFRModerateBelow       float64                 `json:"egfr_moderate_below"`
	SmokerCodes             []string                `json:"smoker_codes"`
	ConditionCodes          map[string]ConceptCodes `json:"condition_codes"`
}

// Reference is the full reference configuration.  It is loaded once at
// startup; a load failure is fatal because every calculation depends on it.
type Reference struct {
	LabExtraction           map[string][]string           `json:"laboratory_value_extraction"`
	SNOMEDCodes             map[string]ConceptCodes       `json:"precise_hbr_snomed_codes"`
	MedicationKeywords      map[string]MedicationCriteria `json:"medication_keywords"`
	BleedingHistoryKeywords []string                      `json:"bleeding_history_keywords"`
	Tradeoff                TradeoffConfig                `json:"tradeoff_analysis"`
}

// LoadReference reads and parses the reference configuration JSON at path.
func LoadReference(path string) (*Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference config: %w", err)
	}
	ref := &Reference{}
	if err := json.Unmarshal(data, ref); err != nil {
		return nil, fmt.Errorf("parsing reference config %s: %w", path, err)
	}
	if len(ref.LabExtraction) == 0 {
		return nil, fmt.Errorf("reference config %s has no laboratory_value_extraction section", path)
	}
	return ref, nil
}

// Concept returns the ConceptCodes registered under name, or an empty value
// when the section is absent so matchers degrade to no-match instead of
// panicking.
func (r *Reference) Concept(name string) ConceptCodes {
	return r.SNOMEDCodes[name]
}

// Medication returns the MedicationCriteria registered under name.
func (r *Reference) Medication(name string) MedicationCriteria {
	return r.MedicationKeywords[name]
}
