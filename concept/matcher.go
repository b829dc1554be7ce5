// Package concept decides whether a patient's conditions, procedures, and
// medications match the clinical concepts the score depends on.  Matching is
// code-first (SNOMED CT, ICD-10-CM, RxNorm, NHI drug codes) with keyword
// fallback on the narrative text and coding displays.
package concept

import (
	"strings"

	"github.com/intervention-engine/fhir/models"
	"github.com/rs/zerolog"

	"github.com/Justine11289/Precise-HBR/config"
)

const (
	snomedSystem = "http://snomed.info/sct"
	rxNormSystem = "http://www.nlm.nih.gov/research/umls/rxnorm"
)

// Matcher evaluates concept criteria from the loaded reference tables.
type Matcher struct {
	ref *config.Reference
	log zerolog.Logger
}

// NewMatcher returns a Matcher over the given reference tables.
func NewMatcher(ref *config.Reference, log zerolog.Logger) *Matcher {
	return &Matcher{ref: ref, log: log}
}

// BleedingDiathesis reports whether any condition indicates a bleeding
// diathesis or inherited coagulopathy.
func (m *Matcher) BleedingDiathesis(conditions []models.Condition) bool {
	criteria := m.ref.Concept("bleeding_diathesis")
	for i := range conditions {
		if m.conditionMatches(&conditions[i], criteria) {
			return true
		}
	}
	return false
}

// PriorBleeding reports whether the record documents a prior spontaneous
// bleeding event.  Both the dedicated concept entry and the bleeding-history
// keyword list count.
func (m *Matcher) PriorBleeding(conditions []models.Condition) bool {
	criteria := m.ref.Concept("prior_bleeding")
	for i := range conditions {
		if m.conditionMatches(&conditions[i], criteria) {
			return true
		}
		if matchKeywords(conditionText(&conditions[i]), m.ref.BleedingHistoryKeywords) {
			return true
		}
	}
	return false
}

// LiverCirrhosisWithPortalHypertension reports whether the record documents
// BOTH liver cirrhosis and portal hypertension.  Either alone does not count.
func (m *Matcher) LiverCirrhosisWithPortalHypertension(conditions []models.Condition) bool {
	criteria := m.ref.Concept("liver_cirrhosis")
	if criteria.PortalHypertension == nil {
		return false
	}
	var cirrhosis, portalHTN bool
	for i := range conditions {
		if m.conditionMatches(&conditions[i], criteria) {
			cirrhosis = true
		}
		if m.conditionMatches(&conditions[i], *criteria.PortalHypertension) {
			portalHTN = true
		}
	}
	return cirrhosis && portalHTN
}

// ActiveCancer reports whether the record documents an active malignancy.
// Non-melanoma skin cancers are excluded, and only conditions whose clinical
// status is active, recurrence, or relapse count.  An absent status is
// treated as active.  Exclusion codes veto individual codings, not the whole
// condition, so a record coded with both a skin cancer and another malignancy
// still matches.
func (m *Matcher) ActiveCancer(conditions []models.Condition) bool {
	criteria := m.ref.Concept("active_cancer")
	for i := range conditions {
		cond := &conditions[i]
		if !activeStatus(cond.ClinicalStatus) {
			continue
		}
		if m.cancerCodingMatch(cond.Code, criteria) {
			return true
		}
		if !matchKeywords(conditionText(cond), criteria.ExclusionKeywords) &&
			matchKeywords(conditionText(cond), criteria.Keywords) {
			return true
		}
	}
	return false
}

func (m *Matcher) cancerCodingMatch(code *models.CodeableConcept, criteria config.ConceptCodes) bool {
	if code == nil {
		return false
	}
	for _, coding := range code.Coding {
		if contains(criteria.ExcludeCodes, coding.Code) {
			continue
		}
		if coding.System == snomedSystem {
			if contains(criteria.SpecificCodes, coding.Code) ||
				(criteria.ParentCode != "" && coding.Code == criteria.ParentCode) {
				return true
			}
		}
		// Malignancy ICD-10 blocks are matched as plain prefixes so a single
		// "C" entry covers the whole neoplasm chapter.
		if isICD10System(coding.System) && hasAnyPrefix(coding.Code, criteria.ICD10CMCodes) {
			return true
		}
	}
	return false
}

// Thrombocytopenia reports whether the platelet count is below the configured
// threshold or the record documents thrombocytopenia by code or keyword.
// A nil platelet value contributes nothing; only a measured low count or a
// documented condition triggers the match.
func (m *Matcher) Thrombocytopenia(platelets *float64, conditions []models.Condition) bool {
	criteria := m.ref.Concept("thrombocytopenia")
	if platelets != nil && criteria.Threshold != nil && *platelets < *criteria.Threshold {
		return true
	}
	for i := range conditions {
		if m.conditionMatches(&conditions[i], criteria) {
			return true
		}
	}
	return false
}

// OralAnticoagulation reports whether any medication is an oral anticoagulant.
func (m *Matcher) OralAnticoagulation(meds []models.MedicationStatement) bool {
	return m.anyMedicationMatches(meds, m.ref.Medication("oral_anticoagulants"))
}

// NSAIDsOrCorticosteroids reports whether any medication is a chronic NSAID
// or corticosteroid.
func (m *Matcher) NSAIDsOrCorticosteroids(meds []models.MedicationStatement) bool {
	return m.anyMedicationMatches(meds, m.ref.Medication("nsaids")) ||
		m.anyMedicationMatches(meds, m.ref.Medication("corticosteroids"))
}

func (m *Matcher) conditionMatches(cond *models.Condition, criteria config.ConceptCodes) bool {
	return m.CodeMatches(cond.Code, criteria)
}

// CodeMatches reports whether a codeable concept matches the criteria by
// SNOMED code, ICD-10-CM code, or keyword.  It carries no status or exclusion
// logic; callers needing those apply them separately.
func (m *Matcher) CodeMatches(code *models.CodeableConcept, criteria config.ConceptCodes) bool {
	if matchSNOMED(code, criteria.SpecificCodes) {
		return true
	}
	if criteria.ParentCode != "" && matchSNOMED(code, []string{criteria.ParentCode}) {
		return true
	}
	if matchICD10(code, criteria.ICD10CMCodes) {
		return true
	}
	if matchKeywords(codeableText(code), criteria.Keywords) {
		return true
	}
	return false
}

func (m *Matcher) anyMedicationMatches(meds []models.MedicationStatement, criteria config.MedicationCriteria) bool {
	for i := range meds {
		if m.medicationMatches(meds[i].MedicationCodeableConcept, criteria) {
			return true
		}
	}
	return false
}

func (m *Matcher) medicationMatches(code *models.CodeableConcept, criteria config.MedicationCriteria) bool {
	if code == nil {
		return false
	}
	for _, coding := range code.Coding {
		if coding.System == rxNormSystem && contains(criteria.RxNormCodes, coding.Code) {
			return true
		}
		if isNHIMedicationCoding(coding) && hasAnyPrefix(coding.Code, criteria.NHICodes) {
			return true
		}
	}
	return matchKeywords(codeableText(code), criteria.Keywords)
}

// activeStatus reports whether the clinical status counts as active for
// malignancy matching.  An empty status defaults to active.
func activeStatus(status string) bool {
	switch strings.ToLower(status) {
	case "", "active", "recurrence", "relapse":
		return true
	}
	return false
}

// isNHIMedicationCoding recognizes Taiwan NHI drug codes either by system URL
// or, for codings with no recognized system, by the 12-character alphanumeric
// shape NHI codes have.
func isNHIMedicationCoding(coding models.Coding) bool {
	system := strings.ToLower(coding.System)
	if strings.Contains(system, "medication-nhi-tw") || strings.Contains(system, "nhi.gov.tw") {
		return true
	}
	return system == "" && isAlphanumeric(coding.Code) && len(coding.Code) == 12
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9') {
			return false
		}
	}
	return true
}

func matchSNOMED(code *models.CodeableConcept, codes []string) bool {
	if code == nil || len(codes) == 0 {
		return false
	}
	for _, coding := range code.Coding {
		if coding.System == snomedSystem && contains(codes, coding.Code) {
			return true
		}
	}
	return false
}

// matchICD10 matches ICD-10-CM codes at category boundaries: a prefix matches
// the exact code or any subcode under "prefix.".  "I21" matches "I21" and
// "I21.0" but not "I210".
func matchICD10(code *models.CodeableConcept, prefixes []string) bool {
	if code == nil || len(prefixes) == 0 {
		return false
	}
	for _, coding := range code.Coding {
		if !isICD10System(coding.System) {
			continue
		}
		for _, prefix := range prefixes {
			if coding.Code == prefix || strings.HasPrefix(coding.Code, prefix+".") {
				return true
			}
		}
	}
	return false
}

func isICD10System(system string) bool {
	return strings.Contains(strings.ToLower(system), "icd-10")
}

func matchKeywords(text string, keywords []string) bool {
	if text == "" || len(keywords) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

func conditionText(cond *models.Condition) string {
	return codeableText(cond.Code)
}

func codeableText(code *models.CodeableConcept) string {
	if code == nil {
		return ""
	}
	parts := []string{code.Text}
	for _, coding := range code.Coding {
		parts = append(parts, coding.Display)
	}
	return strings.Join(parts, " ")
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}
