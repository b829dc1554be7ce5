package plugin

import (
	"time"

	"github.com/intervention-engine/fhir/models"
)

// Builders for the FHIR resources that tests feed through the calculation
// pipeline.  They live outside the _test files so every package's tests can
// use them.

// NewLabObservation builds a final observation with a LOINC code and a
// quantity value.
func NewLabObservation(loincCode string, value float64, unit string, effective time.Time) models.Observation {
	return models.Observation{
		Code: &models.CodeableConcept{
			Coding: []models.Coding{{System: "http://loinc.org", Code: loincCode}},
		},
		ValueQuantity:     &models.Quantity{Value: &value, Unit: unit},
		EffectiveDateTime: &models.FHIRDateTime{Time: effective, Precision: models.Timestamp},
		Status:            "final",
	}
}

// NewSmokingStatusObservation builds a smoking status observation whose coded
// answer carries the given code.
func NewSmokingStatusObservation(answerCode string) models.Observation {
	return models.Observation{
		Code: &models.CodeableConcept{
			Coding: []models.Coding{{System: "http://loinc.org", Code: SmokingStatusLOINC}},
		},
		ValueCodeableConcept: &models.CodeableConcept{
			Coding: []models.Coding{{System: "http://snomed.info/sct", Code: answerCode}},
		},
		Status: "final",
	}
}

// NewSNOMEDCondition builds a condition coded in SNOMED CT.
func NewSNOMEDCondition(code, display string) models.Condition {
	return models.Condition{
		Code: &models.CodeableConcept{
			Coding: []models.Coding{{System: "http://snomed.info/sct", Code: code, Display: display}},
		},
		VerificationStatus: "confirmed",
	}
}

// NewICD10Condition builds a condition coded in ICD-10-CM.
func NewICD10Condition(code, display string) models.Condition {
	return models.Condition{
		Code: &models.CodeableConcept{
			Coding: []models.Coding{{System: "http://hl7.org/fhir/sid/icd-10-cm", Code: code, Display: display}},
		},
		VerificationStatus: "confirmed",
	}
}

// NewTextCondition builds a condition carrying only narrative text.
func NewTextCondition(text string) models.Condition {
	return models.Condition{
		Code:               &models.CodeableConcept{Text: text},
		VerificationStatus: "confirmed",
	}
}

// NewRxNormMedication builds a medication statement coded in RxNorm.
func NewRxNormMedication(code, text string) models.MedicationStatement {
	return models.MedicationStatement{
		MedicationCodeableConcept: &models.CodeableConcept{
			Text:   text,
			Coding: []models.Coding{{System: "http://www.nlm.nih.gov/research/umls/rxnorm", Code: code}},
		},
	}
}

// NewNHIMedication builds a medication statement coded with a Taiwan NHI drug
// code.
func NewNHIMedication(code string) models.MedicationStatement {
	return models.MedicationStatement{
		MedicationCodeableConcept: &models.CodeableConcept{
			Coding: []models.Coding{{
				System: "https://twcore.mohw.gov.tw/ig/twcore/CodeSystem/medication-nhi-tw",
				Code:   code,
			}},
		},
	}
}

// NewSNOMEDProcedure builds a procedure coded in SNOMED CT.
func NewSNOMEDProcedure(code, display string) models.Procedure {
	return models.Procedure{
		Code: &models.CodeableConcept{
			Coding: []models.Coding{{System: "http://snomed.info/sct", Code: code, Display: display}},
		},
	}
}

// NewTestPatient builds a patient with the given id, gender, and birth date.
func NewTestPatient(id, gender string, birthDate time.Time) *models.Patient {
	patient := &models.Patient{
		Gender:    gender,
		BirthDate: &models.FHIRDateTime{Time: birthDate, Precision: models.Date},
	}
	patient.Id = id
	return patient
}
