package plugin

import (
	"sort"
	"strings"
	"time"

	"github.com/intervention-engine/fhir/models"
)

// SmokingStatusLOINC is the LOINC code for tobacco smoking status observations.
const SmokingStatusLOINC = "72166-2"

// ClinicalData is the materialized clinical record a risk calculation runs
// over.  Each lab key holds at most the single most recent observation for
// that analyte.  The structure must be fully populated before calculation;
// nothing here triggers I/O.
type ClinicalData struct {
	Patient       *models.Patient              `json:"patient,omitempty"`
	Hemoglobin    []models.Observation         `json:"HEMOGLOBIN"`
	Creatinine    []models.Observation         `json:"CREATININE"`
	EGFR          []models.Observation         `json:"EGFR"`
	WBC           []models.Observation         `json:"WBC"`
	Platelets     []models.Observation         `json:"PLATELETS"`
	Conditions    []models.Condition           `json:"conditions"`
	MedRequests   []models.MedicationStatement `json:"med_requests"`
	Procedures    []models.Procedure           `json:"procedures,omitempty"`
	SmokingStatus []models.Observation         `json:"smoking_status,omitempty"`
}

// Demographics carries the patient-level inputs to scoring.  A nil Age means
// age is unknown, which the extractor reports as a missing field.
type Demographics struct {
	Age       *int   `json:"age"`
	Gender    string `json:"gender"`
	Name      string `json:"name,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
}

// PatientRef returns the reference string used to associate stored breakdowns
// with the patient, or "" when no patient resource is attached.
func (d *ClinicalData) PatientRef() string {
	if d.Patient == nil || d.Patient.Id == "" {
		return ""
	}
	return "Patient/" + d.Patient.Id
}

// BundleToClinicalData classifies the resources of a FHIR bundle into
// ClinicalData.  Observations are routed to the lab lists by the configured
// LOINC code lists (keys HEMOGLOBIN, CREATININE, EGFR, WBC, PLATELETS); only
// the most recent observation per analyte is kept.  Unrecognized resource
// types and unclassifiable observations are skipped, never an error.
func BundleToClinicalData(bundle *models.Bundle, labCodes map[string][]string) *ClinicalData {
	data := &ClinicalData{}
	if bundle == nil {
		return data
	}

	byAnalyte := make(map[string][]models.Observation)
	for i := range bundle.Entry {
		switch r := bundle.Entry[i].Resource.(type) {
		case *models.Patient:
			if data.Patient == nil {
				data.Patient = r
			}
		case *models.Condition:
			data.Conditions = append(data.Conditions, *r)
		case *models.MedicationStatement:
			data.MedRequests = append(data.MedRequests, *r)
		case *models.Procedure:
			data.Procedures = append(data.Procedures, *r)
		case *models.Observation:
			if analyte, ok := classifyObservation(r, labCodes); ok {
				byAnalyte[analyte] = append(byAnalyte[analyte], *r)
			} else if observationHasCode(r, "http://loinc.org", SmokingStatusLOINC) {
				data.SmokingStatus = append(data.SmokingStatus, *r)
			}
		}
	}

	data.Hemoglobin = mostRecent(byAnalyte["HEMOGLOBIN"])
	data.Creatinine = mostRecent(byAnalyte["CREATININE"])
	data.EGFR = mostRecent(byAnalyte["EGFR"])
	data.WBC = mostRecent(byAnalyte["WBC"])
	data.Platelets = mostRecent(byAnalyte["PLATELETS"])
	sortByEffectiveDate(data.SmokingStatus)
	return data
}

// DemographicsFromPatient derives Demographics from a plain FHIR Patient.
// Age is completed years as of now; an absent birthDate leaves Age nil.
func DemographicsFromPatient(patient *models.Patient) Demographics {
	demo := Demographics{}
	if patient == nil {
		return demo
	}
	demo.Gender = patient.Gender
	if len(patient.Name) > 0 {
		demo.Name = humanNameString(patient.Name[0])
	}
	if patient.BirthDate != nil {
		birth := patient.BirthDate.Time
		demo.BirthDate = birth.Format("2006-01-02")
		age := ageInYears(birth, time.Now())
		demo.Age = &age
	}
	return demo
}

// EffectiveDateString formats an observation's effective date for display,
// returning "N/A" when none is recorded.
func EffectiveDateString(obs *models.Observation) string {
	if obs == nil || obs.EffectiveDateTime == nil {
		return "N/A"
	}
	return obs.EffectiveDateTime.Time.Format(time.RFC3339)
}

func ageInYears(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

func humanNameString(name models.HumanName) string {
	if name.Text != "" {
		return name.Text
	}
	parts := append([]string{}, name.Given...)
	parts = append(parts, name.Family...)
	return strings.TrimSpace(strings.Join(parts, " "))
}

func classifyObservation(obs *models.Observation, labCodes map[string][]string) (string, bool) {
	if obs.Code == nil {
		return "", false
	}
	for analyte, codes := range labCodes {
		for _, code := range codes {
			if observationHasCode(obs, "http://loinc.org", code) {
				return analyte, true
			}
		}
	}
	return "", false
}

func observationHasCode(obs *models.Observation, system, code string) bool {
	if obs.Code == nil {
		return false
	}
	for _, coding := range obs.Code.Coding {
		if coding.System == system && coding.Code == code {
			return true
		}
	}
	return false
}

func effectiveTime(obs *models.Observation) time.Time {
	if obs.EffectiveDateTime != nil {
		return obs.EffectiveDateTime.Time
	}
	return time.Time{}
}

func sortByEffectiveDate(observations []models.Observation) {
	sort.SliceStable(observations, func(i, j int) bool {
		return effectiveTime(&observations[i]).After(effectiveTime(&observations[j]))
	})
}

func mostRecent(observations []models.Observation) []models.Observation {
	if len(observations) == 0 {
		return nil
	}
	sortByEffectiveDate(observations)
	return observations[:1]
}
