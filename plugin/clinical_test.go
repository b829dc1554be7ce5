package plugin

import (
	"time"

	"github.com/intervention-engine/fhir/models"
	. "gopkg.in/check.v1"
)

type ClinicalSuite struct {
	labCodes map[string][]string
}

var _ = Suite(&ClinicalSuite{})

func (s *ClinicalSuite) SetUpSuite(c *C) {
	s.labCodes = map[string][]string{
		"HEMOGLOBIN": {"718-7"},
		"CREATININE": {"2160-0"},
		"EGFR":       {"33914-3", "48642-3", "48643-1", "62238-1"},
		"WBC":        {"6690-2"},
		"PLATELETS":  {"777-3"},
	}
}

func bundleWith(resources ...interface{}) *models.Bundle {
	bundle := &models.Bundle{}
	for _, resource := range resources {
		bundle.Entry = append(bundle.Entry, models.BundleEntryComponent{Resource: resource})
	}
	return bundle
}

func (s *ClinicalSuite) TestBundleClassification(c *C) {
	now := time.Now()
	hb := NewLabObservation("718-7", 12.0, "g/dL", now)
	wbc := NewLabObservation("6690-2", 8.0, "10*9/L", now)
	cond := NewSNOMEDCondition("73211009", "Diabetes mellitus")
	med := NewRxNormMedication("11289", "Warfarin 5mg")
	proc := NewSNOMEDProcedure("397682003", "Complex PCI")
	smoking := NewSmokingStatusObservation("449868002")
	patient := NewTestPatient("p1", "male", time.Date(1960, 5, 1, 0, 0, 0, 0, time.UTC))

	data := BundleToClinicalData(bundleWith(patient, &hb, &wbc, &cond, &med, &proc, &smoking), s.labCodes)

	c.Assert(data.Patient, NotNil)
	c.Assert(data.Hemoglobin, HasLen, 1)
	c.Assert(data.WBC, HasLen, 1)
	c.Assert(data.Creatinine, HasLen, 0)
	c.Assert(data.Conditions, HasLen, 1)
	c.Assert(data.MedRequests, HasLen, 1)
	c.Assert(data.Procedures, HasLen, 1)
	c.Assert(data.SmokingStatus, HasLen, 1)
	c.Assert(data.PatientRef(), Equals, "Patient/p1")
}

func (s *ClinicalSuite) TestMostRecentObservationWins(c *C) {
	older := NewLabObservation("718-7", 10.0, "g/dL", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := NewLabObservation("718-7", 13.5, "g/dL", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	data := BundleToClinicalData(bundleWith(&older, &newer), s.labCodes)

	c.Assert(data.Hemoglobin, HasLen, 1)
	c.Assert(*data.Hemoglobin[0].ValueQuantity.Value, Equals, 13.5)
}

func (s *ClinicalSuite) TestUnclassifiableObservationSkipped(c *C) {
	unknown := NewLabObservation("1234-5", 1.0, "mg/dL", time.Now())
	data := BundleToClinicalData(bundleWith(&unknown), s.labCodes)
	c.Assert(data.Hemoglobin, HasLen, 0)
	c.Assert(data.Creatinine, HasLen, 0)
}

func (s *ClinicalSuite) TestNilBundle(c *C) {
	data := BundleToClinicalData(nil, s.labCodes)
	c.Assert(data, NotNil)
	c.Assert(data.Patient, IsNil)
	c.Assert(data.PatientRef(), Equals, "")
}

func (s *ClinicalSuite) TestDemographicsFromPatient(c *C) {
	birth := time.Now().AddDate(-70, 0, -1)
	patient := NewTestPatient("p1", "female", birth)
	patient.Name = []models.HumanName{{Given: []string{"Mei"}, Family: []string{"Lin"}}}

	demo := DemographicsFromPatient(patient)
	c.Assert(demo.Gender, Equals, "female")
	c.Assert(demo.Age, NotNil)
	c.Assert(*demo.Age, Equals, 70)
	c.Assert(demo.Name, Equals, "Mei Lin")
}

func (s *ClinicalSuite) TestDemographicsBeforeBirthday(c *C) {
	birth := time.Now().AddDate(-70, 0, 1)
	demo := DemographicsFromPatient(NewTestPatient("p1", "male", birth))
	c.Assert(*demo.Age, Equals, 69)
}

func (s *ClinicalSuite) TestDemographicsWithoutBirthDate(c *C) {
	patient := &models.Patient{Gender: "male"}
	demo := DemographicsFromPatient(patient)
	c.Assert(demo.Age, IsNil)
}
