package config

import (
	"os"
	"testing"

	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type ReferenceSuite struct{}

var _ = Suite(&ReferenceSuite{})

func (s *ReferenceSuite) TestLoadShippedReference(c *C) {
	ref, err := LoadReference("cdss_config.json")
	c.Assert(err, IsNil)

	c.Assert(ref.LabExtraction["HEMOGLOBIN"], DeepEquals, []string{"718-7"})
	c.Assert(ref.LabExtraction["EGFR"], HasLen, 4)

	diathesis := ref.Concept("bleeding_diathesis")
	c.Assert(diathesis.SpecificCodes, DeepEquals, []string{"64779008"})

	cirrhosis := ref.Concept("liver_cirrhosis")
	c.Assert(cirrhosis.ParentCode, Equals, "19943007")
	c.Assert(cirrhosis.PortalHypertension, NotNil)

	cancer := ref.Concept("active_cancer")
	c.Assert(cancer.ExcludeCodes, HasLen, 2)

	thrombo := ref.Concept("thrombocytopenia")
	c.Assert(thrombo.Threshold, NotNil)
	c.Assert(*thrombo.Threshold, Equals, 100.0)

	oac := ref.Medication("oral_anticoagulants")
	c.Assert(oac.RxNormCodes, HasLen, 5)
	c.Assert(oac.NHICodes, DeepEquals, []string{"B023"})

	c.Assert(ref.Tradeoff.AgeThreshold, Equals, 65)
	c.Assert(ref.Tradeoff.DefaultBleedingRate, Equals, 2.5)
	c.Assert(ref.Tradeoff.ConditionCodes["diabetes"].SpecificCodes, DeepEquals, []string{"73211009"})
	c.Assert(ref.Tradeoff.SmokerCodes, DeepEquals, []string{"449868002", "LA18978-9"})
}

func (s *ReferenceSuite) TestLoadMissingFile(c *C) {
	_, err := LoadReference("no_such_file.json")
	c.Assert(err, NotNil)
}

func (s *ReferenceSuite) TestUnknownConceptIsEmpty(c *C) {
	ref := &Reference{}
	criteria := ref.Concept("nonexistent")
	c.Assert(criteria.SpecificCodes, HasLen, 0)
	c.Assert(criteria.ParentCode, Equals, "")
}

type SettingsSuite struct{}

var _ = Suite(&SettingsSuite{})

func (s *SettingsSuite) TestDefaults(c *C) {
	settings, err := LoadSettings()
	c.Assert(err, IsNil)
	c.Assert(settings.ServerAddr, Equals, ":9000")
	c.Assert(settings.DatabaseName, Equals, "riskservice")
	c.Assert(settings.ReferencePath, Equals, "config/cdss_config.json")
	c.Assert(settings.ModelPath, Equals, "config/arc_hbr_model.json")
	c.Assert(settings.LogLevel, Equals, "info")
}

func (s *SettingsSuite) TestEnvironmentOverride(c *C) {
	os.Setenv("SERVER_ADDR", ":8123")
	defer os.Unsetenv("SERVER_ADDR")

	settings, err := LoadSettings()
	c.Assert(err, IsNil)
	c.Assert(settings.ServerAddr, Equals, ":8123")
}
