package tradeoff

import (
	chk "gopkg.in/check.v1"
)

type LoadSuite struct{}

var _ = chk.Suite(&LoadSuite{})

func (s *LoadSuite) TestLoadShippedModel(c *chk.C) {
	model, err := LoadModel("../config/arc_hbr_model.json")
	c.Assert(err, chk.IsNil)
	c.Assert(len(model.BleedingEvents.Predictors) > 0, chk.Equals, true)
	c.Assert(len(model.ThromboticEvents.Predictors) > 0, chk.Equals, true)

	for _, group := range []PredictorGroup{model.BleedingEvents, model.ThromboticEvents} {
		for _, predictor := range group.Predictors {
			c.Assert(predictor.Factor, chk.Not(chk.Equals), "")
			c.Assert(predictor.HazardRatio > 0, chk.Equals, true, chk.Commentf("factor %s", predictor.Factor))
		}
	}
}

func (s *LoadSuite) TestLoadMissingModel(c *chk.C) {
	_, err := LoadModel("no_such_model.json")
	c.Assert(err, chk.NotNil)
}
