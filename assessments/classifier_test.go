package assessments

import (
	. "gopkg.in/check.v1"
)

type ClassifierSuite struct{}

var _ = Suite(&ClassifierSuite{})

func (s *ClassifierSuite) TestRiskPercentAnchors(c *C) {
	c.Assert(BleedingRiskPercent(0), Equals, 0.5)
	c.Assert(BleedingRiskPercent(22), Equals, 3.5)
	c.Assert(BleedingRiskPercent(23), Equals, 4.0)
	c.Assert(BleedingRiskPercent(26), Equals, 5.5)
	c.Assert(BleedingRiskPercent(27), Equals, 6.125)
	c.Assert(BleedingRiskPercent(30), Equals, 8.0)
	c.Assert(BleedingRiskPercent(35), Equals, 12.0)
}

func (s *ClassifierSuite) TestRiskPercentInterpolates(c *C) {
	assertClose(c, BleedingRiskPercent(11), 2.0)
	assertClose(c, BleedingRiskPercent(31), 8.8)
	assertClose(c, BleedingRiskPercent(36), 12.3)
}

func (s *ClassifierSuite) TestRiskPercentIsCapped(c *C) {
	c.Assert(BleedingRiskPercent(45), Equals, 15.0)
	c.Assert(BleedingRiskPercent(100), Equals, 15.0)
}

func (s *ClassifierSuite) TestRiskPercentIsMonotonic(c *C) {
	previous := BleedingRiskPercent(0)
	for score := 1; score <= 60; score++ {
		current := BleedingRiskPercent(score)
		c.Assert(current >= previous, Equals, true, Commentf("score %d: %g < %g", score, current, previous))
		previous = current
	}
}

func (s *ClassifierSuite) TestCategoryBoundaries(c *C) {
	low := Categorize(22)
	c.Assert(low.Category, Equals, "Not high bleeding risk")
	c.Assert(low.Color, Equals, "success")

	high := Categorize(23)
	c.Assert(high.Category, Equals, "HBR")
	c.Assert(high.Color, Equals, "warning")
	c.Assert(Categorize(26).Category, Equals, "HBR")

	veryHigh := Categorize(27)
	c.Assert(veryHigh.Category, Equals, "Very HBR")
	c.Assert(veryHigh.Color, Equals, "danger")
	c.Assert(Categorize(50).Category, Equals, "Very HBR")
}

func (s *ClassifierSuite) TestCategoryCarriesRiskPercent(c *C) {
	info := Categorize(27)
	c.Assert(info.BleedingRiskPercent, Equals, 6.125)
	c.Assert(info.ScoreRange, Equals, ">=27")
	c.Assert(info.Recommendation, Not(Equals), "")
}
