package plugin

import (
	"testing"

	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type BreakdownSuite struct{}

var _ = Suite(&BreakdownSuite{})

func (s *BreakdownSuite) TestNewBreakdown(c *C) {
	breakdown := NewBreakdown("Patient/123")
	c.Assert(breakdown.Id.Valid(), Equals, true)
	c.Assert(breakdown.Patient, Equals, "Patient/123")
	c.Assert(breakdown.Created.IsZero(), Equals, false)
	c.Assert(breakdown.Components, HasLen, 0)
}

func (s *BreakdownSuite) TestSumSkipsDisplayOnlyRows(c *C) {
	breakdown := NewBreakdown("Patient/123")
	breakdown.Components = []Component{
		{Parameter: "Base", Score: 2.0, IsPresent: true},
		{Parameter: "Age", Score: 11.25, IsPresent: true},
		{Parameter: "Criteria", Score: 3.0, IsPresent: true},
		{Parameter: "Element A", IsPresent: true, IsARCHBRElement: true},
		{Parameter: "Element B", IsARCHBRElement: true},
	}
	c.Assert(breakdown.SumScores(), Equals, 16.25)
}

func (s *BreakdownSuite) TestFinalizeRoundsHalfToEven(c *C) {
	breakdown := NewBreakdown("Patient/123")
	breakdown.Components = []Component{
		{Parameter: "Base", Score: 2.0, IsPresent: true},
		{Parameter: "Age", Score: 0.5, IsPresent: true},
	}
	breakdown.Finalize()
	c.Assert(breakdown.TotalScore, Equals, 2)

	breakdown.Components = append(breakdown.Components, Component{Parameter: "Extra", Score: 1.0, IsPresent: true})
	breakdown.Finalize()
	c.Assert(breakdown.TotalScore, Equals, 4)
}

func (s *BreakdownSuite) TestComponentLookup(c *C) {
	breakdown := NewBreakdown("Patient/123")
	breakdown.Components = []Component{
		{Parameter: "Base", Score: 2.0},
		{Parameter: "Age", Score: 5.0},
	}
	c.Assert(breakdown.Component("Age"), NotNil)
	c.Assert(breakdown.Component("Age").Score, Equals, 5.0)
	c.Assert(breakdown.Component("Nope"), IsNil)
}

func (s *BreakdownSuite) TestClone(c *C) {
	breakdown := NewBreakdown("Patient/123")
	breakdown.Components = []Component{{Parameter: "Base", Score: 2.0}}

	same := breakdown.Clone(false)
	c.Assert(same.Id, Equals, breakdown.Id)

	fresh := breakdown.Clone(true)
	c.Assert(fresh.Id, Not(Equals), breakdown.Id)
	fresh.Components[0].Score = 99.0
	c.Assert(breakdown.Components[0].Score, Equals, 2.0)
}
