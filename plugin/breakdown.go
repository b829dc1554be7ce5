package plugin

import (
	"math"
	"time"

	"gopkg.in/mgo.v2/bson"
)

// Component represents one term of the score breakdown.  Score carries the
// unrounded contribution of the term; display-only rows (the individual
// ARC-HBR elements) carry a zero score and IsARCHBRElement set.
type Component struct {
	Parameter       string   `bson:"parameter" json:"parameter"`
	Value           string   `bson:"value" json:"value"`
	Score           float64  `bson:"score" json:"score"`
	RawValue        *float64 `bson:"rawValue,omitempty" json:"rawValue,omitempty"`
	Date            string   `bson:"date,omitempty" json:"date,omitempty"`
	Description     string   `bson:"description,omitempty" json:"description,omitempty"`
	IsPresent       bool     `bson:"isPresent" json:"isPresent"`
	IsARCHBRElement bool     `bson:"isArcHbrElement" json:"isArcHbrElement"`
	IsOutdated      bool     `bson:"isOutdated" json:"isOutdated"`
}

// Breakdown is the stored per-component detail behind a RiskAssessment.  Since
// the component list can't be represented in FHIR, the RiskAssessment basis
// will point back to one of these.
type Breakdown struct {
	Id         bson.ObjectId `bson:"_id" json:"id"`
	Patient    string        `bson:"patient" json:"patient"`
	Created    time.Time     `bson:"created" json:"created"`
	Components []Component   `bson:"components" json:"components"`
	TotalScore int           `bson:"totalScore" json:"totalScore"`
}

// NewBreakdown constructs a new breakdown for the given patient, sets the
// Created time to now, and generates a new ID.  Components are initially empty.
func NewBreakdown(patientURL string) *Breakdown {
	b := &Breakdown{}
	b.Patient = patientURL
	b.Created = time.Now()
	b.Id = bson.NewObjectId()
	return b
}

// Clone creates a copy of the breakdown.  If generateNewID is true, it will
// give the clone a new identity.  Components of the clone can be modified
// without affecting the original.
func (b *Breakdown) Clone(generateNewID bool) *Breakdown {
	cloned := *b
	if generateNewID {
		cloned.Id = bson.NewObjectId()
	}
	cloned.Components = make([]Component, len(b.Components))
	copy(cloned.Components, b.Components)
	return &cloned
}

// Component finds the component with the given parameter name, or nil.
func (b *Breakdown) Component(parameter string) *Component {
	for i := range b.Components {
		if b.Components[i].Parameter == parameter {
			return &b.Components[i]
		}
	}
	return nil
}

// SumScores sums the contributions of all scoring components, skipping the
// display-only ARC-HBR element rows.  Rounding SumScores half-to-even yields
// TotalScore.
func (b *Breakdown) SumScores() float64 {
	total := 0.0
	for i := range b.Components {
		if b.Components[i].IsARCHBRElement {
			continue
		}
		total += b.Components[i].Score
	}
	return total
}

// Finalize recomputes TotalScore from the current components.
func (b *Breakdown) Finalize() {
	b.TotalScore = int(math.RoundToEven(b.SumScores()))
}
