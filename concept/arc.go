package concept

import "github.com/intervention-engine/fhir/models"

// ARCHBRFactors holds the binary ARC-HBR criteria the score surcharges for.
// The continuous criteria (anemia, renal function) are handled by the score's
// own clamp terms and are deliberately not repeated here.
type ARCHBRFactors struct {
	BleedingDiathesis       bool
	CirrhosisWithPortalHTN  bool
	ActiveCancer            bool
	Thrombocytopenia        bool
	NSAIDsOrCorticosteroids bool
}

// Count returns the number of factors present.
func (f ARCHBRFactors) Count() int {
	count := 0
	for _, present := range []bool{
		f.BleedingDiathesis,
		f.CirrhosisWithPortalHTN,
		f.ActiveCancer,
		f.Thrombocytopenia,
		f.NSAIDsOrCorticosteroids,
	} {
		if present {
			count++
		}
	}
	return count
}

// Any reports whether at least one factor is present.
func (f ARCHBRFactors) Any() bool {
	return f.Count() > 0
}

// ARCHBRFactors evaluates all binary ARC-HBR criteria over the conditions,
// medications, and platelet count.  Platelets may be nil when no usable
// platelet observation exists.
func (m *Matcher) ARCHBRFactors(conditions []models.Condition, meds []models.MedicationStatement, platelets *float64) ARCHBRFactors {
	return ARCHBRFactors{
		BleedingDiathesis:       m.BleedingDiathesis(conditions),
		CirrhosisWithPortalHTN:  m.LiverCirrhosisWithPortalHypertension(conditions),
		ActiveCancer:            m.ActiveCancer(conditions),
		Thrombocytopenia:        m.Thrombocytopenia(platelets, conditions),
		NSAIDsOrCorticosteroids: m.NSAIDsOrCorticosteroids(meds),
	}
}
