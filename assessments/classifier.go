package assessments

import "math"

// Category thresholds on the rounded total score.
const (
	notHBRMax  = 22
	hbrMax     = 26
	veryHBRMax = 30
	upperMax   = 35
)

// RiskCategoryInfo is the display information for a scored patient.
type RiskCategoryInfo struct {
	Category            string  `json:"category"`
	Color               string  `json:"color"`
	ScoreRange          string  `json:"scoreRange"`
	BleedingRiskPercent float64 `json:"bleedingRiskPercent"`
	Recommendation      string  `json:"recommendation"`
}

// BleedingRiskPercent maps a total score to the estimated 1-year BARC 3 or 5
// bleeding risk in percent, by piecewise linear interpolation between the
// calibration anchors.  Each band is capped at its upper anchor.
func BleedingRiskPercent(score int) float64 {
	s := float64(score)
	switch {
	case score <= notHBRMax:
		return math.Min(0.5+s/22*3.0, 3.5)
	case score <= hbrMax:
		return math.Min(3.5+(s-22)/4*2.0, 5.5)
	case score <= veryHBRMax:
		return math.Min(5.5+(s-26)/4*2.5, 8.0)
	case score <= upperMax:
		return math.Min(8.0+(s-30)/5*4.0, 12.0)
	default:
		return math.Min(12.0+(s-35)/10*3.0, 15.0)
	}
}

// Categorize maps a total score to its risk category and display info.
func Categorize(score int) RiskCategoryInfo {
	info := RiskCategoryInfo{BleedingRiskPercent: BleedingRiskPercent(score)}
	switch {
	case score <= notHBRMax:
		info.Category = "Not high bleeding risk"
		info.Color = "success"
		info.ScoreRange = "0-22"
		info.Recommendation = "Standard antithrombotic strategy; bleeding risk does not meet the high bleeding risk threshold."
	case score <= hbrMax:
		info.Category = "HBR"
		info.Color = "warning"
		info.ScoreRange = "23-26"
		info.Recommendation = "Meets the high bleeding risk threshold; consider bleeding-avoidance strategies and shortened DAPT."
	default:
		info.Category = "Very HBR"
		info.Color = "danger"
		info.ScoreRange = ">=27"
		info.Recommendation = "Very high bleeding risk; favor minimal effective antithrombotic therapy and aggressive bleeding avoidance."
	}
	return info
}
