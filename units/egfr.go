package units

import (
	"fmt"
	"math"
	"strings"
)

// EGFRMethod names the estimation equation used by CalculateEGFR.
const EGFRMethod = "CKD-EPI 2021"

// CalculateEGFR estimates the glomerular filtration rate from a serum
// creatinine in mg/dL using the race-free CKD-EPI 2021 equation.  The result
// is rounded to the nearest integer in mL/min/1.73m2.  Gender must be "male"
// or "female" (case-insensitive); anything else is an error because the
// equation's constants are sex-specific.
func CalculateEGFR(creatinineMgDl float64, age int, gender string) (int, error) {
	if creatinineMgDl <= 0 {
		return 0, fmt.Errorf("invalid creatinine value: %g", creatinineMgDl)
	}

	var kappa, alpha, sexFactor float64
	switch strings.ToLower(gender) {
	case "female":
		kappa, alpha, sexFactor = 0.7, -0.241, 1.012
	case "male":
		kappa, alpha, sexFactor = 0.9, -0.302, 1.0
	default:
		return 0, fmt.Errorf("cannot estimate eGFR: unknown gender %q", gender)
	}

	ratio := creatinineMgDl / kappa
	egfr := 142 *
		math.Pow(math.Min(ratio, 1), alpha) *
		math.Pow(math.Max(ratio, 1), -1.2) *
		math.Pow(0.9938, float64(age)) *
		sexFactor
	return int(math.Round(egfr)), nil
}
