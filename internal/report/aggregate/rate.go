package aggregate

import "math"

// ComplianceRate returns the compliant share as a percentage rounded to one
// decimal. Zero on zero population; devices in other states do not count
// toward either side.
func ComplianceRate(compliant, noncompliant int) float64 {
	total := compliant + noncompliant
	if total == 0 {
		return 0
	}
	return math.Round(100*float64(compliant)/float64(total)*10) / 10
}
