package statement

// Severity classifies a validation issue.
type Severity string

const (
	SeverityOK      Severity = "OK"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Issue is one validation finding. Issues sharing a severity and code are
// aggregated; FITIDs lists the affected transactions when known.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Reason   string   `json:"reason"`
	FITIDs   []string `json:"fitids,omitempty"`
	Count    int      `json:"count"`
}

// CountWarnings returns the number of WARNING issues that feed the quality
// score. Distinct categories count, not affected transactions.
func CountWarnings(issues []Issue) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity == SeverityWarning {
			n++
		}
	}
	return n
}
