package constraint

import "strings"

// Severity ranks how serious a violation is. Values are the lowercase
// identifiers used in exports and catalogs.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeveritySevere   Severity = "severe"
	SeverityWarning  Severity = "warning"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeveritySevere, SeverityWarning:
		return true
	}
	return false
}

// Label is the uppercase form shown in reports, e.g. CRITICAL.
func (s Severity) Label() string {
	return strings.ToUpper(string(s))
}

// Rank orders severities so that more serious ones sort first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeveritySevere:
		return 1
	case SeverityWarning:
		return 2
	default:
		return 3
	}
}

// ParseSeverity accepts either case.
func ParseSeverity(v string) (Severity, bool) {
	s := Severity(strings.ToLower(strings.TrimSpace(v)))
	return s, s.IsValid()
}
