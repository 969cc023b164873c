package compose

import (
	"fmt"
	"strings"
)

// Severity grades a validation finding.
type Severity int

const (
	// SeverityWarning findings are reported but do not stop composition.
	SeverityWarning Severity = iota
	// SeverityError findings make the request invalid.
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Finding is one validation result.
type Finding struct {
	Severity Severity
	Message  string
}

// ValidateRequest checks a request before any document is read.
func ValidateRequest(req Request) []Finding {
	var findings []Finding
	base := strings.TrimSpace(req.BaseID)
	if base == "" {
		findings = append(findings, Finding{SeverityError, "base id is empty"})
	}
	if len(req.PreferenceIDs) == 0 {
		findings = append(findings, Finding{SeverityWarning, "no preferences requested; output is the base document alone"})
	}
	selfComposed := false
	for i, id := range req.PreferenceIDs {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			findings = append(findings, Finding{SeverityError, fmt.Sprintf("preference[%d] id is empty", i)})
			continue
		}
		if base != "" && trimmed == base && !selfComposed {
			selfComposed = true
			findings = append(findings, Finding{SeverityError, fmt.Sprintf("base %s is composed with itself (self-composition)", base)})
		}
	}
	return findings
}

// ValidateResult flags composed text that is unlikely to work as an
// instruction prompt. It only returns warnings.
func ValidateResult(res Result, minLength int) []Finding {
	var findings []Finding
	size := len(strings.TrimSpace(res.Text))
	if size < minLength {
		findings = append(findings, Finding{SeverityWarning, fmt.Sprintf("composed text is only %d bytes (minimum %d)", size, minLength)})
	}
	if !hasSectionHeader(res.Text) {
		findings = append(findings, Finding{SeverityWarning, "composed text has no section headers"})
	}
	return findings
}

// Warnings returns only the warning messages.
func Warnings(findings []Finding) []string {
	var out []string
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			out = append(out, f.Message)
		}
	}
	return out
}

// RequestError converts error findings into an InvalidRequestError, or nil
// when there are none.
func RequestError(findings []Finding) error {
	var problems []string
	for _, f := range findings {
		if f.Severity == SeverityError {
			problems = append(problems, f.Message)
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &InvalidRequestError{Problems: problems}
}

func hasSectionHeader(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#") {
			return true
		}
	}
	return false
}
