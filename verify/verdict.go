package verify

import (
	"regexp"
	"strings"
)

// Severity values attached to non-compliant outcomes.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// listItemRe matches bullet ("- ", "* ") and numbered ("1. ", "1) ")
// list lines; the capture is the item text with the marker stripped.
var listItemRe = regexp.MustCompile(`^\s*(?:[-*]|\d+[.)])\s+(.+)$`)

// ParseReply interprets a verification reply. The first
// whitespace-delimited token, lowercased and with trailing punctuation
// stripped, decides the verdict: "yes" is compliant, "maybe" is
// non-compliant with warning severity, anything else is non-compliant
// with error severity. Each list line in the reply becomes one issue;
// a reply with no list lines yields itself as the single issue.
func ParseReply(reply string) Outcome {
	trimmed := strings.TrimSpace(reply)

	outcome := Outcome{Reason: trimmed}
	switch firstToken(trimmed) {
	case "yes":
		outcome.Compliant = true
	case "maybe":
		outcome.Severity = SeverityWarning
	default:
		outcome.Severity = SeverityError
	}

	if !outcome.Compliant {
		outcome.Issues = extractIssues(trimmed)
	}

	return outcome
}

// firstToken returns the first whitespace-delimited token of s,
// lowercased, with trailing punctuation removed so "Yes." and "yes,"
// both read as "yes".
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	token := strings.ToLower(fields[0])
	return strings.TrimRight(token, ".,:;!?")
}

// extractIssues collects the reply's list items, falling back to the
// whole reply when the model answered in prose.
func extractIssues(reply string) []string {
	var issues []string
	for _, line := range strings.Split(reply, "\n") {
		if m := listItemRe.FindStringSubmatch(line); m != nil {
			issues = append(issues, strings.TrimSpace(m[1]))
		}
	}
	if len(issues) == 0 && reply != "" {
		issues = []string{reply}
	}
	return issues
}
