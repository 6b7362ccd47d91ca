package classifier

import (
	"fmt"
	"strings"

	"github.com/aretw0/triage/pkg/domain"
)

// Finding is one lint result for a rule table.
type Finding struct {
	RuleID  string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("rule %q: %s", f.RuleID, f.Message)
}

// Lint reports rules that can never fire or are malformed.
//
// A rule is shadowed when each of its keywords contains a keyword of an
// earlier rule: any text matching it already matched the earlier one.
func Lint(rules []domain.ClassifierRule) []Finding {
	var findings []Finding
	seen := make(map[string]bool)

	for i, r := range rules {
		id := r.ID
		if id == "" {
			id = fmt.Sprintf("#%d", i+1)
			findings = append(findings, Finding{RuleID: id, Message: "missing id"})
		} else if seen[id] {
			findings = append(findings, Finding{RuleID: id, Message: "duplicate id"})
		}
		seen[id] = true

		if r.Specialization != "" && !r.Specialization.Valid() {
			findings = append(findings, Finding{RuleID: id, Message: fmt.Sprintf("unknown specialization %q", r.Specialization)})
		}
		if r.Message == "" {
			findings = append(findings, Finding{RuleID: id, Message: "empty message"})
		}

		live := 0
		for _, kw := range r.Keywords {
			k := Normalize(kw)
			if strings.TrimSpace(k) == "" {
				findings = append(findings, Finding{RuleID: id, Message: "empty keyword"})
				continue
			}
			if k != kw {
				findings = append(findings, Finding{RuleID: id, Message: fmt.Sprintf("keyword %q is not normalized (want %q)", kw, k)})
			}
			live++
		}
		if live == 0 {
			findings = append(findings, Finding{RuleID: id, Message: "no keywords"})
			continue
		}

		if by, ok := shadowedBy(r, rules[:i]); ok {
			findings = append(findings, Finding{RuleID: id, Message: fmt.Sprintf("unreachable: every keyword is shadowed by rule %q", by)})
		}
	}
	return findings
}

func shadowedBy(r domain.ClassifierRule, earlier []domain.ClassifierRule) (string, bool) {
	var by string
	for _, kw := range r.Keywords {
		k := Normalize(kw)
		if strings.TrimSpace(k) == "" {
			continue
		}
		hit := ""
	search:
		for _, e := range earlier {
			for _, ekw := range e.Keywords {
				ek := Normalize(ekw)
				if strings.TrimSpace(ek) != "" && strings.Contains(k, ek) {
					hit = e.ID
					break search
				}
			}
		}
		if hit == "" {
			return "", false
		}
		if by == "" {
			by = hit
		}
	}
	return by, by != ""
}
