package domain

import (
	"fmt"
	"strings"
	"time"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "Success"
	OutcomePartial Outcome = "Partial"
	OutcomeBlocked Outcome = "Blocked"
)

// SummaryHeading marks an already-summarized document. Summarization is
// idempotent: a body containing this heading is never summarized again.
const SummaryHeading = "## Outcome Summary"

// AcceptanceCriterion is a checklist line with its checked state.
type AcceptanceCriterion struct {
	Text    string
	Checked bool
}

// Summary is the structured outcome of a completed task.
type Summary struct {
	Outcome         Outcome
	Duration        time.Duration
	ActionsTaken    []string
	Results         []string
	Followups       []string
	Learnings       []string
	CriteriaChecked int
	CriteriaTotal   int
}

var failureKeywords = []string{"blocked", "unable to", "failed"}

var (
	issueKeywords      = []string{"error", "issue", "problem", "bug"}
	resolutionKeywords = []string{"solved", "fixed", "resolved"}
)

// HasSummary reports whether a summary section is already present.
func HasSummary(body string) bool {
	return strings.Contains(body, SummaryHeading)
}

// ExtractCriteria scans the Acceptance Criteria section for checkbox lines,
// falling back to checkbox lines anywhere in the body when the section is
// absent.
func ExtractCriteria(body string) []AcceptanceCriterion {
	section := sectionText(body, "Acceptance Criteria")
	if section == "" {
		section = body
	}
	return checkboxLines(section)
}

// ExtractSummary builds the outcome summary of a completed document.
// startedAt falls back to the triage timestamp upstream; a zero startedAt
// yields a zero duration.
func ExtractSummary(body string, startedAt, completedAt time.Time) Summary {
	criteria := criteriaForSummary(body)
	checked, total := countChecked(criteria)

	s := Summary{
		Outcome:         decideOutcome(body, criteria, checked, total),
		ActionsTaken:    extractActions(body),
		CriteriaChecked: checked,
		CriteriaTotal:   total,
	}
	if !startedAt.IsZero() && completedAt.After(startedAt) {
		s.Duration = completedAt.Sub(startedAt)
	}
	s.Results = extractResults(body, criteria)
	s.Followups = extractFollowups(body, criteria, s.Outcome)
	s.Learnings = extractLearnings(body)
	return s
}

// Render emits the fixed-shape summary block appended to a completed
// document's body.
func (s Summary) Render(summarizedAt time.Time) string {
	var b strings.Builder
	b.WriteString(SummaryHeading + "\n\n")
	fmt.Fprintf(&b, "- Outcome: %s\n", s.Outcome)
	fmt.Fprintf(&b, "- Duration: %s\n", s.Duration)
	if s.CriteriaTotal > 0 {
		fmt.Fprintf(&b, "- Acceptance criteria: %d/%d\n", s.CriteriaChecked, s.CriteriaTotal)
	}
	fmt.Fprintf(&b, "- Summarized: %s\n", summarizedAt.UTC().Format(time.RFC3339))

	writeList := func(heading string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString("\n### " + heading + "\n")
		for _, item := range items {
			b.WriteString("- " + item + "\n")
		}
	}
	writeList("Actions Taken", s.ActionsTaken)
	writeList("Results", s.Results)
	writeList("Follow-ups", s.Followups)
	writeList("Learnings", s.Learnings)
	return b.String()
}

// criteriaForSummary deliberately does not fall back to whole-body checkbox
// scanning: outcome classification distinguishes "no criteria section" from
// "criteria present", and work-log or follow-up checkboxes must not count.
func criteriaForSummary(body string) []AcceptanceCriterion {
	return checkboxLines(sectionText(body, "Acceptance Criteria"))
}

func countChecked(criteria []AcceptanceCriterion) (checked, total int) {
	for _, c := range criteria {
		if c.Checked {
			checked++
		}
	}
	return checked, len(criteria)
}

func decideOutcome(body string, criteria []AcceptanceCriterion, checked, total int) Outcome {
	if total == 0 {
		// No criteria at all: fall back to failure-language scan.
		if containsAny(strings.ToLower(body), failureKeywords) {
			return OutcomeBlocked
		}
		return OutcomeSuccess
	}
	ratio := float64(checked) / float64(total)
	switch {
	case ratio == 1.0:
		return OutcomeSuccess
	case ratio >= 0.7:
		return OutcomePartial
	default:
		return OutcomeBlocked
	}
}

// extractActions pulls bullet or timestamped lines from the Work Log
// section, substituting a single placeholder when nothing was logged.
func extractActions(body string) []string {
	var actions []string
	for _, line := range strings.Split(workLog(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			actions = append(actions, strings.TrimSpace(trimmed[2:]))
			continue
		}
		if len(trimmed) > 0 && trimmed[0] >= '0' && trimmed[0] <= '9' {
			actions = append(actions, trimmed)
		}
	}
	if len(actions) == 0 {
		actions = []string{"Task completed (no work log recorded)"}
	}
	return actions
}

func extractResults(body string, criteria []AcceptanceCriterion) []string {
	if section := sectionText(body, "Results"); section != "" {
		return bulletLines(section)
	}
	var results []string
	for _, c := range criteria {
		if c.Checked {
			results = append(results, c.Text)
		}
	}
	return results
}

func extractFollowups(body string, criteria []AcceptanceCriterion, outcome Outcome) []string {
	var followups []string
	for _, name := range []string{"Follow-up", "Follow-ups", "Next Steps"} {
		for _, c := range checkboxLines(sectionText(body, name)) {
			followups = append(followups, c.Text)
		}
	}
	for _, action := range bulletLines(workLog(body)) {
		lower := strings.ToLower(action)
		if strings.HasPrefix(lower, "todo") || strings.HasPrefix(lower, "next:") ||
			strings.HasPrefix(lower, "follow-up") {
			followups = append(followups, action)
		}
	}
	if outcome == OutcomePartial || outcome == OutcomeBlocked {
		for _, c := range criteria {
			if !c.Checked {
				followups = append(followups, "Complete: "+c.Text)
			}
		}
	}
	return followups
}

func extractLearnings(body string) []string {
	var learnings []string
	for _, name := range []string{"Learnings", "Notes"} {
		learnings = append(learnings, bulletLines(sectionText(body, name))...)
	}
	for _, line := range bulletLines(workLog(body)) {
		lower := strings.ToLower(line)
		if containsAny(lower, issueKeywords) && containsAny(lower, resolutionKeywords) {
			learnings = append(learnings, line)
		}
	}
	return learnings
}

func workLog(body string) string {
	return sectionText(body, "Work Log")
}

func checkboxLines(text string) []AcceptanceCriterion {
	var out []AcceptanceCriterion
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "- [x]"), strings.HasPrefix(trimmed, "- [X]"):
			out = append(out, AcceptanceCriterion{Text: strings.TrimSpace(trimmed[5:]), Checked: true})
		case strings.HasPrefix(trimmed, "- [ ]"):
			out = append(out, AcceptanceCriterion{Text: strings.TrimSpace(trimmed[5:]), Checked: false})
		}
	}
	return out
}

func bulletLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			out = append(out, strings.TrimSpace(trimmed[2:]))
		}
	}
	return out
}
