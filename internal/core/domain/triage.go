package domain

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// SLA returns the response-time budget for a priority. P0 means immediate.
func (p Priority) SLA() time.Duration {
	switch p {
	case PriorityP0:
		return 0
	case PriorityP1:
		return 4 * time.Hour
	case PriorityP3:
		return 72 * time.Hour
	default:
		return 24 * time.Hour
	}
}

type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

func (c Complexity) EstimatedEffort() string {
	switch c {
	case ComplexityModerate:
		return "1h"
	case ComplexityComplex:
		return "4h"
	default:
		return "15min"
	}
}

// TriageResult is the full classification of a new document. Priority and
// complexity are recorded even when the status cascade short-circuits.
type TriageResult struct {
	Status            Status
	Priority          Priority
	Complexity        Complexity
	EstimatedEffort   string
	CompletenessScore int
	SLADeadline       time.Time
}

// TriageReport is what a completed triage hands back to the caller: the
// classification plus where the document ended up.
type TriageReport struct {
	Identity string
	Result   TriageResult
	MovedTo  string
}

// Keyword tables for the shallow text scans. False positives (the word
// appearing in an unrelated sentence) are an accepted limitation.
var (
	blockerPhrases = []string{"waiting for", "depends on", "blocked by", "need approval"}

	integrationKeywords = []string{
		"api", "database", "integration", "webhook", "external system",
		"third-party", "sql", "service",
	}

	scopeKeywords = []string{"multiple", "various", "several", "across"}
)

// Classify derives status, priority, complexity, effort, completeness and
// the SLA deadline from a document body. The decision cascade is fixed:
// structure, then completeness, then blockers; the first check that decides
// a status wins, but priority and complexity are always computed since they
// are recorded in metadata regardless of the outcome.
func Classify(body string, now time.Time) TriageResult {
	title := extractTitle(body)
	description := sectionText(body, "Description")
	priority, priorityStated := extractPriority(body)
	criteria := ExtractCriteria(body)

	result := TriageResult{
		Priority:          priority,
		CompletenessScore: completenessScore(title, description, len(criteria) > 0, priorityStated),
		Complexity:        classifyComplexity(description, len(criteria)),
		SLADeadline:       now.Add(priority.SLA()),
	}
	result.EstimatedEffort = result.Complexity.EstimatedEffort()
	result.Status = decideStatus(body, title, description, result.CompletenessScore)
	return result
}

func decideStatus(body, title, description string, completeness int) Status {
	if title == "" || description == "" {
		return StatusNeedsClarification
	}
	if completeness < 50 {
		return StatusNeedsClarification
	}
	if containsBlockerPhrase(body) {
		return StatusBlocked
	}
	return StatusNeedsAction
}

func completenessScore(title, description string, hasCriteria, priorityStated bool) int {
	score := 0
	if len(title) > 5 {
		score += 25
	}
	if len(description) > 20 {
		score += 25
	}
	if hasCriteria {
		score += 25
	}
	if priorityStated {
		score += 25
	}
	return score
}

func classifyComplexity(description string, criteriaCount int) Complexity {
	lower := strings.ToLower(description)
	signals := 0
	if containsAny(lower, integrationKeywords) {
		signals++
	}
	if containsAny(lower, scopeKeywords) {
		signals++
	}
	if criteriaCount > 5 {
		signals++
	}
	switch {
	case signals >= 2:
		return ComplexityComplex
	case signals == 1:
		return ComplexityModerate
	default:
		return ComplexitySimple
	}
}

func containsBlockerPhrase(body string) bool {
	return containsAny(strings.ToLower(body), blockerPhrases)
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// extractTitle returns the text of the first H1 heading, or "".
func extractTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

// extractPriority reads an explicit "Priority: Pn" field anywhere in the
// body. Unrecognized or absent values default to P2 with stated=false.
func extractPriority(body string) (Priority, bool) {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimLeft(strings.TrimSpace(line), "*-")
		trimmed = strings.TrimSpace(trimmed)
		rest, ok := cutFieldPrefix(trimmed, "priority:")
		if !ok {
			continue
		}
		switch Priority(strings.ToUpper(strings.TrimSuffix(strings.TrimSpace(rest), "*"))) {
		case PriorityP0:
			return PriorityP0, true
		case PriorityP1:
			return PriorityP1, true
		case PriorityP2:
			return PriorityP2, true
		case PriorityP3:
			return PriorityP3, true
		}
	}
	return PriorityP2, false
}

func cutFieldPrefix(line, prefix string) (string, bool) {
	if len(line) < len(prefix) {
		return "", false
	}
	if !strings.EqualFold(line[:len(prefix)], prefix) {
		return "", false
	}
	return line[len(prefix):], true
}

// sectionText returns the text under "## <name>" up to the next heading of
// the same or higher level, trimmed. Matching is case-insensitive.
func sectionText(body, name string) string {
	lines := strings.Split(body, "\n")
	var out []string
	in := false
	for _, line := range lines {
		if heading, ok := headingText(line); ok {
			if in {
				break
			}
			if strings.EqualFold(heading, name) {
				in = true
			}
			continue
		}
		if in {
			out = append(out, line)
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func headingText(line string) (string, bool) {
	if !strings.HasPrefix(line, "##") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimLeft(line, "#")), true
}
