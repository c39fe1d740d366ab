package visual

// Severity ranks how disruptive a visual issue is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Urgent is true for high and critical issues, the ones that get highlighted.
func (s Severity) Urgent() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// Category names the heuristic that produced an issue.
type Category string

const (
	CategoryOverlap     Category = "overlap"
	CategoryLayoutShift Category = "layout-shift"
	CategoryOverflow    Category = "overflow"
	CategorySpacing     Category = "spacing"
	CategoryFont        Category = "font"
)

// Categories lists every category in detection order.
var Categories = []Category{
	CategoryOverlap,
	CategoryLayoutShift,
	CategoryOverflow,
	CategorySpacing,
	CategoryFont,
}

// Rect is a CSS pixel box in page coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns width times height.
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// Intersect returns the area shared by r and o.
func (r Rect) Intersect(o Rect) float64 {
	w := min(r.X+r.Width, o.X+o.Width) - max(r.X, o.X)
	h := min(r.Y+r.Height, o.Y+o.Height) - max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Issue is one detected visual defect.
type Issue struct {
	Type        string   `json:"type"`
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Element     string   `json:"element,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`
	Bounds      *Rect    `json:"bounds,omitempty"`
}

// HighlightedIssue is an urgent issue that was drawn on the highlighted
// screenshot under IssueNumber.
type HighlightedIssue struct {
	Issue
	IssueNumber int  `json:"issueNumber"`
	Highlighted bool `json:"highlighted"`
}

// MaxHighlighted caps how many issues are numbered on a screenshot.
const MaxHighlighted = 10

// SelectHighlights numbers the first MaxHighlighted high or critical issues.
func SelectHighlights(issues []Issue) []HighlightedIssue {
	var out []HighlightedIssue
	for _, is := range issues {
		if !is.Severity.Urgent() {
			continue
		}
		if len(out) == MaxHighlighted {
			break
		}
		out = append(out, HighlightedIssue{Issue: is, IssueNumber: len(out) + 1, Highlighted: true})
	}
	return out
}

// CountByCategory tallies issues per category.
func CountByCategory(issues []Issue) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, is := range issues {
		counts[is.Category]++
	}
	return counts
}
