package visual

import (
	"fmt"
	"math"
)

// Thresholds holds the numeric cut-offs of every heuristic.
type Thresholds struct {
	Overlap         float64 `toml:"overlap"`
	OverlapHigh     float64 `toml:"overlap_high"`
	LayoutShift     float64 `toml:"layout_shift"`
	LayoutShiftHigh float64 `toml:"layout_shift_high"`
	SpacingRange    float64 `toml:"spacing_range"`
	FontStdDev      float64 `toml:"font_std_dev"`
	MaxMarkup       int     `toml:"max_markup"`
}

// DefaultThresholds returns the stock cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Overlap:         0.1,
		OverlapHigh:     0.5,
		LayoutShift:     0.1,
		LayoutShiftHigh: 0.25,
		SpacingRange:    20,
		FontStdDev:      8,
		MaxMarkup:       500,
	}
}

const issueType = "visual"

// Box is a visible element sampled for the overlap scan.
type Box struct {
	Markup string `json:"markup"`
	Rect   Rect   `json:"rect"`
}

// OverlapRatio is the intersection area divided by the smaller of the two
// box areas, so a box fully inside another scores 1. Zero-area boxes never
// overlap.
func OverlapRatio(a, b Rect) float64 {
	smaller := min(a.Area(), b.Area())
	if smaller <= 0 {
		return 0
	}
	return a.Intersect(b) / smaller
}

// ScoreOverlaps checks every pair of boxes.
func ScoreOverlaps(boxes []Box, th Thresholds) []Issue {
	var issues []Issue
	for i := 0; i < len(boxes); i++ {
		for j := i + 1; j < len(boxes); j++ {
			ratio := OverlapRatio(boxes[i].Rect, boxes[j].Rect)
			if ratio <= th.Overlap {
				continue
			}
			sev := SeverityMedium
			if ratio > th.OverlapHigh {
				sev = SeverityHigh
			}
			bounds := boxes[i].Rect
			issues = append(issues, Issue{
				Type:        issueType,
				Category:    CategoryOverlap,
				Severity:    sev,
				Description: fmt.Sprintf("Overlapping elements detected (%d%%)", int(math.Round(ratio*100))),
				Element:     boxes[i].Markup,
				Suggestion:  "Adjust the element position or z-index",
				Bounds:      &bounds,
			})
		}
	}
	return issues
}

// LayoutShift is one buffered layout-shift performance entry.
type LayoutShift struct {
	Value     float64 `json:"value"`
	StartTime float64 `json:"startTime"`
}

// ScoreLayoutShifts flags shift entries above the threshold.
func ScoreLayoutShifts(shifts []LayoutShift, th Thresholds) []Issue {
	var issues []Issue
	for _, s := range shifts {
		if s.Value <= th.LayoutShift {
			continue
		}
		sev := SeverityMedium
		if s.Value > th.LayoutShiftHigh {
			sev = SeverityHigh
		}
		issues = append(issues, Issue{
			Type:        issueType,
			Category:    CategoryLayoutShift,
			Severity:    sev,
			Description: fmt.Sprintf("Layout shift detected (CLS: %.3f)", s.Value),
			Suggestion:  "Give images explicit dimensions and reserve space for late content",
		})
	}
	return issues
}

// OverflowSample is an element's overflow style and scroll geometry.
type OverflowSample struct {
	Markup       string `json:"markup"`
	Overflow     string `json:"overflow"`
	ScrollHeight int    `json:"scrollHeight"`
	ClientHeight int    `json:"clientHeight"`
	Rect         Rect   `json:"rect"`
}

// ScoreOverflow flags hidden-overflow elements whose content is clipped.
func ScoreOverflow(samples []OverflowSample) []Issue {
	var issues []Issue
	for _, s := range samples {
		if s.Overflow != "hidden" || s.ScrollHeight <= s.ClientHeight {
			continue
		}
		issue := Issue{
			Type:        issueType,
			Category:    CategoryOverflow,
			Severity:    SeverityMedium,
			Description: "Content overflows its container",
			Element:     s.Markup,
			Suggestion:  "Resize the container or revisit its overflow setting",
		}
		if s.Rect.Area() > 0 {
			r := s.Rect
			issue.Bounds = &r
		}
		issues = append(issues, issue)
	}
	return issues
}

// SpacingSample holds the positive vertical margins and paddings of a page.
type SpacingSample struct {
	Margins  []float64 `json:"margins"`
	Paddings []float64 `json:"paddings"`
}

// ScoreSpacing flags margin or padding sets whose range is too wide.
func ScoreSpacing(s SpacingSample, th Thresholds) []Issue {
	var issues []Issue
	if spread(s.Margins) > th.SpacingRange {
		issues = append(issues, spacingIssue("Inconsistent margins detected"))
	}
	if spread(s.Paddings) > th.SpacingRange {
		issues = append(issues, spacingIssue("Inconsistent padding detected"))
	}
	return issues
}

func spacingIssue(desc string) Issue {
	return Issue{
		Type:        issueType,
		Category:    CategorySpacing,
		Severity:    SeverityLow,
		Description: desc,
		Element:     "body",
		Suggestion:  "Use a consistent spacing scale",
	}
}

// spread is max minus min over positive values; fewer than two values have
// no spread.
func spread(values []float64) float64 {
	var lo, hi float64
	n := 0
	for _, v := range values {
		if v <= 0 {
			continue
		}
		if n == 0 || v < lo {
			lo = v
		}
		if n == 0 || v > hi {
			hi = v
		}
		n++
	}
	if n < 2 {
		return 0
	}
	return hi - lo
}

// PopulationStdDev returns the population standard deviation of the
// positive values.
func PopulationStdDev(values []float64) float64 {
	var sum float64
	n := 0
	for _, v := range values {
		if v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	var variance float64
	for _, v := range values {
		if v > 0 {
			variance += (v - mean) * (v - mean)
		}
	}
	return math.Sqrt(variance / float64(n))
}

// ScoreFontSizes flags pages whose font sizes vary too much.
func ScoreFontSizes(sizes []float64, th Thresholds) []Issue {
	positive := 0
	for _, v := range sizes {
		if v > 0 {
			positive++
		}
	}
	if positive < 2 {
		return nil
	}
	dev := PopulationStdDev(sizes)
	if dev <= th.FontStdDev {
		return nil
	}
	return []Issue{{
		Type:        issueType,
		Category:    CategoryFont,
		Severity:    SeverityLow,
		Description: fmt.Sprintf("Inconsistent font sizes detected (std dev: %.1fpx)", dev),
		Element:     "body",
		Suggestion:  "Reduce the number of distinct font sizes",
	}}
}
