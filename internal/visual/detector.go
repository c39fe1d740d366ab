// Package visual finds layout defects on a rendered page. Scripts evaluated
// in the page only sample geometry and styles; every rule is scored in Go.
package visual

import (
	"context"
	"fmt"

	"github.com/v0xg/pagescout/internal/browser"
)

const boxesJS = `(maxMarkup) => {
	const out = [];
	document.querySelectorAll('*').forEach(el => {
		if (el.offsetParent === null) return;
		const r = el.getBoundingClientRect();
		if (r.width <= 0 || r.height <= 0) return;
		out.push({
			markup: el.outerHTML.slice(0, maxMarkup),
			rect: { x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height }
		});
	});
	return out;
}`

// Entries recorded before the observer is registered are replayed through
// buffered: true.
const layoutShiftJS = `() => new Promise(resolve => {
	const shifts = [];
	if (typeof PerformanceObserver === 'undefined' ||
		!(PerformanceObserver.supportedEntryTypes || []).includes('layout-shift')) {
		resolve(shifts);
		return;
	}
	const observer = new PerformanceObserver(list => {
		for (const entry of list.getEntries()) {
			shifts.push({ value: entry.value, startTime: entry.startTime });
		}
	});
	observer.observe({ type: 'layout-shift', buffered: true });
	setTimeout(() => { observer.disconnect(); resolve(shifts); }, 1000);
})`

const overflowJS = `(maxMarkup) => {
	const out = [];
	document.querySelectorAll('*').forEach(el => {
		const style = window.getComputedStyle(el);
		if (style.overflow !== 'hidden') return;
		const r = el.getBoundingClientRect();
		out.push({
			markup: el.outerHTML.slice(0, maxMarkup),
			overflow: style.overflow,
			scrollHeight: el.scrollHeight,
			clientHeight: el.clientHeight,
			rect: { x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height }
		});
	});
	return out;
}`

const spacingJS = `() => {
	const margins = [], paddings = [];
	document.querySelectorAll('*').forEach(el => {
		const s = window.getComputedStyle(el);
		const m = parseFloat(s.marginTop) + parseFloat(s.marginBottom);
		const p = parseFloat(s.paddingTop) + parseFloat(s.paddingBottom);
		if (m > 0) margins.push(m);
		if (p > 0) paddings.push(p);
	});
	return { margins, paddings };
}`

const fontSizesJS = `() => {
	const sizes = [];
	document.querySelectorAll('*').forEach(el => {
		const v = parseFloat(window.getComputedStyle(el).fontSize);
		if (v > 0) sizes.push(v);
	});
	return sizes;
}`

// Detector runs every heuristic against one page.
type Detector struct {
	ev browser.Evaluator
	th Thresholds
}

// NewDetector returns a Detector using th.
func NewDetector(ev browser.Evaluator, th Thresholds) *Detector {
	return &Detector{ev: ev, th: th}
}

// Detect runs overlap, layout-shift, overflow, spacing and font checks and
// concatenates their findings in that order. It never modifies the page.
func (d *Detector) Detect(ctx context.Context) ([]Issue, error) {
	var issues []Issue

	overlaps, err := d.Overlaps(ctx)
	if err != nil {
		return nil, err
	}
	issues = append(issues, overlaps...)

	shifts, err := d.LayoutShifts(ctx)
	if err != nil {
		return nil, err
	}
	issues = append(issues, shifts...)

	overflow, err := d.Overflow(ctx)
	if err != nil {
		return nil, err
	}
	issues = append(issues, overflow...)

	spacing, err := d.Spacing(ctx)
	if err != nil {
		return nil, err
	}
	issues = append(issues, spacing...)

	fonts, err := d.Fonts(ctx)
	if err != nil {
		return nil, err
	}
	issues = append(issues, fonts...)

	return issues, nil
}

func (d *Detector) Overlaps(ctx context.Context) ([]Issue, error) {
	var boxes []Box
	if err := d.ev.Evaluate(ctx, boxesJS, &boxes, d.th.MaxMarkup); err != nil {
		return nil, fmt.Errorf("sample element boxes: %w", err)
	}
	return ScoreOverlaps(boxes, d.th), nil
}

func (d *Detector) LayoutShifts(ctx context.Context) ([]Issue, error) {
	var shifts []LayoutShift
	if err := d.ev.Evaluate(ctx, layoutShiftJS, &shifts); err != nil {
		return nil, fmt.Errorf("sample layout shifts: %w", err)
	}
	return ScoreLayoutShifts(shifts, d.th), nil
}

func (d *Detector) Overflow(ctx context.Context) ([]Issue, error) {
	var samples []OverflowSample
	if err := d.ev.Evaluate(ctx, overflowJS, &samples, d.th.MaxMarkup); err != nil {
		return nil, fmt.Errorf("sample overflow: %w", err)
	}
	return ScoreOverflow(samples), nil
}

func (d *Detector) Spacing(ctx context.Context) ([]Issue, error) {
	var s SpacingSample
	if err := d.ev.Evaluate(ctx, spacingJS, &s); err != nil {
		return nil, fmt.Errorf("sample spacing: %w", err)
	}
	return ScoreSpacing(s, d.th), nil
}

func (d *Detector) Fonts(ctx context.Context) ([]Issue, error) {
	var sizes []float64
	if err := d.ev.Evaluate(ctx, fontSizesJS, &sizes); err != nil {
		return nil, fmt.Errorf("sample font sizes: %w", err)
	}
	return ScoreFontSizes(sizes, d.th), nil
}
