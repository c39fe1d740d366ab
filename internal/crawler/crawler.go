package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/v0xg/pagescout/internal/browser"
)

// selectorHelpers defines getSelector, shared by every extraction script.
const selectorHelpers = `
	// CSS class names can't start with a digit or hyphen followed by digit,
	// and must not contain selector syntax.
	function isValidCSSClass(cls) {
		if (!cls || cls.length === 0) return false;
		if (/^[0-9]/.test(cls)) return false;
		if (/^-[0-9]/.test(cls)) return false;
		if (/[.:#\[\]()>~+*\/\\]/.test(cls)) return false;
		return true;
	}

	function getSelector(el) {
		if (el.id && isValidCSSClass(el.id)) return '#' + el.id;
		if (el.name && typeof el.name === 'string') {
			const byName = el.tagName.toLowerCase() + '[name="' + el.name + '"]';
			try {
				if (document.querySelectorAll(byName).length === 1) return byName;
			} catch (e) {}
		}

		if (el.className && typeof el.className === 'string') {
			const validClasses = el.className.trim().split(/\s+/).filter(isValidCSSClass).slice(0, 2);
			if (validClasses.length > 0) {
				const selector = el.tagName.toLowerCase() + '.' + validClasses.join('.');
				try {
					if (document.querySelectorAll(selector).length === 1) return selector;
				} catch (e) {}
			}
		}

		const parent = el.parentElement;
		if (parent && parent !== document.documentElement) {
			const index = Array.from(parent.children).indexOf(el) + 1;
			return getSelector(parent) + ' > ' + el.tagName.toLowerCase() + ':nth-child(' + index + ')';
		}
		return el.tagName.toLowerCase();
	}

	function isShown(el) {
		return el.offsetParent !== null && el.style.display !== 'none' && el.style.visibility !== 'hidden';
	}
`

const analyzeJS = `() => {` + selectorHelpers + `
	const interactiveSelectors = [
		'button', 'a[href]', 'input', 'textarea', 'select',
		'[role="button"]', '[role="link"]', '[role="menuitem"]',
		'[onclick]', '[data-testid]',
		'[class*="btn"]', '[class*="button"]', '[class*="link"]', '[class*="menu"]', '[class*="nav"]'
	];

	const elements = [];
	const seen = new Set();

	interactiveSelectors.forEach(query => {
		document.querySelectorAll(query).forEach(el => {
			if (seen.has(el) || !isShown(el)) return;
			seen.add(el);

			const attributes = {};
			for (const attr of el.attributes) attributes[attr.name] = attr.value;
			const rect = el.getBoundingClientRect();

			elements.push({
				selector: getSelector(el),
				tagName: el.tagName.toLowerCase(),
				type: el.type || el.tagName.toLowerCase(),
				text: (el.textContent || '').trim().slice(0, 200),
				attributes,
				isVisible: true,
				isEnabled: !el.disabled,
				position: { x: rect.x + window.scrollX, y: rect.y + window.scrollY, width: rect.width, height: rect.height },
				role: el.getAttribute('role') || undefined,
				ariaLabel: el.getAttribute('aria-label') || undefined,
				placeholder: el.placeholder || undefined,
				value: (typeof el.value === 'string' && el.value) || undefined,
				href: (el.tagName === 'A' && el.getAttribute('href')) || undefined
			});
		});
	});

	return {
		url: window.location.href,
		title: document.title,
		elements,
		formCount: document.querySelectorAll('form').length,
		buttonCount: document.querySelectorAll('button, input[type="button"], input[type="submit"]').length,
		linkCount: document.querySelectorAll('a[href]').length,
		inputCount: document.querySelectorAll('input, textarea, select').length
	};
}`

const clickableJS = `() => {` + selectorHelpers + `
	const clickableSelectors = [
		'button', 'a[href]',
		'input[type="submit"]', 'input[type="button"]', 'input[type="reset"]',
		'[role="button"]', '[onclick]',
		'[data-testid*="button"]', '[data-testid*="link"]',
		'[class*="btn"]', '[class*="button"]', '[class*="link"]'
	];

	const out = [];
	const seen = new Set();

	clickableSelectors.forEach(query => {
		document.querySelectorAll(query).forEach(el => {
			if (seen.has(el) || !isShown(el) || el.disabled) return;
			seen.add(el);

			const tag = el.tagName.toLowerCase();
			let type = 'other', text = '', href = '', action = '';
			if (tag === 'button') {
				type = 'button';
				text = (el.textContent || '').trim();
			} else if (tag === 'a') {
				type = 'link';
				text = (el.textContent || '').trim();
				href = el.href || '';
			} else if (tag === 'input') {
				type = 'input';
				text = el.value || '';
			} else if (tag === 'form') {
				type = 'form';
				text = el.getAttribute('action') || '';
				action = el.action || '';
			} else {
				text = (el.textContent || '').trim();
			}

			out.push({
				selector: getSelector(el),
				tagName: tag,
				text: text.slice(0, 50),
				type,
				isVisible: true,
				isEnabled: !el.disabled,
				href: href || undefined,
				action: action || undefined
			});
		});
	});
	return out;
}`

const inputsJS = `() => {` + selectorHelpers + `
	const inputSelectors = [
		'input[type="text"]', 'input[type="email"]', 'input[type="password"]',
		'input[type="search"]', 'input[type="tel"]', 'input[type="url"]',
		'input[type="number"]', 'textarea', 'select'
	];

	const out = [];
	const seen = new Set();

	inputSelectors.forEach(query => {
		document.querySelectorAll(query).forEach(el => {
			if (seen.has(el) || !isShown(el)) return;
			seen.add(el);
			out.push({
				selector: getSelector(el),
				type: el.type || el.tagName.toLowerCase(),
				name: el.name || '',
				placeholder: el.placeholder || '',
				isRequired: !!el.required,
				isVisible: true,
				isEnabled: !el.disabled,
				value: el.value || undefined
			});
		});
	});
	return out;
}`

const interactiveCountJS = `() => {
	const nodes = document.querySelectorAll('button, [role="button"], input:not([type="hidden"]), textarea, a[href]');
	let visible = 0;
	nodes.forEach(el => { if (el.offsetParent) visible++; });
	return visible;
}`

const spaJS = `() => {
	// React
	if (window.__REACT_DEVTOOLS_GLOBAL_HOOK__ || document.querySelector('[data-reactroot]') || document.querySelector('#__next')) return true;
	// Vue
	if (window.__VUE__ || document.querySelector('[data-v-app]')) return true;
	// Angular
	if (window.ng || document.querySelector('[ng-version]') || document.querySelector('app-root')) return true;
	// Svelte
	if (document.querySelector('[class*="svelte-"]')) return true;
	return false;
}`

// Analyze collects every visible interactive element and page-wide counts.
func Analyze(ctx context.Context, ev browser.Evaluator) (*PageAnalysis, error) {
	var analysis PageAnalysis
	if err := ev.Evaluate(ctx, analyzeJS, &analysis); err != nil {
		return nil, fmt.Errorf("analyze page: %w", err)
	}

	var spa bool
	if err := ev.Evaluate(ctx, spaJS, &spa); err == nil {
		analysis.IsSPA = spa
	}

	for _, el := range analysis.Elements {
		if el.Interactive() {
			analysis.InteractiveElements = append(analysis.InteractiveElements, el)
		}
	}
	return &analysis, nil
}

// DetectClickable finds visible, enabled elements worth clicking.
func DetectClickable(ctx context.Context, ev browser.Evaluator) ([]ClickableElement, error) {
	var out []ClickableElement
	if err := ev.Evaluate(ctx, clickableJS, &out); err != nil {
		return nil, fmt.Errorf("detect clickable elements: %w", err)
	}
	return out, nil
}

// DetectInputs finds visible form fields.
func DetectInputs(ctx context.Context, ev browser.Evaluator) ([]InputField, error) {
	var out []InputField
	if err := ev.Evaluate(ctx, inputsJS, &out); err != nil {
		return nil, fmt.Errorf("detect input fields: %w", err)
	}
	return out, nil
}

// WaitForInteractive polls until interactive elements appear or timeout,
// giving client-rendered pages time to hydrate.
func WaitForInteractive(ctx context.Context, ev browser.Evaluator, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	checkInterval := 200 * time.Millisecond

	for time.Now().Before(deadline) {
		var count int
		if err := ev.Evaluate(ctx, interactiveCountJS, &count); err == nil && count > 0 {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(checkInterval):
		}
	}
	return false
}
