package testgen

import "fmt"

// Merge appends extra test cases to base without letting any category grow
// past CategoryCaps. Invalid cases and cases whose selector and category
// are already covered are dropped. Appended cases are renumbered after the
// last base ID and tagged with src.
func Merge(base, extra []TestCase, src Source) (merged []TestCase, rejected []error) {
	merged = append(merged, base...)

	counts := make(map[Category]int, len(CategoryCaps))
	seen := make(map[string]bool, len(base))
	for _, tc := range base {
		counts[tc.Category]++
		seen[dedupeKey(tc)] = true
	}

	for _, tc := range extra {
		if err := tc.Validate(); err != nil {
			rejected = append(rejected, err)
			continue
		}
		key := dedupeKey(tc)
		if seen[key] {
			continue
		}
		if counts[tc.Category] >= CategoryCaps[tc.Category] {
			continue
		}

		tc.ID = fmt.Sprintf("TC%d", len(merged)+1)
		tc.Source = src
		merged = append(merged, tc)
		counts[tc.Category]++
		seen[key] = true
	}
	return merged, rejected
}

func dedupeKey(tc TestCase) string {
	return string(tc.Category) + "\x00" + tc.ElementSelector
}
