package testgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	base := []TestCase{
		{ID: "TC1", ElementSelector: "a.one", Action: ActionClick, Priority: PriorityHigh, Category: CategoryNavigation, Source: SourceHeuristic},
		{ID: "TC2", ElementSelector: "a.two", Action: ActionClick, Priority: PriorityHigh, Category: CategoryNavigation, Source: SourceHeuristic},
		{ID: "TC3", ElementSelector: "#v", Action: ActionValidation, Priority: PriorityMedium, Category: CategoryValidation, Source: SourceHeuristic},
	}
	extra := []TestCase{
		{ElementSelector: "a.one", Action: ActionClick, Priority: PriorityHigh, Category: CategoryNavigation},   // duplicate
		{ElementSelector: "a.three", Action: ActionClick, Priority: PriorityLow, Category: CategoryNavigation},  // fills the last slot
		{ElementSelector: "a.four", Action: ActionClick, Priority: PriorityLow, Category: CategoryNavigation},   // over cap
		{ElementSelector: "#w", Action: ActionValidation, Priority: PriorityLow, Category: CategoryValidation},  // fills validation
		{ElementSelector: "#x", Action: "hover", Priority: PriorityLow, Category: CategoryInteraction},          // unknown action
		{ElementSelector: "", Action: ActionClick, Priority: PriorityLow, Category: CategoryInteraction},        // no selector
		{ElementSelector: "#y", Action: ActionClick, Priority: "urgent", Category: CategoryInteraction},         // unknown priority
		{ElementSelector: "#z", Action: ActionClick, Priority: PriorityLow, Category: "performance"},            // unknown category
		{ElementSelector: "a.one", Action: ActionClick, Priority: PriorityLow, Category: CategoryInteraction},   // new category, kept
	}

	merged, rejected := Merge(base, extra, SourceAI)

	assert.Len(t, rejected, 4)
	require.Len(t, merged, 6)
	assert.Equal(t, base, merged[:3])

	assert.Equal(t, "TC4", merged[3].ID)
	assert.Equal(t, "a.three", merged[3].ElementSelector)
	assert.Equal(t, "TC5", merged[4].ID)
	assert.Equal(t, "#w", merged[4].ElementSelector)
	assert.Equal(t, "TC6", merged[5].ID)
	assert.Equal(t, CategoryInteraction, merged[5].Category)
	for _, tc := range merged[3:] {
		assert.Equal(t, SourceAI, tc.Source)
	}
}

func TestMergeNeverExceedsCaps(t *testing.T) {
	var extra []TestCase
	for _, cat := range Categories {
		for i := 0; i < 10; i++ {
			extra = append(extra, TestCase{
				ElementSelector: string(cat) + string(rune('a'+i)),
				Action:          ActionClick,
				Priority:        PriorityMedium,
				Category:        cat,
			})
		}
	}

	merged, _ := Merge(nil, extra, SourceAI)

	counts := map[Category]int{}
	for _, tc := range merged {
		counts[tc.Category]++
	}
	for cat, limit := range CategoryCaps {
		assert.Equal(t, limit, counts[cat], cat)
	}
}
