package codegen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/pagescout/internal/testgen"
)

var cases = []testgen.TestCase{
	{ID: "TC1", Description: `Search test: "q" (q)`, ElementSelector: "#q", Action: testgen.ActionInputAndSearch, InputValue: "test search query"},
	{ID: "TC2", Description: "Navigation test: About", ElementSelector: `a[href="/about"]`, Action: testgen.ActionClick, ExpectedResult: "Moves to the about page"},
	{ID: "TC3", Description: "Input test: email", ElementSelector: "#email", Action: testgen.ActionInput, InputValue: "test@example.com"},
	{ID: "TC4", Description: "Required field\nvalidation", ElementSelector: "#email", Action: testgen.ActionValidation},
	{ID: "TC5", Description: "Hover menu", ElementSelector: ".menu", Action: "hover"},
}

func TestFromTestCases(t *testing.T) {
	infos := FromTestCases(cases)

	require.Len(t, infos, 5)
	assert.Equal(t, "testCase1", infos[0].Name)
	assert.Equal(t, "testCase5", infos[4].Name)
	assert.Equal(t, "input_and_search", infos[0].Action)
	assert.Equal(t, `a[href="/about"]`, infos[1].Selector)
	assert.Equal(t, "Moves to the about page", infos[1].ExpectedResult)
	assert.Equal(t, defaultExpected, infos[0].ExpectedResult)
}

func TestGenerateProducesValidGo(t *testing.T) {
	now := time.Date(2025, 3, 4, 15, 6, 7, 0, time.Local)
	f, err := Generate(`Shop "Home"`, "https://shop.example.com/", cases, now)
	require.NoError(t, err)

	assert.Equal(t, "ai_generated_20250304150607_test.go", f.FileName)
	assert.Equal(t, `Generated tests for Shop "Home"`, f.Description)
	assert.Len(t, f.TestCases, 5)
	assert.True(t, strings.HasPrefix(f.Code, "//go:build exploration\n"))

	file, err := parser.ParseFile(token.NewFileSet(), f.FileName, f.Code, parser.ParseComments)
	require.NoError(t, err, f.Code)
	assert.Equal(t, "generated", file.Name.Name)

	var tests []string
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && strings.HasPrefix(fn.Name.Name, "Test") {
			tests = append(tests, fn.Name.Name)
		}
	}
	assert.Equal(t, []string{"TestInitialPageLoad", "TestCase1", "TestCase2", "TestCase3", "TestCase4", "TestCase5"}, tests)
}

func TestGenerateBodiesFollowAction(t *testing.T) {
	f, err := Generate("Shop", "https://shop.example.com/", cases, time.Now())
	require.NoError(t, err)

	body := func(name string) string {
		start := strings.Index(f.Code, "func "+name+"(")
		require.NotEqual(t, -1, start, name)
		end := strings.Index(f.Code[start+1:], "\nfunc ")
		if end == -1 {
			return f.Code[start:]
		}
		return f.Code[start : start+1+end]
	}

	assert.Contains(t, body("TestCase1"), "submitSearch(page, el)")
	assert.Contains(t, body("TestCase1"), `query := "test search query"`)
	assert.Contains(t, body("TestCase2"), "el.MustClick()")
	assert.Contains(t, body("TestCase2"), `"click-test-a-href---about--"`)
	assert.Contains(t, body("TestCase2"), `"Moves to the about page"`)
	assert.Contains(t, body("TestCase3"), `value := "test@example.com"`)
	assert.Contains(t, body("TestCase4"), "el.MustBlur()")
	assert.Contains(t, body("TestCase5"), "el.MustVisible()")

	// Descriptions with newlines stay on one comment line.
	assert.Contains(t, f.Code, "// TestCase4: Required field validation\n")
}

func TestSave(t *testing.T) {
	f, err := Generate("Shop", "https://shop.example.com/", cases[:1], time.Now())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "generated")
	path, err := f.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, f.FileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, f.Code, string(data))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "-search-input", slug("#search input"))
	assert.Equal(t, "a1-b", slug("a1.b"))
	assert.Equal(t, "-", slug("検"))
}
