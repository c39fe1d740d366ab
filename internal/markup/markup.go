// Package markup reads the outerHTML snippets attached to visual issues.
package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// Tag is the opening tag of a snippet.
type Tag struct {
	Name    string
	ID      string
	Classes []string
}

// First returns the first start tag in s. Snippets are usually truncated, so
// anything after the opening tag may be missing.
func First(s string) (Tag, bool) {
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a malformed snippet; either way there is no tag.
			return Tag{}, false

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := z.TagName()
			tag := Tag{Name: string(tn)}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				switch string(key) {
				case "id":
					tag.ID = strings.TrimSpace(string(val))
				case "class":
					tag.Classes = strings.Fields(string(val))
				}
			}
			return tag, true
		}
	}
}

// Selectors derives candidate CSS selectors for the element a snippet was
// taken from, most specific first: #id, tag.class, .class, tag.
func Selectors(s string) []string {
	tag, ok := First(s)
	if !ok {
		return nil
	}

	var out []string
	if tag.ID != "" && validIdent(tag.ID) {
		out = append(out, "#"+tag.ID)
	}
	if len(tag.Classes) > 0 && validIdent(tag.Classes[0]) {
		out = append(out, tag.Name+"."+tag.Classes[0], "."+tag.Classes[0])
	}
	out = append(out, tag.Name)
	return out
}

// Summarize renders a snippet as a short label such as `div#main.card`.
func Summarize(s string) string {
	tag, ok := First(s)
	if !ok {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	b.WriteString(tag.Name)
	if tag.ID != "" {
		b.WriteString("#" + tag.ID)
	}
	for i, c := range tag.Classes {
		if i == 2 {
			break
		}
		b.WriteString("." + c)
	}
	return b.String()
}

// validIdent rejects names that would need escaping in a selector.
func validIdent(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	if len(s) > 1 && s[0] == '-' && s[1] >= '0' && s[1] <= '9' {
		return false
	}
	return !strings.ContainsAny(s, ".:#[]()>~+*/\\\"' ")
}
