package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"id and class", `<div id="hero" class="card wide"><p>hi</p></div>`, []string{"#hero", "div.card", ".card", "div"}},
		{"class only", `<span class="badge">3</span>`, []string{"span.badge", ".badge", "span"}},
		{"bare tag", `<section>text`, []string{"section"}},
		{"truncated after opening tag", `<nav class="top"><ul><li><a href="/x">Lo`, []string{"nav.top", ".top", "nav"}},
		{"numeric id is skipped", `<div id="123" class="row">`, []string{"div.row", ".row", "div"}},
		{"self closing", `<img id="logo" src="/a.png"/>`, []string{"#logo", "img"}},
		{"leading text", `  <button class="btn">Go</button>`, []string{"button.btn", ".btn", "button"}},
		{"no tag", `just text`, nil},
		{"empty", ``, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Selectors(tt.input))
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "div#main.card.wide", Summarize(`<div id="main" class="card wide shadow">x</div>`))
	assert.Equal(t, "body", Summarize("body"))
	assert.Equal(t, "p", Summarize("<p>"))
}
