package crawler

// Position is an element box in document coordinates.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PageElement is an interactive element found by Analyze.
type PageElement struct {
	Selector    string            `json:"selector"`
	TagName     string            `json:"tagName"`
	Type        string            `json:"type"`
	Text        string            `json:"text"`
	Attributes  map[string]string `json:"attributes"`
	IsVisible   bool              `json:"isVisible"`
	IsEnabled   bool              `json:"isEnabled"`
	Position    Position          `json:"position"`
	Role        string            `json:"role,omitempty"`
	AriaLabel   string            `json:"ariaLabel,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Value       string            `json:"value,omitempty"`
	Href        string            `json:"href,omitempty"`
}

// Attr returns an attribute value and whether it was present.
func (e PageElement) Attr(name string) (string, bool) {
	v, ok := e.Attributes[name]
	return v, ok
}

// Interactive is true for buttons, links and inputs.
func (e PageElement) Interactive() bool {
	switch e.TagName {
	case "button", "a", "input":
		return true
	}
	return e.Role == "button" || e.Role == "link"
}

// PageAnalysis represents the analyzed structure of a web page.
type PageAnalysis struct {
	URL                 string        `json:"url"`
	Title               string        `json:"title"`
	IsSPA               bool          `json:"isSPA"`
	Elements            []PageElement `json:"elements"`
	FormCount           int           `json:"formCount"`
	ButtonCount         int           `json:"buttonCount"`
	LinkCount           int           `json:"linkCount"`
	InputCount          int           `json:"inputCount"`
	InteractiveElements []PageElement `json:"interactiveElements"`
}

// ElementKind classifies a clickable element.
type ElementKind string

const (
	KindButton ElementKind = "button"
	KindLink   ElementKind = "link"
	KindInput  ElementKind = "input"
	KindForm   ElementKind = "form"
	KindOther  ElementKind = "other"
)

// ClickableElement is an element the navigation explorer may click.
type ClickableElement struct {
	Selector  string      `json:"selector"`
	TagName   string      `json:"tagName"`
	Text      string      `json:"text"`
	Type      ElementKind `json:"type"`
	IsVisible bool        `json:"isVisible"`
	IsEnabled bool        `json:"isEnabled"`
	Href      string      `json:"href,omitempty"`
	Action    string      `json:"action,omitempty"`
}

// InputField is a form control the navigation explorer may fill.
type InputField struct {
	Selector    string `json:"selector"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
	IsRequired  bool   `json:"isRequired"`
	IsVisible   bool   `json:"isVisible"`
	IsEnabled   bool   `json:"isEnabled"`
	Value       string `json:"value,omitempty"`
}
