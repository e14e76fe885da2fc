package render

import (
	"net/url"
	"strings"

	"github.com/mikeboe/research-assistant/pkg/grounding"
)

// UntitledSource labels a citation that has neither title nor URI.
const UntitledSource = "Untitled source"

// Citation is one rendered source. Href is empty when Linked is false.
type Citation struct {
	Label  string
	Href   string
	Linked bool
}

// ResultView is what a renderer shows for (result, loading). Empty is true
// when nothing should be drawn at all.
type ResultView struct {
	Loading   bool
	Empty     bool
	Answer    string
	Citations []Citation
}

// BuildResultView maps a result to its presentation. Citations keep the
// order and duplicates of result.Sources.
func BuildResultView(result *grounding.SearchResult, loading bool) ResultView {
	if loading {
		return ResultView{Loading: true}
	}
	if result == nil {
		return ResultView{Empty: true}
	}

	view := ResultView{
		Answer:    result.Text,
		Citations: make([]Citation, 0, len(result.Sources)),
	}
	for _, src := range result.Sources {
		view.Citations = append(view.Citations, NewCitation(src))
	}
	return view
}

func NewCitation(src grounding.Source) Citation {
	title := strings.TrimSpace(src.Title)
	uri := strings.TrimSpace(src.URI)

	c := Citation{Label: title}
	if c.Label == "" {
		c.Label = uri
	}
	if c.Label == "" {
		c.Label = UntitledSource
	}
	if isWebURL(uri) {
		c.Href = uri
		c.Linked = true
	}
	return c
}

func isWebURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
