package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/mikeboe/research-assistant/pkg/grounding"
	"github.com/mikeboe/research-assistant/pkg/research"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PageData feeds the full page template.
type PageData struct {
	Snapshot   research.Snapshot
	Result     ResultView
	Model      string
	PollMillis int
}

// NewPageData derives the page from a snapshot. The result region follows the
// same (result, loading) contract as RenderResult. While loading the page
// polls /api/state every PollMillis and reloads once the search settles,
// carrying over any edits made to the task in the meantime.
func NewPageData(snap research.Snapshot, model string) PageData {
	return PageData{
		Snapshot:   snap,
		Result:     BuildResultView(snap.State.Result, snap.Loading()),
		Model:      model,
		PollMillis: 2000,
	}
}

// RenderResult writes the result region for (result, loading).
func RenderResult(w io.Writer, result *grounding.SearchResult, loading bool) error {
	if err := templates.ExecuteTemplate(w, "result", BuildResultView(result, loading)); err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	return nil
}

// RenderPage writes the whole single-page form.
func RenderPage(w io.Writer, data PageData) error {
	if err := templates.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
