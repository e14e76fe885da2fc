package render

import (
	"fmt"
	"strings"

	"github.com/mikeboe/research-assistant/pkg/grounding"
)

// TroubleshootingSteps is the plain-text form of the guide shown for
// configuration errors.
var TroubleshootingSteps = []string{
	"Make sure your environment file is named exactly .env (not .env.txt).",
	"Check that it contains a line like GEMINI_API_KEY=your-key with no quotes or spaces.",
	"Confirm the key is active in Google AI Studio.",
	"Restart the application so the new value is picked up.",
}

// PlainText renders a result as the answer followed by a numbered source
// list. A nil result renders as the empty string.
func PlainText(result *grounding.SearchResult) string {
	view := BuildResultView(result, false)
	if view.Empty {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(view.Answer)
	if len(view.Citations) > 0 {
		sb.WriteString("\n\nSources:")
		for i, c := range view.Citations {
			fmt.Fprintf(&sb, "\n%d. %s", i+1, CitationText(c))
		}
	}
	return sb.String()
}

// CitationText is the label of c, followed by its link when the label is not
// already the link.
func CitationText(c Citation) string {
	if c.Linked && c.Href != c.Label {
		return c.Label + " (" + c.Href + ")"
	}
	return c.Label
}
