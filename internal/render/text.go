package render

import (
	"fmt"
	"strings"

	"github.com/edurag/tutorcli/internal/model"
)

// Text turns blocks into plain terminal output. Styling is typographic only
// so the result is safe for any terminal and for piping.
func Text(blocks []Block) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		switch block.Kind {
		case BlockHeading:
			title := spanText(block.Spans)
			b.WriteString(title)
			b.WriteString("\n")
			b.WriteString(strings.Repeat("-", len([]rune(title))))
			b.WriteString("\n")
		case BlockCode:
			for _, line := range strings.Split(block.Code, "\n") {
				b.WriteString("    ")
				b.WriteString(line)
				b.WriteString("\n")
			}
		case BlockListItem:
			b.WriteString("  ")
			b.WriteString(block.Marker)
			b.WriteString(" ")
			b.WriteString(spanText(block.Spans))
			b.WriteString("\n")
		default:
			b.WriteString(spanText(block.Spans))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func spanText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Kind == SpanCode {
			b.WriteString("`")
			b.WriteString(s.Text)
			b.WriteString("`")
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// MaterialLine renders one materials-list row.
func MaterialLine(row MaterialRow) string {
	return fmt.Sprintf("%s %s %s  %s | %s | %s  [%s]",
		row.Badge.Icon, row.Icon, row.Title, row.Subject, row.Grade, row.Uploaded, row.ID)
}

// Sources renders the citation list under an answer.
func Sources(sources []model.Source) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Sources:\n")
	for _, s := range sources {
		line := NewSourceLine(s)
		fmt.Fprintf(&b, "  - %s (%s | %s | Similarity: %s)\n",
			line.Title, line.Subject, line.Grade, line.Similarity)
	}
	return b.String()
}

// Answer renders a full transcript entry: formatted body plus citations and
// timing footer. Only assistant content goes through the formatter; user and
// system text stays literal so nothing in it is interpreted as markup.
func Answer(msg model.Message) string {
	blocks := Literal(msg.Content)
	if msg.Role == model.RoleAssistant {
		blocks = FormatAnswer(msg.Content)
	}
	var b strings.Builder
	b.WriteString(Text(blocks))
	if src := Sources(msg.Sources); src != "" {
		b.WriteString("\n")
		b.WriteString(src)
	}
	if msg.ResponseTimeMs > 0 {
		fmt.Fprintf(&b, "\n(%dms)\n", msg.ResponseTimeMs)
	}
	return b.String()
}
