// Package render maps records and messages to structured view descriptions,
// keeping markup concerns out of the data layer so views are testable
// without a terminal.
package render

import (
	"regexp"
	"strings"
)

// BlockKind discriminates the block-level nodes of a formatted answer.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockCode
	BlockListItem
)

// SpanKind discriminates inline nodes.
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanBold
	SpanItalic
	SpanCode
)

// Span is one inline run of text with a single style.
type Span struct {
	Kind SpanKind
	Text string
}

// Block is one block-level node of a formatted answer.
type Block struct {
	Kind    BlockKind
	Level   int    // heading level, 1-6
	Ordered bool   // list item ordering
	Marker  string // list marker as written, e.g. "1." or "•"
	Code    string // raw contents for BlockCode
	Spans   []Span
}

// FormatAnswer parses assistant markdown-lite into blocks: bold, italic,
// inline code, fenced code blocks, headings, numbered and bulleted lists,
// and blank-line paragraph breaks. Anything unrecognized stays literal.
func FormatAnswer(text string) []Block {
	var blocks []Block
	var paragraph []string

	flush := func() {
		if len(paragraph) == 0 {
			return
		}
		joined := strings.Join(paragraph, "\n")
		paragraph = nil
		if strings.TrimSpace(joined) == "" {
			return
		}
		blocks = append(blocks, Block{Kind: BlockParagraph, Spans: parseInline(joined)})
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			flush()
			var code []string
			for i++; i < len(lines); i++ {
				if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
					break
				}
				code = append(code, lines[i])
			}
			blocks = append(blocks, Block{Kind: BlockCode, Code: strings.Join(code, "\n")})
			continue
		}
		if trimmed == "" {
			flush()
			continue
		}
		if level, rest, ok := headingLine(trimmed); ok {
			flush()
			blocks = append(blocks, Block{Kind: BlockHeading, Level: level, Spans: parseInline(rest)})
			continue
		}
		if marker, rest, ordered, ok := listLine(trimmed); ok {
			flush()
			blocks = append(blocks, Block{
				Kind:    BlockListItem,
				Ordered: ordered,
				Marker:  marker,
				Spans:   parseInline(rest),
			})
			continue
		}
		paragraph = append(paragraph, line)
	}
	flush()
	return blocks
}

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	numberRe  = regexp.MustCompile(`^(\d+\.)\s+(.*)$`)
	bulletRe  = regexp.MustCompile(`^([-•*])\s+(.*)$`)
	inlineRe  = regexp.MustCompile("(`[^`]+`)|(\\*\\*.+?\\*\\*)|(\\*[^*]+\\*)")
)

func headingLine(line string) (int, string, bool) {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	return len(m[1]), m[2], true
}

func listLine(line string) (marker, rest string, ordered, ok bool) {
	if m := numberRe.FindStringSubmatch(line); m != nil {
		return m[1], m[2], true, true
	}
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		return "•", m[2], false, true
	}
	return "", "", false, false
}

// parseInline splits a run of text into styled spans. Inline code binds
// tightest, then bold, then italic.
func parseInline(text string) []Span {
	var spans []Span
	for len(text) > 0 {
		loc := inlineRe.FindStringIndex(text)
		if loc == nil {
			spans = append(spans, Span{Kind: SpanText, Text: text})
			break
		}
		if loc[0] > 0 {
			spans = append(spans, Span{Kind: SpanText, Text: text[:loc[0]]})
		}
		match := text[loc[0]:loc[1]]
		switch {
		case strings.HasPrefix(match, "`"):
			spans = append(spans, Span{Kind: SpanCode, Text: strings.Trim(match, "`")})
		case strings.HasPrefix(match, "**"):
			spans = append(spans, Span{Kind: SpanBold, Text: strings.TrimSuffix(strings.TrimPrefix(match, "**"), "**")})
		default:
			spans = append(spans, Span{Kind: SpanItalic, Text: strings.Trim(match, "*")})
		}
		text = text[loc[1]:]
	}
	return spans
}

// Literal wraps user or system content as a single unstyled paragraph so no
// markup in it is ever interpreted.
func Literal(text string) []Block {
	return []Block{{Kind: BlockParagraph, Spans: []Span{{Kind: SpanText, Text: text}}}}
}
