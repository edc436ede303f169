package render

import (
	"reflect"
	"testing"
)

func TestFormatAnswerInlineStyles(t *testing.T) {
	blocks := FormatAnswer("A **variable** is a *named* `slot`.")
	if len(blocks) != 1 || blocks[0].Kind != BlockParagraph {
		t.Fatalf("expected one paragraph, got %+v", blocks)
	}
	want := []Span{
		{SpanText, "A "},
		{SpanBold, "variable"},
		{SpanText, " is a "},
		{SpanItalic, "named"},
		{SpanText, " "},
		{SpanCode, "slot"},
		{SpanText, "."},
	}
	if !reflect.DeepEqual(blocks[0].Spans, want) {
		t.Fatalf("spans mismatch:\n got %+v\nwant %+v", blocks[0].Spans, want)
	}
}

func TestFormatAnswerFencedCode(t *testing.T) {
	blocks := FormatAnswer("Before\n```\nx = 1\ny = 2\n```\nAfter")
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %+v", len(blocks), blocks)
	}
	if blocks[1].Kind != BlockCode || blocks[1].Code != "x = 1\ny = 2" {
		t.Fatalf("bad code block: %+v", blocks[1])
	}
	if blocks[0].Kind != BlockParagraph || blocks[2].Kind != BlockParagraph {
		t.Fatalf("surrounding paragraphs lost: %+v", blocks)
	}
}

func TestFormatAnswerHeadingsAndLists(t *testing.T) {
	blocks := FormatAnswer("## Variables\n1. first\n2. second\n- loose\n• tight")
	if blocks[0].Kind != BlockHeading || blocks[0].Level != 2 {
		t.Fatalf("bad heading: %+v", blocks[0])
	}
	if blocks[1].Kind != BlockListItem || !blocks[1].Ordered || blocks[1].Marker != "1." {
		t.Fatalf("bad numbered item: %+v", blocks[1])
	}
	if blocks[3].Kind != BlockListItem || blocks[3].Ordered || blocks[3].Marker != "•" {
		t.Fatalf("bad bullet item: %+v", blocks[3])
	}
	if len(blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(blocks))
	}
}

func TestFormatAnswerParagraphBreaks(t *testing.T) {
	blocks := FormatAnswer("first line\nsame paragraph\n\nsecond paragraph")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %+v", len(blocks), blocks)
	}
	if got := spanText(blocks[0].Spans); got != "first line\nsame paragraph" {
		t.Fatalf("unexpected first paragraph: %q", got)
	}
}

func TestLiteralNeverInterpretsMarkup(t *testing.T) {
	blocks := Literal("**not bold** <script>alert(1)</script>")
	if len(blocks) != 1 || len(blocks[0].Spans) != 1 {
		t.Fatalf("expected a single literal span, got %+v", blocks)
	}
	span := blocks[0].Spans[0]
	if span.Kind != SpanText || span.Text != "**not bold** <script>alert(1)</script>" {
		t.Fatalf("literal content was altered: %+v", span)
	}
}

func TestTextRendering(t *testing.T) {
	out := Text(FormatAnswer("# Title\nbody with `code`\n\n```\nx\n```"))
	want := "Title\n-----\n\nbody with `code`\n\n    x\n"
	if out != want {
		t.Fatalf("unexpected text:\n got %q\nwant %q", out, want)
	}
}
