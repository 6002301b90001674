package docimport

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/drillbook/drillbook/internal/bank"
)

func TestSniffKind(t *testing.T) {
	tests := []struct {
		file string
		want Kind
	}{
		{"bank.doc", KindRichText},
		{"bank.DOC", KindRichText},
		{"bank.docx", KindDocx},
		{"bank.html", KindHTML},
		{"bank.htm", KindHTML},
		{"bank.md", KindMarkdown},
		{"bank.txt", KindPlainText},
		{"bank", KindPlainText},
	}
	for _, tt := range tests {
		if got := SniffKind(tt.file); got != tt.want {
			t.Errorf("SniffKind(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestPlainTextBlocks(t *testing.T) {
	raw := []byte("三、判断题\n1、地球是平的。\n答案：错\n解析：地球是球体。\n")
	blocks, err := (&lineDetector{}).Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	wantKinds := []BlockKind{BlockHeading, BlockParagraph, BlockAnswerMarker, BlockAnalysisMarker}
	if len(blocks) != len(wantKinds) {
		t.Fatalf("got %d blocks, want %d", len(blocks), len(wantKinds))
	}
	for i, k := range wantKinds {
		if blocks[i].Kind != k {
			t.Errorf("block %d kind = %q, want %q", i, blocks[i].Kind, k)
		}
	}
	if blocks[0].TypeHint != bank.TypeTrueFalse {
		t.Errorf("heading hint = %q, want true-false", blocks[0].TypeHint)
	}
	if blocks[2].Text != "错" {
		t.Errorf("answer marker text = %q, want 错", blocks[2].Text)
	}
}

func TestMatchQuestionNumber(t *testing.T) {
	for _, no := range []string{"3.14 is pi", "v2.0 notes", "just text", "A. option"} {
		if got := matchQuestionNumber(no); got != "" {
			t.Errorf("matchQuestionNumber(%q) = %q, want no match", no, got)
		}
	}
	tests := []struct {
		line string
		want string
	}{
		{"1、x", "1、"},
		{"12. x", "12. "},
		{"3) x", "3) "},
		{"4）x", "4）"},
		{"5．x", "5．"},
		{"  7.x", "  7."},
	}
	for _, tt := range tests {
		if got := matchQuestionNumber(tt.line); got != tt.want {
			t.Errorf("matchQuestionNumber(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestDecimalStemDoesNotSplitUnits(t *testing.T) {
	raw := []byte("1、圆周率的近似值是多少？\n3.14 还是 3.15？\n答案：3.14\n")
	blocks, err := (&lineDetector{}).Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	units := Segment(blocks)
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	if want := "圆周率的近似值是多少？ 3.14 还是 3.15？"; units[0].Stem != want {
		t.Errorf("stem = %q, want %q", units[0].Stem, want)
	}
	if units[0].Answer != "3.14" {
		t.Errorf("answer = %q, want 3.14", units[0].Answer)
	}
}

func TestNumberedSectionPhraseStaysQuestion(t *testing.T) {
	raw := []byte("3、判断题的特点是？\n答案：二选一\n")
	blocks, err := (&lineDetector{}).Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if blocks[0].Kind != BlockParagraph {
		t.Fatalf("block 0 kind = %q, want paragraph", blocks[0].Kind)
	}
	units := Segment(blocks)
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	if units[0].Stem != "判断题的特点是？" {
		t.Errorf("stem = %q, want 判断题的特点是？", units[0].Stem)
	}
	if units[0].Hint != "" {
		t.Errorf("hint = %q, want none", units[0].Hint)
	}
}

func TestMarkdownBoldSpans(t *testing.T) {
	raw := []byte("# 单选题\n1. Pick the fruit\n- **apple**\n- banana\n")
	blocks, err := (&lineDetector{markdown: true}).Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(blocks))
	}
	if blocks[0].Kind != BlockHeading || blocks[0].TypeHint != bank.TypeSingleChoice {
		t.Errorf("heading = %+v, want single-choice hint", blocks[0])
	}
	apple := blocks[2]
	if apple.Text != "apple" {
		t.Errorf("bold item text = %q, want %q", apple.Text, "apple")
	}
	if len(apple.Spans) != 1 || !apple.Spans[0].Bold {
		t.Fatalf("spans = %+v, want one bold span", apple.Spans)
	}
	if apple.Spans[0].Start != 0 || apple.Spans[0].End != len("apple") {
		t.Errorf("span range = [%d,%d), want [0,%d)", apple.Spans[0].Start, apple.Spans[0].End, len("apple"))
	}
	if len(blocks[3].Spans) != 0 {
		t.Errorf("plain item has %d spans, want 0", len(blocks[3].Spans))
	}
}

func TestHTMLBlocks(t *testing.T) {
	raw := []byte(`<html><body>
		<p>1、1+1=?</p>
		<ul><li>A. 1</li><li><b>B. 2</b></li><li>C. 3</li></ul>
		<p>答案：B</p>
	</body></html>`)
	blocks, err := (&htmlDetector{}).Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 5 {
		t.Fatalf("got %d blocks, want 5", len(blocks))
	}
	if blocks[0].Kind != BlockParagraph {
		t.Errorf("block 0 kind = %q, want paragraph", blocks[0].Kind)
	}
	bold := blocks[2]
	if bold.Kind != BlockListItem || len(bold.Spans) != 1 || !bold.Spans[0].Bold {
		t.Errorf("bold option block = %+v, want list-item with bold span", bold)
	}
	if blocks[4].Kind != BlockAnswerMarker || blocks[4].Text != "B" {
		t.Errorf("answer block = %+v, want answer-marker B", blocks[4])
	}
}

func TestHTMLColorSpan(t *testing.T) {
	raw := []byte(`<p><span style="color: red">marked</span> rest</p>`)
	blocks, err := (&htmlDetector{}).Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 1 || len(blocks[0].Spans) != 1 {
		t.Fatalf("blocks = %+v, want one block with one span", blocks)
	}
	if blocks[0].Spans[0].Color != "red" {
		t.Errorf("color = %q, want red", blocks[0].Spans[0].Color)
	}
}

// buildDocx wraps a document.xml payload in a minimal OOXML container.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document part: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write document part: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestDocxBlocks(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>一、单选题</w:t></w:r></w:p>
    <w:p><w:r><w:t>1、1+1=?</w:t></w:r></w:p>
    <w:p><w:r><w:t>A. 1</w:t></w:r></w:p>
    <w:p><w:r><w:rPr><w:b/></w:rPr><w:t>B. 2</w:t></w:r></w:p>
    <w:p><w:r><w:rPr><w:color w:val="FF0000"/></w:rPr><w:t>C. 3</w:t></w:r></w:p>
    <w:p><w:r><w:t></w:t></w:r></w:p>
  </w:body>
</w:document>`
	blocks, err := (&docxDetector{}).Parse(buildDocx(t, doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	wantKinds := []BlockKind{BlockHeading, BlockParagraph, BlockListItem, BlockListItem, BlockListItem}
	if len(blocks) != len(wantKinds) {
		t.Fatalf("got %d blocks, want %d", len(blocks), len(wantKinds))
	}
	for i, k := range wantKinds {
		if blocks[i].Kind != k {
			t.Errorf("block %d kind = %q, want %q", i, blocks[i].Kind, k)
		}
	}
	if blocks[0].TypeHint != bank.TypeSingleChoice {
		t.Errorf("heading hint = %q, want single-choice", blocks[0].TypeHint)
	}
	bold := blocks[3]
	if len(bold.Spans) != 1 || !bold.Spans[0].Bold {
		t.Fatalf("bold option spans = %+v, want one bold span", bold.Spans)
	}
	if bold.Spans[0].Start != 0 || bold.Spans[0].End != len("B. 2") {
		t.Errorf("span range = [%d,%d), want [0,%d)", bold.Spans[0].Start, bold.Spans[0].End, len("B. 2"))
	}
	if red := blocks[4]; len(red.Spans) != 1 || red.Spans[0].Color != "#ff0000" {
		t.Errorf("color spans = %+v, want #ff0000", red.Spans)
	}
}

func TestDocxBoldOffNotEmphasis(t *testing.T) {
	doc := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:rPr><w:b w:val="false"/></w:rPr><w:t>plain run</w:t></w:r></w:p>
  </w:body>
</w:document>`
	blocks, err := (&docxDetector{}).Parse(buildDocx(t, doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 1 || len(blocks[0].Spans) != 0 {
		t.Errorf("blocks = %+v, want one span-free block", blocks)
	}
}

func TestDocxWithoutDocumentPartIsUnrecognized(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("other.txt")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte("nothing here")); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if _, err := (&docxDetector{}).Parse(buf.Bytes()); !errors.Is(err, ErrUnrecognizedFormat) {
		t.Errorf("Parse() error = %v, want ErrUnrecognizedFormat", err)
	}
}

func TestDocxGarbageIsUnrecognized(t *testing.T) {
	if _, err := (&docxDetector{}).Parse([]byte("PK not really a zip")); !errors.Is(err, ErrUnrecognizedFormat) {
		t.Errorf("Parse() error = %v, want ErrUnrecognizedFormat", err)
	}
}

func TestRichTextDelegatesToHTML(t *testing.T) {
	raw := []byte("\xd0\xcf\x11junk<html><body><p>1、stem?</p><p>答案：yes</p></body></html>trailing")
	blocks, err := (&richTextDetector{}).Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
}

func TestRichTextWithoutFragmentIsUnrecognized(t *testing.T) {
	_, err := (&richTextDetector{}).Parse([]byte{0xd0, 0xcf, 0x11, 0xe0, 0x00, 0x01})
	if !errors.Is(err, ErrUnrecognizedFormat) {
		t.Errorf("Parse() error = %v, want ErrUnrecognizedFormat", err)
	}
}
