package pandoc

import (
	"reflect"
	"testing"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

func TestRunnerSupports(t *testing.T) {
	r := NewRunner(Config{}, nil)

	if !r.Supports(domain.FormatHTML, domain.FormatMarkdown) {
		t.Fatalf("expected html->markdown support")
	}
	if !r.Supports(domain.FormatMarkdown, domain.FormatDocx) {
		t.Fatalf("expected markdown->docx support")
	}
	if r.Supports(domain.FormatDocx, domain.FormatMarkdown) {
		t.Fatalf("did not expect docx->markdown support")
	}
	if r.Supports(domain.FormatPDF, domain.FormatPlain) {
		t.Fatalf("did not expect pdf->plain support")
	}
}

func TestCommandArgsMarkdownTargetReadsStdout(t *testing.T) {
	r := NewRunner(Config{}, nil)
	got := r.commandArgs(domain.ConvertRequest{
		SourcePath:   "/in/report.html",
		SourceFormat: domain.FormatHTML,
		TargetFormat: domain.FormatMarkdown,
		OutputPath:   "/out/report.md",
		Args:         []string{"--wrap=none"},
	})
	want := []string{"--from=html", "--to=markdown", "--wrap=none", "/in/report.html"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected argv:\n got %v\nwant %v", got, want)
	}
}

func TestCommandArgsDocxTargetWritesFile(t *testing.T) {
	r := NewRunner(Config{}, nil)
	got := r.commandArgs(domain.ConvertRequest{
		SourcePath:   "/in/notes.md",
		SourceFormat: domain.FormatMarkdown,
		TargetFormat: domain.FormatDocx,
		OutputPath:   "/out/notes.docx",
		Args:         []string{"--standalone"},
	})
	want := []string{"--from=markdown", "--to=docx", "--standalone", "-o", "/out/notes.docx", "/in/notes.md"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected argv:\n got %v\nwant %v", got, want)
	}
}

func TestStderrSummaryTakesFirstLine(t *testing.T) {
	if got := stderrSummary("\n  pandoc: bad input\nmore detail\n"); got != "pandoc: bad input" {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := stderrSummary("\n \n"); got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}
}

func TestPandocFormatNames(t *testing.T) {
	cases := map[domain.Format]string{
		domain.FormatMarkdown: "markdown",
		domain.FormatHTML:     "html",
		domain.FormatDocx:     "docx",
		domain.FormatPlain:    "plain",
		domain.Format("rst"):  "rst",
	}
	for f, want := range cases {
		if got := pandocFormat(f); got != want {
			t.Fatalf("pandocFormat(%q) = %q, want %q", f, got, want)
		}
	}
}
