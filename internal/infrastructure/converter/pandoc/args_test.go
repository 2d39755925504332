package pandoc

import (
	"reflect"
	"testing"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

func TestBuildIncludesBaseFlags(t *testing.T) {
	b := NewArgumentBuilder(Config{
		WrapMode:       "none",
		Standalone:     true,
		HeadingStyle:   "atx",
		ReferenceLinks: true,
		ResourcePaths:  []string{"/a", "/b"},
	})

	got := b.Build(domain.FormatHTML, domain.FormatMarkdown, nil)
	want := []string{
		"--wrap=none",
		"--standalone",
		"--markdown-headings=atx",
		"--reference-links",
		"--resource-path=/a",
		"--resource-path=/b",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", got, want)
	}
}

func TestBuildAppendsPairExtrasThenCallerExtras(t *testing.T) {
	b := NewArgumentBuilder(Config{
		WrapMode:            "none",
		HeadingStyle:        "atx",
		ExtraHTMLToMarkdown: []string{"--strip-comments"},
		ExtraMarkdownToDocx: []string{"--toc"},
	})

	got := b.Build(domain.FormatHTML, domain.FormatMarkdown, []string{"--columns=80"})
	want := []string{"--wrap=none", "--markdown-headings=atx", "--strip-comments", "--columns=80"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected html->md args:\n got %v\nwant %v", got, want)
	}

	got = b.Build(domain.FormatMarkdown, domain.FormatDocx, nil)
	want = []string{"--wrap=none", "--markdown-headings=atx", "--toc"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected md->docx args:\n got %v\nwant %v", got, want)
	}
}

func TestBuildDoesNotDeduplicate(t *testing.T) {
	b := NewArgumentBuilder(Config{
		WrapMode:            "none",
		HeadingStyle:        "atx",
		ExtraHTMLToMarkdown: []string{"--wrap=auto"},
	})

	got := b.Build(domain.FormatHTML, domain.FormatMarkdown, []string{"--wrap=preserve"})
	want := []string{"--wrap=none", "--markdown-headings=atx", "--wrap=auto", "--wrap=preserve"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected duplicates preserved in order, got %v", got)
	}
}

func TestBuildIsPure(t *testing.T) {
	b := NewArgumentBuilder(Config{
		WrapMode:      "none",
		HeadingStyle:  "atx",
		ResourcePaths: []string{"/r"},
	})

	first := b.Build(domain.FormatHTML, domain.FormatMarkdown, []string{"--quiet"})
	second := b.Build(domain.FormatHTML, domain.FormatMarkdown, []string{"--quiet"})
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical output for identical input:\n%v\n%v", first, second)
	}
}

func TestConfigNormalizeDefaults(t *testing.T) {
	cfg := Config{}.normalize()
	if cfg.Binary != "pandoc" {
		t.Fatalf("expected pandoc binary default, got %q", cfg.Binary)
	}
	if cfg.WrapMode != "none" || cfg.HeadingStyle != "atx" {
		t.Fatalf("unexpected defaults: wrap=%q headings=%q", cfg.WrapMode, cfg.HeadingStyle)
	}
}
