package pandoc

import (
	"time"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

// Config holds the static pandoc invocation options shared by every
// conversion. ExtraHTMLToMarkdown/ExtraMarkdownToDocx are appended only for
// their format pair.
type Config struct {
	Binary              string
	WrapMode            string
	Standalone          bool
	HeadingStyle        string
	ReferenceLinks      bool
	ResourcePaths       []string
	ExtraHTMLToMarkdown []string
	ExtraMarkdownToDocx []string
	Timeout             time.Duration
	RatePerSecond       float64
}

func (c Config) normalize() Config {
	out := c
	if out.Binary == "" {
		out.Binary = "pandoc"
	}
	if out.WrapMode == "" {
		out.WrapMode = "none"
	}
	if out.HeadingStyle == "" {
		out.HeadingStyle = "atx"
	}
	if out.Timeout < 0 {
		out.Timeout = 0
	}
	return out
}

// ArgumentBuilder renders the pandoc argument list for a conversion pair.
// Build is a pure function of its inputs: no deduplication is performed and
// caller-supplied extras go last, so later flags win with pandoc's parser.
type ArgumentBuilder struct {
	cfg Config
}

func NewArgumentBuilder(cfg Config) *ArgumentBuilder {
	return &ArgumentBuilder{cfg: cfg.normalize()}
}

func (b *ArgumentBuilder) Build(source, target domain.Format, extra []string) []string {
	args := make([]string, 0, 8+len(extra))
	args = append(args, "--wrap="+b.cfg.WrapMode)
	if b.cfg.Standalone {
		args = append(args, "--standalone")
	}
	args = append(args, "--markdown-headings="+b.cfg.HeadingStyle)
	if b.cfg.ReferenceLinks {
		args = append(args, "--reference-links")
	}
	for _, p := range b.cfg.ResourcePaths {
		args = append(args, "--resource-path="+p)
	}

	switch {
	case source == domain.FormatHTML && target == domain.FormatMarkdown:
		args = append(args, b.cfg.ExtraHTMLToMarkdown...)
	case source == domain.FormatMarkdown && target == domain.FormatDocx:
		args = append(args, b.cfg.ExtraMarkdownToDocx...)
	}

	args = append(args, extra...)
	return args
}
