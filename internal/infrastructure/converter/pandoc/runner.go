package pandoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"golang.org/x/time/rate"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

// Runner invokes the pandoc binary. Markdown targets are captured from
// stdout; docx targets are written by pandoc itself through -o. Every
// invocation goes through the rate limiter and the configured timeout.
type Runner struct {
	cfg     Config
	limiter *rate.Limiter
	log     *slog.Logger
}

func NewRunner(cfg Config, log *slog.Logger) *Runner {
	cfg = cfg.normalize()
	if log == nil {
		log = slog.Default()
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return &Runner{cfg: cfg, limiter: limiter, log: log}
}

// Available reports whether the named binary resolves on PATH.
func Available(binary string) bool {
	if binary == "" {
		binary = "pandoc"
	}
	_, err := exec.LookPath(binary)
	return err == nil
}

func (r *Runner) Name() string { return "pandoc" }

func (r *Runner) Supports(source, target domain.Format) bool {
	switch {
	case source == domain.FormatHTML && target == domain.FormatMarkdown:
		return true
	case source == domain.FormatMarkdown && target == domain.FormatDocx:
		return true
	default:
		return false
	}
}

func (r *Runner) Convert(ctx context.Context, req domain.ConvertRequest) (domain.ConvertResult, error) {
	operation := fmt.Sprintf("pandoc %s->%s", req.SourceFormat, req.TargetFormat)

	if err := r.limiter.Wait(ctx); err != nil {
		return domain.ConvertResult{}, domain.WrapError(domain.ErrConverterFailure, operation, err)
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	argv := r.commandArgs(req)
	cmd := exec.CommandContext(ctx, r.cfg.Binary, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.DebugContext(ctx, "pandoc_invoke", "binary", r.cfg.Binary, "args", argv)
	if err := cmd.Run(); err != nil {
		return domain.ConvertResult{}, r.wrapRunError(ctx, operation, err, stderr.String())
	}

	if writesFile(req.TargetFormat) {
		return domain.ConvertResult{WroteFile: true}, nil
	}
	return domain.ConvertResult{Content: stdout.String()}, nil
}

// commandArgs assembles the full argv: reader/writer selection, the
// engine-built options, the output flag for file-writing targets, and the
// source path last.
func (r *Runner) commandArgs(req domain.ConvertRequest) []string {
	argv := make([]string, 0, len(req.Args)+6)
	argv = append(argv, "--from="+pandocFormat(req.SourceFormat), "--to="+pandocFormat(req.TargetFormat))
	argv = append(argv, req.Args...)
	if req.OutputPath != "" && writesFile(req.TargetFormat) {
		argv = append(argv, "-o", req.OutputPath)
	}
	argv = append(argv, req.SourcePath)
	return argv
}

func (r *Runner) wrapRunError(ctx context.Context, operation string, err error, stderr string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s", r.cfg.Timeout)
	} else if detail := stderrSummary(stderr); detail != "" {
		err = fmt.Errorf("%w: %s", err, detail)
	}
	return domain.WrapError(domain.ErrConverterFailure, operation, err)
}

// stderrSummary keeps the first non-empty stderr line; pandoc puts the
// actionable message there.
func stderrSummary(stderr string) string {
	for _, line := range strings.Split(stderr, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func pandocFormat(f domain.Format) string {
	switch f {
	case domain.FormatMarkdown:
		return "markdown"
	case domain.FormatHTML:
		return "html"
	case domain.FormatDocx:
		return "docx"
	case domain.FormatPDF:
		return "pdf"
	case domain.FormatPlain:
		return "plain"
	default:
		return string(f)
	}
}

func writesFile(target domain.Format) bool {
	return target == domain.FormatDocx || target == domain.FormatPDF
}
