package validation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

// Options control which structural checks run. Available models the
// validator's parsing support being absent: when false, every check
// degrades to an unchecked pass so conversions are never blocked by a
// missing parser.
type Options struct {
	Available       bool
	VerifyStructure bool
	CheckLinks      bool
}

// Validator performs per-format structural checks on conversion inputs and
// outputs. It is read-only; reports carry errors and warnings separately.
type Validator struct {
	opts Options
	log  *slog.Logger
}

func NewValidator(opts Options, log *slog.Logger) *Validator {
	if log == nil {
		log = slog.Default()
	}
	return &Validator{opts: opts, log: log}
}

func (v *Validator) Available() bool {
	return v.opts.Available
}

// ValidateFile dispatches on format. Formats without a structural model
// pass with an empty report.
func (v *Validator) ValidateFile(ctx context.Context, path string, format domain.Format) domain.ValidationReport {
	if !v.opts.Available {
		v.log.DebugContext(ctx, "structure_validation_skipped", "path", path, "format", string(format))
		return domain.SkippedValidation()
	}

	switch format {
	case domain.FormatMarkdown, domain.FormatPlain:
		return v.validateTextFile(path, format)
	case domain.FormatHTML:
		content, err := os.ReadFile(path)
		if err != nil {
			return readFailure(path, err)
		}
		return v.validateHTMLInput(string(content))
	case domain.FormatDocx:
		return v.validateDocx(path)
	case domain.FormatPDF:
		return v.validatePDF(path)
	default:
		return domain.ValidationReport{Valid: true, Checked: true}
	}
}

func (v *Validator) validateTextFile(path string, format domain.Format) domain.ValidationReport {
	content, err := os.ReadFile(path)
	if err != nil {
		return readFailure(path, err)
	}
	return v.validateText(string(content), format)
}

// validateText checks markdown-like content: non-empty after trimming, and
// for non-trivial markdown a heading marker must be present when structure
// verification is on.
func (v *Validator) validateText(content string, format domain.Format) domain.ValidationReport {
	rep := domain.ValidationReport{Valid: true, Checked: true}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		rep.Valid = false
		rep.Errors = append(rep.Errors, "converted content is empty")
		return rep
	}
	if format == domain.FormatMarkdown && v.opts.VerifyStructure && len(trimmed) > 100 && !hasMarkdownHeading(trimmed) {
		rep.Valid = false
		rep.Errors = append(rep.Errors, "converted markdown has no headings")
	}
	return rep
}

func hasMarkdownHeading(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			return true
		}
	}
	return false
}

func readFailure(path string, err error) domain.ValidationReport {
	return domain.ValidationReport{
		Valid:   false,
		Checked: true,
		Errors:  []string{fmt.Sprintf("cannot read %s: %v", path, err)},
	}
}
