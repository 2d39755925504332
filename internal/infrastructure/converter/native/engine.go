package native

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

// Engine converts html to markdown in-process. It backs deployments where
// the pandoc binary is absent; only the html to markdown pair is supported.
type Engine struct {
	conv *converter.Converter
	log  *slog.Logger
}

func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		log: log,
	}
}

func (e *Engine) Name() string { return "native" }

func (e *Engine) Supports(source, target domain.Format) bool {
	return source == domain.FormatHTML && target == domain.FormatMarkdown
}

func (e *Engine) Convert(ctx context.Context, req domain.ConvertRequest) (domain.ConvertResult, error) {
	operation := fmt.Sprintf("native %s->%s", req.SourceFormat, req.TargetFormat)

	if !e.Supports(req.SourceFormat, req.TargetFormat) {
		return domain.ConvertResult{}, domain.WrapError(domain.ErrUnsupportedConversion, operation,
			fmt.Errorf("pair not handled by the in-process engine"))
	}

	raw, err := os.ReadFile(req.SourcePath)
	if err != nil {
		return domain.ConvertResult{}, domain.WrapError(domain.ErrConverterFailure, operation, err)
	}

	markdown, err := e.conv.ConvertString(string(raw))
	if err != nil {
		return domain.ConvertResult{}, domain.WrapError(domain.ErrConverterFailure, operation, err)
	}

	e.log.DebugContext(ctx, "native_convert", "source", req.SourcePath, "bytes_in", len(raw), "bytes_out", len(markdown))
	return domain.ConvertResult{Content: strings.TrimSpace(markdown) + "\n"}, nil
}
