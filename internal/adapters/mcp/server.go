package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/ports"
)

const (
	serverName    = "doc-converter"
	serverVersion = "0.1.0"
)

// Server exposes the conversion pipeline over the Model Context Protocol.
// Tools run synchronously in-process against the local filesystem; nothing
// is queued or persisted.
type Server struct {
	prober  ports.FileProber
	engine  ports.FileConverter
	batcher ports.BatchConverter
	files   ports.FileService
	log     *slog.Logger

	mcp *server.MCPServer
}

func New(
	prober ports.FileProber,
	engine ports.FileConverter,
	batcher ports.BatchConverter,
	files ports.FileService,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		prober:  prober,
		engine:  engine,
		batcher: batcher,
		files:   files,
		log:     log,
	}

	m := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	m.AddTool(probeFileTool(), s.handleProbeFile)
	m.AddTool(convertFileTool(), s.handleConvertFile)
	m.AddTool(convertDirectoryTool(), s.handleConvertDirectory)
	m.AddTool(supportedConversionsTool(), s.handleSupportedConversions)
	s.mcp = m
	return s
}

// Serve speaks the protocol over in/out until ctx is canceled or the peer
// closes the stream. Server-side errors go through the injected logger, so
// out stays pure protocol.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}

func probeFileTool() mcp.Tool {
	return mcp.NewTool("probe_file",
		mcp.WithDescription("Inspect a file on disk: size, modification time and detected document format."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the file to inspect."),
		),
		mcp.WithString("format_hint",
			mcp.Description("Treat the file as this format instead of inferring it from the extension (markdown, html, docx, pdf)."),
		),
	)
}

func convertFileTool() mcp.Tool {
	return mcp.NewTool("convert_file",
		mcp.WithDescription("Convert one document to another format. Returns a JSON outcome; success=false carries error and error_kind instead of raising."),
		mcp.WithString("source_path",
			mcp.Required(),
			mcp.Description("Path of the document to convert."),
		),
		mcp.WithString("target_format",
			mcp.Required(),
			mcp.Description("Format to convert to (markdown, docx)."),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the result. Defaults to the source path with the target format's extension."),
		),
		mcp.WithString("source_format",
			mcp.Description("Treat the source as this format instead of inferring it from the extension."),
		),
	)
}

func convertDirectoryTool() mcp.Tool {
	return mcp.NewTool("convert_directory",
		mcp.WithDescription("Convert every matching file in a directory. Returns a JSON batch outcome with per-file results."),
		mcp.WithString("source_dir",
			mcp.Required(),
			mcp.Description("Directory containing the documents to convert."),
		),
		mcp.WithString("target_format",
			mcp.Required(),
			mcp.Description("Format to convert to (markdown, docx)."),
		),
		mcp.WithString("pattern",
			mcp.Description("Glob filter on file names, for example *.html. Defaults to every file."),
		),
		mcp.WithBoolean("recursive",
			mcp.Description("Descend into subdirectories."),
		),
		mcp.WithString("output_dir",
			mcp.Description("Directory for converted files. Defaults to the source directory."),
		),
	)
}

func supportedConversionsTool() mcp.Tool {
	return mcp.NewTool("supported_conversions",
		mcp.WithDescription("List the source-to-target format pairings the converter accepts."),
	)
}

func (s *Server) handleProbeFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hint := domain.FormatForExtension(strings.TrimSpace(req.GetString("format_hint", "")))

	descriptor, err := s.prober.Probe(ctx, path, hint)
	if err != nil {
		s.log.WarnContext(ctx, "tool_probe_failed", "path", path, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(descriptor)
}

func (s *Server) handleConvertFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourcePath, err := req.RequireString("source_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := requireFormat(req, "target_format")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task := domain.ConversionTask{
		SourcePath:   sourcePath,
		SourceFormat: domain.FormatForExtension(strings.TrimSpace(req.GetString("source_format", ""))),
		TargetFormat: target,
		OutputPath:   strings.TrimSpace(req.GetString("output_path", "")),
	}
	if task.OutputPath == "" {
		task.OutputPath = siblingOutputPath(sourcePath, target)
	}

	s.log.InfoContext(ctx, "tool_convert_file",
		"source", task.SourcePath,
		"target_format", task.TargetFormat,
		"output", task.OutputPath,
	)
	outcome := s.engine.ConvertFile(ctx, task)
	if !outcome.Success {
		return errorResult(outcome)
	}
	return jsonResult(outcome)
}

func (s *Server) handleConvertDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceDir, err := req.RequireString("source_dir")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := requireFormat(req, "target_format")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pattern := strings.TrimSpace(req.GetString("pattern", ""))
	if pattern == "" {
		pattern = "*"
	}
	recursive := req.GetBool("recursive", false)
	outputDir := strings.TrimSpace(req.GetString("output_dir", ""))
	if outputDir == "" {
		outputDir = sourceDir
	}

	sources, err := s.files.FindFiles(ctx, sourceDir, pattern, recursive)
	if err != nil {
		s.log.WarnContext(ctx, "tool_discover_failed", "source_dir", sourceDir, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("list files in %s: %v", sourceDir, err)), nil
	}
	tasks := make([]domain.ConversionTask, 0, len(sources))
	for _, src := range sources {
		tasks = append(tasks, domain.ConversionTask{
			SourcePath:   src,
			TargetFormat: target,
		})
	}

	s.log.InfoContext(ctx, "tool_convert_directory",
		"source_dir", sourceDir,
		"pattern", pattern,
		"recursive", recursive,
		"tasks", len(tasks),
	)
	outcome := s.batcher.ConvertBatch(ctx, tasks, outputDir)
	if !outcome.Success() {
		return errorResult(outcome)
	}
	return jsonResult(outcome)
}

func (s *Server) handleSupportedConversions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(domain.DefaultConversionPairs())
}

func requireFormat(req mcp.CallToolRequest, key string) (domain.Format, error) {
	raw, err := req.RequireString(key)
	if err != nil {
		return "", err
	}
	format := domain.FormatForExtension(strings.TrimSpace(raw))
	if format == "" {
		return "", fmt.Errorf("%s must not be empty", key)
	}
	return format, nil
}

// siblingOutputPath places the output next to the source, swapping the
// extension for the target format's.
func siblingOutputPath(sourcePath string, target domain.Format) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(filepath.Dir(sourcePath), stem+"."+target.Extension())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult carries a failed outcome to the client as tool output flagged
// IsError, keeping the structured fields available to the caller.
func errorResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultError(string(data)), nil
}
