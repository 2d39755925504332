package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Format identifies a document format handled by the pipeline.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatDocx     Format = "docx"
	FormatPDF      Format = "pdf"
	FormatPlain    Format = "plain"
)

// ExtensionOf returns the file extension without the leading dot.
func ExtensionOf(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// FormatForExtension maps a file extension (without dot) to its canonical
// format name. Matching is case-insensitive; unknown extensions pass
// through as-is so downstream converters may still recognize them.
func FormatForExtension(ext string) Format {
	switch strings.ToLower(ext) {
	case "md", "markdown":
		return FormatMarkdown
	case "html", "htm":
		return FormatHTML
	case "docx", "doc":
		return FormatDocx
	case "pdf":
		return FormatPDF
	case "txt":
		return FormatPlain
	default:
		return Format(ext)
	}
}

// FormatForPath infers the format from the path's extension.
func FormatForPath(path string) Format {
	return FormatForExtension(ExtensionOf(path))
}

// Extension returns the canonical file extension (without dot) used when
// deriving output paths for this format.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatHTML:
		return "html"
	case FormatDocx:
		return "docx"
	case FormatPDF:
		return "pdf"
	case FormatPlain:
		return "txt"
	default:
		return string(f)
	}
}

// FileDescriptor is the result of probing a file on disk.
type FileDescriptor struct {
	Path     string    `json:"path"`
	Format   Format    `json:"format"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ConversionPair is a source-to-target format pairing.
type ConversionPair struct {
	Source Format `json:"source"`
	Target Format `json:"target"`
}

func (p ConversionPair) String() string {
	return string(p.Source) + " -> " + string(p.Target)
}

// DefaultConversionPairs lists the pairings the engine accepts out of the
// box: html to markdown and markdown to docx.
func DefaultConversionPairs() []ConversionPair {
	return []ConversionPair{
		{Source: FormatHTML, Target: FormatMarkdown},
		{Source: FormatMarkdown, Target: FormatDocx},
	}
}
