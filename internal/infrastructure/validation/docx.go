package validation

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

type docxShape struct {
	paragraphs int
	headings   int
	hasProps   bool
}

// validateDocx inspects a .docx archive: at least one non-empty paragraph is
// required; a missing heading-styled paragraph is a warning only. With link
// checks enabled the absence of document properties is noted, never fatal.
func (v *Validator) validateDocx(path string) domain.ValidationReport {
	rep := domain.ValidationReport{Valid: true, Checked: true}

	shape, err := inspectDocx(path)
	if err != nil {
		rep.Valid = false
		rep.Errors = append(rep.Errors, fmt.Sprintf("cannot inspect docx: %v", err))
		return rep
	}

	if shape.paragraphs == 0 {
		rep.Valid = false
		rep.Errors = append(rep.Errors, "docx has no paragraphs")
		return rep
	}
	if shape.headings == 0 {
		rep.Warnings = append(rep.Warnings, "docx has no heading-styled paragraphs")
	}
	if v.opts.CheckLinks && !shape.hasProps {
		rep.Warnings = append(rep.Warnings, "docx has no document properties")
	}
	return rep
}

// inspectDocx reads word/document.xml from the ZIP archive and counts
// non-empty paragraphs and heading-styled paragraphs.
func inspectDocx(path string) (docxShape, error) {
	var shape docxShape

	r, err := zip.OpenReader(path)
	if err != nil {
		return shape, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		switch f.Name {
		case "word/document.xml":
			docFile = f
		case "docProps/core.xml":
			shape.hasProps = true
		}
	}
	if docFile == nil {
		return shape, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return shape, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var inParagraph bool
	var paragraphStyle string
	var text strings.Builder

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "p":
				inParagraph = true
				paragraphStyle = ""
				text.Reset()
			case t.Name.Local == "pStyle" && inParagraph:
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						paragraphStyle = attr.Value
					}
				}
			}

		case xml.CharData:
			if inParagraph {
				text.Write(t)
			}

		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				if strings.TrimSpace(text.String()) == "" {
					continue
				}
				shape.paragraphs++
				if isHeadingStyle(paragraphStyle) {
					shape.headings++
				}
			}
		}
	}

	return shape, nil
}

// isHeadingStyle recognizes heading-like paragraph style names across
// common locales ("Heading1", "Titre2", "Title", ...).
func isHeadingStyle(style string) bool {
	lower := strings.ToLower(style)
	if lower == "title" || lower == "subtitle" {
		return true
	}
	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
