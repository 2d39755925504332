package validation

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

// validateHTMLInput checks html on the input side of a conversion. A
// body-equivalent marker is required; heading absence is only a warning.
// The body check runs on the raw text because the html5 parser synthesizes
// a <body> element for any input, including an empty document.
func (v *Validator) validateHTMLInput(content string) domain.ValidationReport {
	rep := domain.ValidationReport{Valid: true, Checked: true}

	if !strings.Contains(strings.ToLower(content), "<body") {
		if v.opts.VerifyStructure {
			rep.Valid = false
			rep.Errors = append(rep.Errors, "missing body tag")
		} else {
			rep.Warnings = append(rep.Warnings, "missing body tag")
		}
		return rep
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		rep.Valid = false
		rep.Errors = append(rep.Errors, fmt.Sprintf("parse html: %v", err))
		return rep
	}

	if doc.Find("h1,h2,h3,h4,h5,h6").Length() == 0 {
		rep.Warnings = append(rep.Warnings, "no heading tags found")
	}

	if v.opts.CheckLinks {
		empty := 0
		doc.Find("a").Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				empty++
			}
		})
		if empty > 0 {
			rep.Valid = false
			rep.Errors = append(rep.Errors, fmt.Sprintf("%d empty links found", empty))
		}
	}

	return rep
}
