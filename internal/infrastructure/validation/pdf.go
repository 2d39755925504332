package validation

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

// validatePDF requires a readable pdf with at least one page.
func (v *Validator) validatePDF(path string) domain.ValidationReport {
	rep := domain.ValidationReport{Valid: true, Checked: true}

	f, r, err := pdf.Open(path)
	if err != nil {
		rep.Valid = false
		rep.Errors = append(rep.Errors, fmt.Sprintf("cannot read pdf: %v", err))
		return rep
	}
	defer f.Close()

	if r.NumPage() < 1 {
		rep.Valid = false
		rep.Errors = append(rep.Errors, "pdf has no pages")
	}
	return rep
}
