// Package templates holds the HTML fragments the API returns to HTMX clients.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/sheetmap/internal/core"
	"github.com/a-h/templ"
)

// ErrorAlert renders a dismissible error box with the user message, the
// suggested action and the support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="alert alert-error" role="alert"><p class="alert-message">%s</p>`,
			templ.EscapeString(message)); err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, `<p class="alert-action">%s</p>`, templ.EscapeString(action)); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `<p class="alert-code">%s</p></div>`, templ.EscapeString(code))
		return err
	})
}

// ImportPreview renders the summary of an import preview: record counts per
// sheet and the first fields that break their byte budget.
func ImportPreview(p *core.ImportPreview) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="preview"><h3>%s</h3><p class="preview-total">%d건</p><ul class="preview-sheets">`,
			templ.EscapeString(p.Sheet), p.TotalRecords); err != nil {
			return err
		}
		for _, s := range p.Sheets {
			if _, err := fmt.Fprintf(w, `<li>%s: %d건</li>`, templ.EscapeString(s.Name), s.Records); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</ul>`); err != nil {
			return err
		}

		if p.ErrorCount > 0 {
			if _, err := fmt.Fprintf(w, `<p class="preview-errors">글자수 초과 %d건</p><ul class="preview-error-list">`, p.ErrorCount); err != nil {
				return err
			}
			for _, e := range p.ErrorSamples {
				if _, err := fmt.Fprintf(w, `<li>%d행 %s: %d/%d byte</li>`,
					e.Row, templ.EscapeString(e.Field), e.Bytes, e.Max); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul>`); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
