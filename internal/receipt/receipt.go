// Package receipt renders printable sale documents.
package receipt

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"go-jewelry-pos/internal/config"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/pkg/money"
)

//go:embed templates/*.html
var templateFS embed.FS

// Kind selects the document layout.
type Kind string

const (
	// KindReceipt is the narrow thermal printer struk.
	KindReceipt Kind = "receipt"
	// KindInvoice is the A5 nota with weights and purities.
	KindInvoice Kind = "invoice"
)

func (k Kind) Valid() bool {
	return k == KindReceipt || k == KindInvoice
}

type Renderer struct {
	shop config.ShopConfig
	loc  *time.Location
	tmpl *template.Template
}

type document struct {
	Shop      config.ShopConfig
	Sale      *model.Sale
	Paid      int64
	PrintedAt time.Time
}

func NewRenderer(shop config.ShopConfig, loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.UTC
	}
	funcs := template.FuncMap{
		"rupiah": money.Rupiah,
		"grams":  money.Grams,
		"day": func(t time.Time) string {
			return t.Format("02/01/2006")
		},
		"clock": func(t time.Time) string {
			return t.In(loc).Format("02/01/2006 15:04")
		},
	}
	tmpl, err := template.New("documents").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse document templates: %w", err)
	}
	return &Renderer{shop: shop, loc: loc, tmpl: tmpl}, nil
}

// Render writes the kind document of sale to w.
func (r *Renderer) Render(w io.Writer, kind Kind, sale *model.Sale, printedAt time.Time) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown document kind %q", kind)
	}
	var paid int64
	for _, p := range sale.Payments {
		paid += p.Amount
	}
	doc := document{Shop: r.shop, Sale: sale, Paid: paid, PrintedAt: printedAt}
	return r.tmpl.ExecuteTemplate(w, string(kind)+".html", doc)
}
