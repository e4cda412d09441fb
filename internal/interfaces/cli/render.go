package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	pricingapp "github.com/erp/ladderprice/internal/application/pricing"
	"github.com/erp/ladderprice/internal/infrastructure/vendortext"
)

func renderRanges(w io.Writer, ranges []pricingapp.PriceRangeResponse, sym string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANGE\tUNIT PRICE")
	for _, r := range ranges {
		fmt.Fprintf(tw, "%s\t%s%s\n", r.Label, sym, r.UnitPrice.StringFixed(2))
	}
	_ = tw.Flush()
}

func renderLadder(w io.Writer, l *pricingapp.LadderResponse, sym string) {
	fmt.Fprintf(w, "tenant: %s\nproduct: %s\n", l.TenantID, l.ProductID)
	renderRanges(w, l.Ranges, sym)
	fmt.Fprintf(w, "display: %s\n", l.Display)
}

func renderPreview(w io.Writer, p *pricingapp.VendorPreviewResponse, sym string) {
	if len(p.Candidates) == 0 {
		fmt.Fprintln(w, "no price ranges recognized")
	} else {
		renderRanges(w, p.Candidates, sym)
	}
	if p.Valid {
		fmt.Fprintf(w, "display: %s\n", p.Display)
	} else if p.Error != nil {
		fmt.Fprintf(w, "invalid: %s: %s\n", p.Error.Code(), p.Error.Message)
	}
	fmt.Fprintf(w, "base price: %s%s\n", sym, p.BasePrice.StringFixed(2))
	renderRepairs(w, p.Repairs)
	renderDropped(w, p.Dropped)
}

func renderRepairs(w io.Writer, repairs []vendortext.Repair) {
	for _, r := range repairs {
		if r.From != nil {
			fmt.Fprintf(w, "repair: slab %d %s %d -> %d\n", r.SortOrder, r.Kind, *r.From, r.To)
		} else {
			fmt.Fprintf(w, "repair: slab %d %s -> %d\n", r.SortOrder, r.Kind, r.To)
		}
	}
}

func renderDropped(w io.Writer, dropped []vendortext.DroppedSegment) {
	for _, d := range dropped {
		fmt.Fprintf(w, "dropped: %q (%s)\n", d.Text, d.Reason)
	}
}
