// Package cli implements the ladderctl commands on top of the ladder service.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	pricingapp "github.com/erp/ladderprice/internal/application/pricing"
	"github.com/google/uuid"
)

// Runner executes ladderctl commands and writes their results to Out
type Runner struct {
	svc  *pricingapp.LadderService
	in   io.Reader
	out  io.Writer
	json bool
}

// NewRunner creates a Runner. With asJSON set every result is written as indented JSON.
func NewRunner(svc *pricingapp.LadderService, in io.Reader, out io.Writer, asJSON bool) *Runner {
	return &Runner{svc: svc, in: in, out: out, json: asJSON}
}

// Parse previews vendor text: parsed slabs, repairs, dropped segments and the display string
func (r *Runner) Parse(ctx context.Context, text string) error {
	resp, err := r.svc.PreviewVendorText(ctx, pricingapp.ImportVendorTextRequest{Text: text})
	if err != nil {
		return err
	}
	if r.json {
		if err := r.writeJSON(resp); err != nil {
			return err
		}
	} else {
		renderPreview(r.out, resp, r.svc.Symbol())
	}
	if !resp.Valid {
		return &reportedError{err: resp.Error}
	}
	return nil
}

// Validate reads a SetLadderRequest from In and checks it without storing it
func (r *Runner) Validate(ctx context.Context) error {
	req, err := r.readLadderRequest()
	if err != nil {
		return err
	}
	resp, err := r.svc.CheckLadder(ctx, req)
	if err != nil {
		return err
	}
	if r.json {
		return r.writeJSON(resp)
	}
	renderRanges(r.out, resp.Ranges, r.svc.Symbol())
	fmt.Fprintf(r.out, "display: %s\n", resp.Display)
	return nil
}

// Set reads a SetLadderRequest from In and stores it as the product's ladder
func (r *Runner) Set(ctx context.Context, tenantID, productID uuid.UUID) error {
	req, err := r.readLadderRequest()
	if err != nil {
		return err
	}
	resp, err := r.svc.SetLadder(ctx, tenantID, productID, req)
	if err != nil {
		return err
	}
	return r.writeLadder(resp)
}

// Import parses vendor text and stores it as the product's ladder
func (r *Runner) Import(ctx context.Context, tenantID, productID uuid.UUID, text, source string) error {
	resp, err := r.svc.ImportVendorText(ctx, tenantID, productID, pricingapp.ImportVendorTextRequest{
		Text:   text,
		Source: source,
	})
	if err != nil {
		return err
	}
	if r.json {
		return r.writeJSON(resp)
	}
	renderLadder(r.out, &resp.Ladder, r.svc.Symbol())
	fmt.Fprintf(r.out, "base price: %s%s\n", r.svc.Symbol(), resp.BasePrice.StringFixed(2))
	renderRepairs(r.out, resp.Repairs)
	renderDropped(r.out, resp.Dropped)
	return nil
}

// Show prints the product's stored ladder
func (r *Runner) Show(ctx context.Context, tenantID, productID uuid.UUID) error {
	resp, err := r.svc.GetLadder(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	return r.writeLadder(resp)
}

// Quote prices quantity against the product's stored ladder
func (r *Runner) Quote(ctx context.Context, tenantID, productID uuid.UUID, quantity int64) error {
	resp, err := r.svc.Quote(ctx, tenantID, productID, pricingapp.QuoteRequest{Quantity: quantity})
	if err != nil {
		return err
	}
	if r.json {
		return r.writeJSON(resp)
	}
	sym := r.svc.Symbol()
	fmt.Fprintf(r.out, "quantity: %d\n", resp.Quantity)
	fmt.Fprintf(r.out, "range: %s\n", resp.Range.Label)
	fmt.Fprintf(r.out, "unit price: %s\n", resp.UnitPrice.DisplayWith(sym))
	fmt.Fprintf(r.out, "total: %s\n", resp.Total.DisplayWith(sym))
	return nil
}

// WriteError writes err in the current output mode
func (r *Runner) WriteError(w io.Writer, err error) {
	var rep *reportedError
	if errors.As(err, &rep) {
		return
	}
	resp := ToErrorResponse(err)
	if r.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(resp)
		return
	}
	fmt.Fprintf(w, "error: %s: %s\n", resp.Code, resp.Message)
}

func (r *Runner) readLadderRequest() (pricingapp.SetLadderRequest, error) {
	var req pricingapp.SetLadderRequest
	data, err := io.ReadAll(r.in)
	if err != nil {
		return req, fmt.Errorf("failed to read ladder: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return req, usagef("expected a ladder as JSON on stdin")
	}

	// A bare array of ranges is accepted as well as {"ranges": [...]}
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal([]byte(trimmed), &req.Ranges)
	} else {
		err = json.Unmarshal([]byte(trimmed), &req)
	}
	if err != nil {
		return req, usagef("invalid ladder JSON: " + err.Error())
	}
	return req, nil
}

func (r *Runner) writeLadder(resp *pricingapp.LadderResponse) error {
	if r.json {
		return r.writeJSON(resp)
	}
	renderLadder(r.out, resp, r.svc.Symbol())
	return nil
}

func (r *Runner) writeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
