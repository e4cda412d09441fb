package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/erp/ladderprice/internal/domain/shared"
	"github.com/erp/ladderprice/internal/domain/shared/valueobject"
	"github.com/erp/ladderprice/internal/infrastructure/logger"
	"github.com/erp/ladderprice/internal/infrastructure/telemetry"
	"github.com/erp/ladderprice/internal/infrastructure/vendortext"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrLadderNotFound is returned when a product has no ladder pricing
var ErrLadderNotFound = shared.NewDomainError("LADDER_NOT_FOUND", "Product has no ladder pricing")

func ladderNotFound(productID uuid.UUID) error {
	return ErrLadderNotFound.WithMessage(fmt.Sprintf("Product %s has no ladder pricing", productID))
}

const serviceName = "ladder"

// Config holds the display settings of a LadderService
type Config struct {
	Currency valueobject.Currency
	// CurrencySymbol overrides Currency.Symbol() when set
	CurrencySymbol string
}

// LadderService handles ladder pricing operations: defining ladders, importing
// vendor text, and quoting quantities
type LadderService struct {
	repo     pricing.Repository
	parser   *vendortext.Parser
	metrics  *telemetry.PricingMetrics
	currency valueobject.Currency
	symbol   string
}

// NewLadderService creates a new LadderService.
// A nil parser uses the default vendor text parser; nil metrics use no-op instruments.
func NewLadderService(
	repo pricing.Repository,
	parser *vendortext.Parser,
	metrics *telemetry.PricingMetrics,
	cfg Config,
) *LadderService {
	if parser == nil {
		parser = vendortext.NewParser()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopPricingMetrics()
	}
	if cfg.Currency == "" {
		cfg.Currency = valueobject.DefaultCurrency
	}
	symbol := cfg.CurrencySymbol
	if symbol == "" {
		symbol = cfg.Currency.Symbol()
	}
	return &LadderService{
		repo:     repo,
		parser:   parser,
		metrics:  metrics,
		currency: cfg.Currency,
		symbol:   symbol,
	}
}

// SetLadder validates and stores a product's ladder, replacing any previous one
func (s *LadderService) SetLadder(ctx context.Context, tenantID, productID uuid.UUID, req SetLadderRequest) (*LadderResponse, error) {
	ctx, span := s.startSpan(ctx, "set", tenantID, productID)
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrRangeCount, len(req.Ranges))

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	rs, err := pricing.Validate(req.ToCandidates())
	if err != nil {
		s.rejected(ctx, span, tenantID, err)
		return nil, err
	}

	if err := s.repo.ReplaceRanges(ctx, tenantID, productID, rs); err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("failed to store ladder", zap.Error(err))
		return nil, err
	}

	logger.L(ctx).Info("ladder replaced",
		zap.Int("ranges", rs.Len()),
		zap.String("display", pricing.Format(rs, s.symbol)))
	telemetry.SetOK(span)

	return s.toLadderResponse(tenantID, productID, rs), nil
}

// CheckLadder validates a ladder definition without storing it
func (s *LadderService) CheckLadder(ctx context.Context, req SetLadderRequest) (*LadderCheckResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "check")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrRangeCount, len(req.Ranges))

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	rs, err := pricing.Validate(req.ToCandidates())
	if err != nil {
		s.rejected(ctx, span, uuid.Nil, err)
		return nil, err
	}

	telemetry.SetOK(span)
	return &LadderCheckResponse{
		Currency: string(s.currency),
		Ranges:   ToPriceRangeResponses(rs),
		Display:  pricing.Format(rs, s.symbol),
	}, nil
}

// GetLadder returns a product's stored ladder
func (s *LadderService) GetLadder(ctx context.Context, tenantID, productID uuid.UUID) (*LadderResponse, error) {
	ctx, span := s.startSpan(ctx, "get", tenantID, productID)
	defer span.End()

	rs, err := s.repo.LoadRanges(ctx, tenantID, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if rs.IsEmpty() {
		return nil, ladderNotFound(productID)
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrRangeCount, rs.Len())
	telemetry.SetOK(span)
	return s.toLadderResponse(tenantID, productID, rs), nil
}

// Quote prices a quantity against a product's stored ladder
func (s *LadderService) Quote(ctx context.Context, tenantID, productID uuid.UUID, req QuoteRequest) (*QuoteResponse, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "quote", tenantID, productID)
	defer span.End()

	outcome := telemetry.QuoteFailed
	defer func() {
		s.metrics.RecordQuote(ctx, tenantID, outcome, time.Since(start))
	}()

	telemetry.SetAttribute(span, telemetry.SpanAttrQuantity, req.Quantity)

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	rs, err := s.repo.LoadRanges(ctx, tenantID, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if rs.IsEmpty() {
		outcome = telemetry.QuoteNoLadder
		return nil, ladderNotFound(productID)
	}

	quote, err := pricing.QuoteFor(rs, req.Quantity)
	if err != nil {
		var notFound *pricing.PriceNotFoundError
		if errors.As(err, &notFound) {
			// A stored ladder always covers every positive quantity
			outcome = telemetry.QuoteNotFound
			logger.L(ctx).Error("stored ladder does not cover quantity",
				zap.Int64("quantity", req.Quantity),
				zap.String("ladder", pricing.Format(rs, s.symbol)))
			telemetry.SetAttribute(span, telemetry.SpanAttrErrorCode, notFound.Code())
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	outcome = telemetry.QuotePriced
	telemetry.SetAttribute(span, telemetry.SpanAttrUnitPrice, quote.UnitPrice.String())
	telemetry.SetOK(span)

	return &QuoteResponse{
		ProductID: productID,
		Quantity:  quote.Quantity,
		UnitPrice: valueobject.NewMoney(quote.UnitPrice, s.currency),
		Total:     valueobject.NewMoney(quote.Total, s.currency),
		Range:     ToPriceRangeResponse(quote.Range),
	}, nil
}

// PreviewVendorText parses and validates vendor text without storing anything.
// A validation failure is reported in the response, not as an error.
func (s *LadderService) PreviewVendorText(ctx context.Context, req ImportVendorTextRequest) (*VendorPreviewResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "preview_vendor_text")
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	candidates, report := s.parser.ParseWithReport(req.Text)
	s.traceReport(span, candidates, report)

	resp := &VendorPreviewResponse{
		Candidates: ToPriceRangeResponses(candidates),
		BasePrice:  s.parser.ExtractFirstPrice(req.Text),
		Segments:   report.Segments,
		Repairs:    report.Repairs,
		Dropped:    report.Dropped,
	}

	rs, err := pricing.Validate(candidates)
	if err != nil {
		var vErr *pricing.ValidationError
		if !errors.As(err, &vErr) {
			telemetry.RecordError(span, err)
			return nil, err
		}
		resp.Error = vErr
		telemetry.SetAttribute(span, telemetry.SpanAttrErrorCode, vErr.Code())
		logger.L(ctx).Debug("vendor text preview does not validate", zap.String("kind", vErr.Code()))
		return resp, nil
	}

	resp.Valid = true
	resp.Display = pricing.Format(rs, s.symbol)
	telemetry.SetOK(span)
	return resp, nil
}

// ImportVendorText parses vendor text, validates it, and stores it as the product's ladder.
// A *pricing.ValidationError is returned unchanged so the source text can be corrected.
func (s *LadderService) ImportVendorText(ctx context.Context, tenantID, productID uuid.UUID, req ImportVendorTextRequest) (*VendorImportResponse, error) {
	ctx, span := s.startSpan(ctx, "import_vendor_text", tenantID, productID)
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	log := logger.L(ctx)
	if req.Source != "" {
		log = log.With(zap.String("source", req.Source))
	}

	candidates, report := s.parser.ParseWithReport(req.Text)
	s.traceReport(span, candidates, report)

	for _, d := range report.Dropped {
		log.Debug("dropped vendor segment",
			zap.String("text", d.Text),
			zap.String("reason", d.Reason))
	}
	for _, r := range report.Repairs {
		fields := []zap.Field{
			zap.String("kind", r.Kind),
			zap.Int("sort_order", r.SortOrder),
			zap.Int64("to", r.To),
		}
		if r.From != nil {
			fields = append(fields, zap.Int64("from", *r.From))
		}
		log.Info("repaired vendor ladder gap", fields...)
	}

	rs, err := pricing.Validate(candidates)
	if err != nil {
		outcome := telemetry.ImportRejected
		if candidates.IsEmpty() {
			outcome = telemetry.ImportEmpty
		}
		s.metrics.RecordVendorImport(ctx, tenantID, outcome, len(report.Repairs), len(report.Dropped))
		s.rejected(ctx, span, tenantID, err)
		return nil, err
	}

	if err := s.repo.ReplaceRanges(ctx, tenantID, productID, rs); err != nil {
		telemetry.RecordError(span, err)
		log.Error("failed to store imported ladder", zap.Error(err))
		return nil, err
	}

	s.metrics.RecordVendorImport(ctx, tenantID, telemetry.ImportAccepted, len(report.Repairs), len(report.Dropped))
	log.Info("vendor ladder imported",
		zap.Int("ranges", rs.Len()),
		zap.Int("repairs", len(report.Repairs)),
		zap.Int("dropped", len(report.Dropped)))
	telemetry.SetOK(span)

	return &VendorImportResponse{
		Ladder:    *s.toLadderResponse(tenantID, productID, rs),
		BasePrice: s.parser.ExtractFirstPrice(req.Text),
		Repairs:   report.Repairs,
		Dropped:   report.Dropped,
	}, nil
}

// startSpan opens a service span and tags ctx with the tenant and product for logging
func (s *LadderService) startSpan(ctx context.Context, method string, tenantID, productID uuid.UUID) (context.Context, trace.Span) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, method)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrProductID, productID.String(),
	)
	ctx = logger.WithTenantID(ctx, tenantID.String())
	ctx = logger.WithProductID(ctx, productID.String())
	return ctx, span
}

// rejected records a validation failure on the span, in metrics and in the log
func (s *LadderService) rejected(ctx context.Context, span trace.Span, tenantID uuid.UUID, err error) {
	telemetry.RecordError(span, err)

	var vErr *pricing.ValidationError
	if !errors.As(err, &vErr) {
		return
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrErrorCode, vErr.Code())
	s.metrics.RecordValidationRejected(ctx, tenantID, vErr.Code())
	logger.L(ctx).Warn("ladder rejected",
		zap.String("kind", vErr.Code()),
		zap.Int("index", vErr.Index),
		zap.String("reason", vErr.Message))
}

func (s *LadderService) traceReport(span trace.Span, candidates pricing.RangeSet, report vendortext.Report) {
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRangeCount, candidates.Len(),
		telemetry.SpanAttrRepairs, len(report.Repairs),
		telemetry.SpanAttrDropped, len(report.Dropped),
	)
	for _, r := range report.Repairs {
		telemetry.AddEvent(span, "range_repaired",
			"sort_order", r.SortOrder,
			"kind", r.Kind,
			"to", r.To,
		)
	}
}

func (s *LadderService) toLadderResponse(tenantID, productID uuid.UUID, rs pricing.RangeSet) *LadderResponse {
	return &LadderResponse{
		TenantID:  tenantID,
		ProductID: productID,
		Currency:  string(s.currency),
		Ranges:    ToPriceRangeResponses(rs),
		Display:   pricing.Format(rs, s.symbol),
	}
}

// Symbol returns the currency symbol used for display strings
func (s *LadderService) Symbol() string {
	return s.symbol
}
