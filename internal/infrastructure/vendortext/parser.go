// Package vendortext turns loosely structured ladder-price text scraped from a
// marketplace listing into a candidate pricing.RangeSet.
//
// Input looks like "20 - 999 pieces$0.251000 - 9999 pieces$0.24>= 10000 pieces$0.23":
// slabs concatenated with no delimiter. Three slab shapes are recognized:
//
//	bounded:        N - M pieces $P
//	unbounded tail: >= N pieces $P
//	singleton:      N pieces $P
//
// Parsing is best effort and never fails. The result is NOT guaranteed to be a valid
// ladder and must go through pricing.Validate before it is trusted or persisted.
package vendortext

import (
	"sort"
	"strconv"

	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// DefaultPriceScale is the number of fractional digits a glued price keeps
const DefaultPriceScale = 2

// Shape is the grammar a slab matched
type Shape string

const (
	ShapeBounded   Shape = "bounded"
	ShapeUnbounded Shape = "unbounded"
	ShapeSingleton Shape = "singleton"
)

// Drop reasons
const (
	DropMissingPrice     = "missing_price"
	DropMalformedNumber  = "malformed_number"
	DropIncompleteSlab   = "incomplete_slab"
	DropUnexpectedFormat = "unexpected_token"
)

// Repair kinds
const (
	RepairFilledUpperBound  = "filled_upper_bound"
	RepairWidenedUpperBound = "widened_upper_bound"
)

// Segment is one slab recognized in the text
type Segment struct {
	Index int    `json:"index"`
	Shape Shape  `json:"shape"`
	Text  string `json:"text"`
}

// DroppedSegment is a piece of text that started a slab but could not be parsed
type DroppedSegment struct {
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Repair records a gap-repair change made to an upper bound so that a slab
// meets the next one. From is nil when the slab had no upper bound.
type Repair struct {
	SortOrder int    `json:"sort_order"`
	Kind      string `json:"kind"`
	From      *int64 `json:"from,omitempty"`
	To        int64  `json:"to"`
}

// Report describes what the parser saw and changed
type Report struct {
	Segments []Segment        `json:"segments"`
	Dropped  []DroppedSegment `json:"dropped,omitempty"`
	Repairs  []Repair         `json:"repairs,omitempty"`
}

// HasRepairs returns true if gap repair changed any slab
func (r Report) HasRepairs() bool {
	return len(r.Repairs) > 0
}

// Option configures a Parser
type Option func(*Parser)

// WithPriceScale sets how many fractional digits a price glued to the next slab keeps
func WithPriceScale(scale int) Option {
	return func(p *Parser) {
		if scale > 0 {
			p.scale = scale
		}
	}
}

// Parser parses vendor ladder-price text. A Parser is immutable and safe for
// concurrent use.
type Parser struct {
	scale     int
	tokenizer *Tokenizer
}

// NewParser creates a Parser
func NewParser(opts ...Option) *Parser {
	p := &Parser{scale: DefaultPriceScale}
	for _, opt := range opts {
		opt(p)
	}
	p.tokenizer = NewTokenizer(p.scale)
	return p
}

// Scale returns the configured price scale
func (p *Parser) Scale() int {
	return p.scale
}

// Parse returns the best-effort candidate ladder in raw. Empty input yields an
// empty set.
func (p *Parser) Parse(raw string) pricing.RangeSet {
	rs, _ := p.ParseWithReport(raw)
	return rs
}

// ParseWithReport is Parse plus a report of recognized and dropped segments and
// of every gap repair applied. The returned ranges are identical to Parse.
func (p *Parser) ParseWithReport(raw string) (pricing.RangeSet, Report) {
	report := Report{Segments: []Segment{}}
	if raw == "" {
		return pricing.RangeSet{}, report
	}

	text := Normalize(raw)
	tokens := p.tokenizer.Tokenize(text)

	m := &machine{text: text}
	for i := 0; i < len(tokens); {
		if m.step(tokens[i]) {
			i++
		}
	}
	m.finish()

	report.Segments = m.segments
	report.Dropped = m.dropped
	ranges, repairs := repairGaps(m.ranges)
	report.Repairs = repairs
	return ranges, report
}

type state int

const (
	stateStart state = iota
	stateGTE
	stateMin
	stateDash
	stateQuantity
	stateUnit
	stateDollar
)

// machine walks tokens through the three slab grammars
type machine struct {
	text string

	state     state
	start     int
	minText   string
	maxText   string
	unbounded bool

	ranges   pricing.RangeSet
	segments []Segment
	dropped  []DroppedSegment
}

// step consumes tok and reports whether it was consumed. A token that does not
// fit the current slab ends that slab as dropped and is offered again from the
// start state, since it may open the next slab.
func (m *machine) step(tok Token) bool {
	switch m.state {
	case stateStart:
		switch tok.Kind {
		case TokenGTE:
			m.begin(tok, stateGTE)
			m.unbounded = true
		case TokenNumber:
			if tok.Price {
				// orphan price with no quantity before it
				return true
			}
			m.begin(tok, stateMin)
			m.minText = tok.Text
		}
		return true

	case stateGTE:
		if tok.Kind == TokenNumber && !tok.Price {
			m.minText = tok.Text
			m.state = stateQuantity
			return true
		}

	case stateMin:
		switch tok.Kind {
		case TokenDash:
			m.state = stateDash
			return true
		case TokenUnit:
			m.state = stateUnit
			return true
		}

	case stateDash:
		if tok.Kind == TokenNumber && !tok.Price {
			m.maxText = tok.Text
			m.state = stateQuantity
			return true
		}

	case stateQuantity:
		if tok.Kind == TokenUnit {
			m.state = stateUnit
			return true
		}

	case stateUnit:
		switch tok.Kind {
		case TokenDollar:
			m.state = stateDollar
			return true
		case TokenOther:
			// noise between unit and price, e.g. "pieces: $5" or "pcs US$5"
			return true
		}
		m.drop(tok.Start, DropMissingPrice)
		return false

	case stateDollar:
		if tok.Kind == TokenNumber {
			m.emit(tok)
			return true
		}
		m.drop(tok.Start, DropMissingPrice)
		return false
	}

	m.drop(tok.Start, DropUnexpectedFormat)
	return false
}

func (m *machine) begin(tok Token, next state) {
	m.state = next
	m.start = tok.Start
	m.minText = ""
	m.maxText = ""
	m.unbounded = false
}

func (m *machine) reset() {
	m.state = stateStart
	m.minText = ""
	m.maxText = ""
	m.unbounded = false
}

func (m *machine) drop(end int, reason string) {
	m.dropped = append(m.dropped, DroppedSegment{
		Text:   trimSpace(m.text[m.start:end]),
		Reason: reason,
	})
	m.reset()
}

func (m *machine) finish() {
	switch m.state {
	case stateStart:
	case stateUnit, stateDollar:
		m.drop(len(m.text), DropMissingPrice)
	default:
		m.drop(len(m.text), DropIncompleteSlab)
	}
}

// emit converts the current slab into a PriceRange. Malformed numbers drop it.
func (m *machine) emit(priceTok Token) {
	text := trimSpace(m.text[m.start:priceTok.End])
	shape := ShapeSingleton
	switch {
	case m.unbounded:
		shape = ShapeUnbounded
	case m.maxText != "":
		shape = ShapeBounded
	}

	unitPrice, err := decimal.NewFromString(priceTok.Text)
	if err != nil {
		m.drop(priceTok.End, DropMalformedNumber)
		return
	}
	minQty, ok := parseQuantity(m.minText)
	if !ok {
		m.drop(priceTok.End, DropMalformedNumber)
		return
	}

	index := len(m.segments)
	r := pricing.PriceRange{
		MinQuantity: minQty,
		UnitPrice:   unitPrice,
		SortOrder:   index,
	}
	if shape == ShapeBounded {
		maxQty, ok := parseQuantity(m.maxText)
		if !ok {
			m.drop(priceTok.End, DropMalformedNumber)
			return
		}
		r = r.WithMaxQuantity(maxQty)
	}

	m.segments = append(m.segments, Segment{Index: index, Shape: shape, Text: text})
	m.ranges = append(m.ranges, r)
	m.reset()
}

// parseQuantity accepts positive integers only
func parseQuantity(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// repairGaps sorts slabs by min quantity and stretches upper bounds so that every
// slab but the last ends right before the next one starts. Missing upper bounds
// (singletons, mid-list ">=") are filled; explicit bounds that leave a gap are
// widened, including bounds that fall below the slab's own start. Overlaps are
// left for Validate to reject.
func repairGaps(ranges pricing.RangeSet) (pricing.RangeSet, []Repair) {
	out := ranges.Clone()
	if out == nil {
		out = pricing.RangeSet{}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinQuantity < out[j].MinQuantity
	})

	var repairs []Repair
	for i := 0; i < len(out)-1; i++ {
		target := out[i+1].MinQuantity - 1
		current := out[i].MaxQuantity
		if target < out[i].MinQuantity {
			// duplicate or overlapping starts
			continue
		}
		switch {
		case current == nil:
			repairs = append(repairs, Repair{
				SortOrder: out[i].SortOrder,
				Kind:      RepairFilledUpperBound,
				To:        target,
			})
		case *current < target:
			from := *current
			repairs = append(repairs, Repair{
				SortOrder: out[i].SortOrder,
				Kind:      RepairWidenedUpperBound,
				From:      &from,
				To:        target,
			})
		default:
			continue
		}
		out[i] = out[i].WithMaxQuantity(target)
	}
	return out, repairs
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n' || s[start] == '\r') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}
