package vendortext

import (
	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// ExtractFirstPrice returns the first price in raw: the first number following a
// "$", or failing that the first number of any kind. It returns zero when raw
// holds no number or the number does not parse.
func (p *Parser) ExtractFirstPrice(raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	tokens := p.tokenizer.Tokenize(Normalize(raw))

	var fallback *Token
	for i := range tokens {
		tok := tokens[i]
		if tok.Kind != TokenNumber {
			continue
		}
		if tok.Price {
			return parseOrZero(tok.Text)
		}
		if fallback == nil {
			fallback = &tokens[i]
		}
	}
	if fallback != nil {
		return parseOrZero(fallback.Text)
	}
	return decimal.Zero
}

var defaultParser = NewParser()

// Parse parses raw with the default price scale
func Parse(raw string) pricing.RangeSet {
	return defaultParser.Parse(raw)
}

// ExtractFirstPrice returns the first price in raw using the default parser
func ExtractFirstPrice(raw string) decimal.Decimal {
	return defaultParser.ExtractFirstPrice(raw)
}

func parseOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
