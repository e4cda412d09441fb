package vendortext

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// TokenKind identifies a lexical element of vendor ladder-price text
type TokenKind int

const (
	TokenNumber TokenKind = iota // digit run, optionally with thousands separators and a fraction
	TokenDollar                  // "$"
	TokenUnit                    // "pieces", "pcs", "sets", ...
	TokenGTE                     // ">=" or "≥"
	TokenDash                    // "-", "–", "~"
	TokenOther                   // anything else; treated as noise by the parser
)

// String returns the token kind name
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "number"
	case TokenDollar:
		return "dollar"
	case TokenUnit:
		return "unit"
	case TokenGTE:
		return "gte"
	case TokenDash:
		return "dash"
	default:
		return "other"
	}
}

// Token is a lexical element. Text holds the normalized value (thousands
// separators removed for numbers, lower-cased for units). Start and End are
// byte offsets into the normalized input.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
	// Price is set on numbers that directly follow a "$"
	Price bool
}

// unitWords are the quantity units recognized after a quantity
var unitWords = map[string]bool{
	"pieces": true,
	"piece":  true,
	"pcs":    true,
	"pc":     true,
	"units":  true,
	"unit":   true,
	"sets":   true,
	"set":    true,
	"pairs":  true,
	"pair":   true,
}

// Normalize folds full-width forms (common on Asian marketplaces) to their ASCII
// equivalents so "＄０．２５" lexes like "$0.25".
func Normalize(raw string) string {
	return width.Fold.String(raw)
}

// Tokenizer splits normalized vendor text into tokens.
//
// Vendor text concatenates slabs with no separator, so a price's fraction can run
// straight into the next slab's leading quantity ("$0.251000 - 9999 pieces"). When a
// price fraction is longer than scale digits and the digits after the first scale
// digits are followed by a dash or a unit word, the number is split there.
type Tokenizer struct {
	scale int
}

// NewTokenizer creates a tokenizer that splits glued prices after scale fractional digits
func NewTokenizer(scale int) *Tokenizer {
	if scale <= 0 {
		scale = DefaultPriceScale
	}
	return &Tokenizer{scale: scale}
}

// Tokenize lexes s, which should already be normalized
func (t *Tokenizer) Tokenize(s string) []Token {
	tokens := make([]Token, 0, 16)
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isDigit(r):
			afterDollar := len(tokens) > 0 && tokens[len(tokens)-1].Kind == TokenDollar
			tok := t.scanNumber(s, i, afterDollar)
			tokens = append(tokens, tok)
			i = tok.End
		case r == '$':
			tokens = append(tokens, Token{Kind: TokenDollar, Text: "$", Start: i, End: i + size})
			i += size
		case r == '≥':
			tokens = append(tokens, Token{Kind: TokenGTE, Text: ">=", Start: i, End: i + size})
			i += size
		case r == '>' && strings.HasPrefix(s[i+size:], "="):
			tokens = append(tokens, Token{Kind: TokenGTE, Text: ">=", Start: i, End: i + size + 1})
			i += size + 1
		case isDash(r):
			tokens = append(tokens, Token{Kind: TokenDash, Text: "-", Start: i, End: i + size})
			i += size
		case unicode.IsLetter(r):
			end := scanLetters(s, i)
			word := strings.ToLower(s[i:end])
			kind := TokenOther
			if unitWords[word] {
				kind = TokenUnit
			}
			tokens = append(tokens, Token{Kind: kind, Text: word, Start: i, End: end})
			i = end
		default:
			tokens = append(tokens, Token{Kind: TokenOther, Text: string(r), Start: i, End: i + size})
			i += size
		}
	}
	return tokens
}

// scanNumber reads a number starting at start. Prices (numbers after "$") may
// carry a fraction and are split when glued to the next slab.
func (t *Tokenizer) scanNumber(s string, start int, price bool) Token {
	intEnd := scanInteger(s, start)
	end := intEnd
	if end+1 < len(s) && s[end] == '.' && isDigitByte(s[end+1]) {
		fracStart := end + 1
		fracEnd := scanDigits(s, fracStart)
		end = fracEnd
		if price && fracEnd-fracStart > t.scale {
			split := fracStart + t.scale
			if startsNewSlab(s, split) {
				end = split
			}
		}
	}
	return Token{
		Kind:  TokenNumber,
		Text:  strings.ReplaceAll(s[start:end], ",", ""),
		Start: start,
		End:   end,
		Price: price,
	}
}

// startsNewSlab reports whether a quantity beginning at i is followed by a dash or
// a unit word, i.e. the digits at i open a bounded or singleton slab.
func startsNewSlab(s string, i int) bool {
	j := scanInteger(s, i)
	if j == i {
		return false
	}
	for j < len(s) {
		r, size := utf8.DecodeRuneInString(s[j:])
		if !unicode.IsSpace(r) {
			break
		}
		j += size
	}
	if j >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[j:])
	if isDash(r) {
		return true
	}
	if unicode.IsLetter(r) {
		return unitWords[strings.ToLower(s[j:scanLetters(s, j)])]
	}
	return false
}

// scanInteger reads digits with optional thousands separators ("1,000")
func scanInteger(s string, i int) int {
	end := scanDigits(s, i)
	for end < len(s) && s[end] == ',' && isThousandsGroup(s, end+1) {
		end = scanDigits(s, end+1)
	}
	return end
}

// isThousandsGroup reports whether exactly three digits start at i
func isThousandsGroup(s string, i int) bool {
	if i+3 > len(s) {
		return false
	}
	for k := i; k < i+3; k++ {
		if !isDigitByte(s[k]) {
			return false
		}
	}
	return i+3 == len(s) || !isDigitByte(s[i+3])
}

func scanDigits(s string, i int) int {
	for i < len(s) && isDigitByte(s[i]) {
		i++
	}
	return i
}

func scanLetters(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsLetter(r) {
			break
		}
		i += size
	}
	return i
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

func isDash(r rune) bool {
	switch r {
	case '-', '–', '—', '~', '〜':
		return true
	}
	return false
}
