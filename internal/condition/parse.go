package condition

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// ErrUnparseableCondition is wrapped by every ParseError.
var ErrUnparseableCondition = errors.New("unparseable condition")

// ParseError describes why a condition text did not match the grammar.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable condition %q: %s", e.Text, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrUnparseableCondition
}

// degreeMarks are removed before tokenizing. NFKC has already turned ℉ and
// ℃ into a degree sign plus letter.
var degreeMarks = strings.NewReplacer("°", "", "º", "", "˚", "")

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokWord
)

type token struct {
	kind     tokenKind
	text     string
	value    decimal.Decimal
	negative bool
}

// rule is one alternative of the grammar: NUMBER followed by fixed words
// and, for ranges, a second NUMBER.
type rule struct {
	kind  Kind
	words []string
	pair  bool
}

// Alternatives in priority order.
var grammar = []rule{
	{kind: Between, words: []string{"to"}, pair: true},
	{kind: Above, words: []string{"or", "above"}},
	{kind: Below, words: []string{"or", "below"}},
}

// Parse converts condition text to a Condition.
//
//	condition := NUMBER "to" NUMBER | NUMBER "or" "above" | NUMBER "or" "below"
//
// The first alternative that matches anywhere in the text wins, in the order
// listed. Numbers are non-negative decimals; words are case-insensitive.
func Parse(text string) (Condition, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Condition{}, &ParseError{Text: text, Reason: "empty"}
	}

	for _, r := range grammar {
		nums, ok := r.match(tokens)
		if !ok {
			continue
		}
		for _, n := range nums {
			if n.negative {
				return Condition{}, &ParseError{Text: text, Reason: "negative thresholds are not supported"}
			}
		}
		switch r.kind {
		case Between:
			return NewBetween(nums[0].value, nums[1].value), nil
		case Above:
			return NewAbove(nums[0].value), nil
		default:
			return NewBelow(nums[0].value), nil
		}
	}

	return Condition{}, &ParseError{Text: text, Reason: "no numeric pattern"}
}

// match finds the first position where r applies and returns its numbers.
func (r rule) match(tokens []token) ([]token, bool) {
	width := 1 + len(r.words)
	if r.pair {
		width++
	}

	for i := 0; i+width <= len(tokens); i++ {
		if tokens[i].kind != tokNumber {
			continue
		}
		ok := true
		for j, w := range r.words {
			t := tokens[i+1+j]
			if t.kind != tokWord || t.text != w {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if !r.pair {
			return tokens[i : i+1], true
		}
		last := tokens[i+width-1]
		if last.kind != tokNumber {
			continue
		}
		return []token{tokens[i], last}, true
	}
	return nil, false
}

// tokenize splits text into numbers and lowercase words. Everything else
// separates tokens. A unit letter right after a number ("81F") is dropped.
func tokenize(text string) []token {
	s := degreeMarks.Replace(norm.NFKC.String(text))
	runes := []rune(s)

	var tokens []token
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case isDigit(r):
			start := i
			for i < len(runes) && isDigit(runes[i]) {
				i++
			}
			if i+1 < len(runes) && runes[i] == '.' && isDigit(runes[i+1]) {
				i++
				for i < len(runes) && isDigit(runes[i]) {
					i++
				}
			}
			lit := string(runes[start:i])
			negative := start > 0 && runes[start-1] == '-'
			tokens = append(tokens, token{
				kind:     tokNumber,
				text:     lit,
				value:    decimal.RequireFromString(lit),
				negative: negative,
			})

		case unicode.IsLetter(r):
			start := i
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				i++
			}
			word := strings.ToLower(string(runes[start:i]))
			if isUnitSuffix(word, tokens, start, runes) {
				continue
			}
			tokens = append(tokens, token{kind: tokWord, text: word})

		default:
			i++
		}
	}
	return tokens
}

// isUnitSuffix reports whether word is a bare F or C attached to the number
// before it (possibly separated by the removed degree sign or a space).
func isUnitSuffix(word string, tokens []token, start int, runes []rune) bool {
	if word != "f" && word != "c" {
		return false
	}
	if len(tokens) == 0 || tokens[len(tokens)-1].kind != tokNumber {
		return false
	}
	return start > 0 && (isDigit(runes[start-1]) || unicode.IsSpace(runes[start-1]))
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
