package classify

import (
	"regexp"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Rule assigns Value when the lowercased text contains any keyword or matches any pattern.
type Rule[T ~string] struct {
	Value    T
	Keywords []string
	Patterns []string

	compiled []*regexp.Regexp
}

// Set is an ordered rule list; the first matching rule wins.
type Set[T ~string] struct {
	Name     string
	Rules    []Rule[T]
	Fallback T
	Logger   *zap.Logger

	once sync.Once
}

func (s *Set[T]) compile() {
	s.once.Do(func() {
		for i := range s.Rules {
			for _, raw := range s.Rules[i].Patterns {
				re, err := regexp.Compile(raw)
				if err != nil {
					if s.Logger != nil {
						s.Logger.Warn("classify rule regex compile failed", zap.String("set", s.Name), zap.String("value", string(s.Rules[i].Value)), zap.String("regex", raw), zap.Error(err))
					}
					continue
				}
				s.Rules[i].compiled = append(s.Rules[i].compiled, re)
			}
		}
	})
}

// Lookup returns the first matching value, or false when nothing matched.
func (s *Set[T]) Lookup(text string) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	s.compile()
	lower := strings.ToLower(text)
	for _, r := range s.Rules {
		if r.matches(lower) {
			return r.Value, true
		}
	}
	return zero, false
}

// Match returns the first matching value or the set fallback.
func (s *Set[T]) Match(text string) T {
	if v, ok := s.Lookup(text); ok {
		return v
	}
	if s == nil {
		var zero T
		return zero
	}
	return s.Fallback
}

// MatchOr is Match with a caller-supplied fallback.
func (s *Set[T]) MatchOr(text string, fallback T) T {
	if v, ok := s.Lookup(text); ok {
		return v
	}
	return fallback
}

var fundingAmountRe = regexp.MustCompile(`(?i)\$([0-9]+(?:\.[0-9]+)?)([MBK])(?:illion)?`)

// FundingAmount extracts the first "$40M", "$2B" or "$500K" style amount in USD.
func FundingAmount(text string) (decimal.Decimal, bool) {
	m := fundingAmountRe.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	n, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	var mult int64
	switch strings.ToUpper(m[2]) {
	case "B":
		mult = 1_000_000_000
	case "M":
		mult = 1_000_000
	default:
		mult = 1_000
	}
	return n.Mul(decimal.NewFromInt(mult)), true
}

// All returns the value of every matching rule, in rule order, without duplicates.
func (s *Set[T]) All(text string) []T {
	if s == nil {
		return nil
	}
	s.compile()
	lower := strings.ToLower(text)
	var out []T
	seen := map[T]struct{}{}
	for _, r := range s.Rules {
		if _, ok := seen[r.Value]; ok {
			continue
		}
		if r.matches(lower) {
			seen[r.Value] = struct{}{}
			out = append(out, r.Value)
		}
	}
	return out
}

func (r Rule[T]) matches(lower string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, re := range r.compiled {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether the lowercased text contains any of the keywords.
func ContainsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// CountAny counts how many keywords occur in the lowercased text.
func CountAny(text string, keywords []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}
