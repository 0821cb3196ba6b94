// Package validate holds the syntax policies for usernames and card tokens.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Func reports whether a value satisfies a policy.
type Func func(string) bool

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{4,15}$`)

// Username accepts 4-15 letters, digits, underscores or hyphens.
func Username(s string) bool {
	return usernameRe.MatchString(s)
}

// ReferenceCards is the accepted token set used in tests and local runs.
var ReferenceCards = []string{"4111111111111111", "4242424242424242"}

var cardSeparators = strings.NewReplacer(" ", "", "-", "")

// CardNumber returns the canonical form of a card token: spaces and dashes
// removed.
func CardNumber(s string) string {
	return cardSeparators.Replace(s)
}

// AllowList accepts only the given tokens, compared in canonical form.
func AllowList(tokens ...string) Func {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		t = CardNumber(t)
		if t != "" {
			set[t] = struct{}{}
		}
	}

	return func(s string) bool {
		_, ok := set[CardNumber(s)]
		return ok
	}
}

var (
	visaRe       = regexp.MustCompile(`^4[0-9]{12}(?:[0-9]{3})?$`)
	mastercardRe = regexp.MustCompile(`^5[1-5][0-9]{14}$`)
)

// Luhn accepts Visa and Mastercard numbers that pass the mod 10 check.
// Spaces and dashes are ignored.
func Luhn(s string) bool {
	clean := CardNumber(s)
	if !visaRe.MatchString(clean) && !mastercardRe.MatchString(clean) {
		return false
	}

	return passesLuhn(clean)
}

func passesLuhn(number string) bool {
	sum := 0
	alternate := false

	for i := len(number) - 1; i >= 0; i-- {
		n := int(number[i] - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}

		sum += n
		alternate = !alternate
	}

	return sum%10 == 0
}

// CardPolicy selects a card validator by name: "allowlist" (with the given
// tokens, or ReferenceCards when empty) or "luhn".
func CardPolicy(name string, allowed []string) (Func, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "allowlist":
		if len(allowed) == 0 {
			allowed = ReferenceCards
		}

		return AllowList(allowed...), nil
	case "luhn":
		return Luhn, nil
	default:
		return nil, fmt.Errorf("unknown card policy %q", name)
	}
}
