package web

import (
	"errors"
	"fmt"
	"strings"
)

// NormalizeSymbols upper-cases, trims, and de-duplicates a symbol list
// while preserving order, and rejects anything the exchange would never
// accept. Downstream code treats the result as pre-validated.
func NormalizeSymbols(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))

	for _, s := range raw {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" {
			continue
		}
		if !validSymbol(sym) {
			return nil, fmt.Errorf("invalid symbol %q", s)
		}
		if seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}

	if len(out) == 0 {
		return nil, errors.New("watchlist must contain at least one symbol")
	}
	return out, nil
}

func validSymbol(sym string) bool {
	if len(sym) > 20 {
		return false
	}
	for _, r := range sym {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
