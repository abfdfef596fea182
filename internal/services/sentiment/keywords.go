package sentiment

import "strings"

// Keywords derives the social search terms for a symbol: the symbol itself,
// its base asset with the USDT quote stripped, and any configured extras.
// Order is preserved and duplicates and empties are dropped.
func Keywords(symbol string, extras []string) []string {
	base := strings.ReplaceAll(symbol, "USDT", "")
	words := append([]string{symbol, base}, extras...)

	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
