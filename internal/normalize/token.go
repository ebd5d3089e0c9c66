package normalize

import "github.com/openpredict/marketd/internal/platform/gamma"

// tokenPair resolves the (yes, no) outcome token identifiers for a market.
// The clobTokenIds pair field wins (first element is the Yes token, second
// the No token, possibly JSON-string-encoded); the tokens array is the
// positional fallback. An unresolvable pair is returned empty: price-history
// queries for such an outcome yield an empty series rather than an error.
func tokenPair(m *gamma.Market) (yes, no string) {
	if ids := parseStringList(m.ClobTokenIDs); len(ids) >= 2 {
		return ids[0], ids[1]
	}

	if len(m.Tokens) >= 2 {
		return m.Tokens[0].Identifier(), m.Tokens[1].Identifier()
	}
	return "", ""
}
