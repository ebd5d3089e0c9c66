package domain

import "context"

// ResponseCache stores fully marshaled response payloads keyed by the exact
// query parameters that produced them. A hit returns the byte-identical
// payload that was previously computed; entries are never rebuilt or mutated
// after being written.
//
// Implementations decide retention (TTL, bounded size). Two concurrent
// requests for the same key may both miss and both fetch; the last Put wins.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte)
}
