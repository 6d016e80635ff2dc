// Package auth resolves bearer tokens to user identities against the hosted
// auth provider and scopes every user-owned query to that identity, the
// server-side equivalent of the provider's row-level security policies.
package auth

import "context"

// Claims are the verified identity fields the rest of the app relies on
type Claims struct {
	Subject string
	Email   string
}

// Verifier checks a bearer token and returns its claims
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
