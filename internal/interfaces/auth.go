package interfaces

import "context"

// Authenticator manages the tracker credential lifecycle: running the
// browser authorization flow, serving cached tokens, and logout.
type Authenticator interface {
	// Authenticate runs the interactive authorization flow and returns
	// the resulting access token. Any previously stored credential is
	// replaced only after the flow fully succeeds.
	Authenticate(ctx context.Context) (string, error)

	// AccessToken returns a usable access token, from cache or storage
	// when one exists, otherwise by running the interactive flow. An
	// expired credential always requires a new consent; there is no
	// silent refresh.
	AccessToken(ctx context.Context) (string, error)

	// IsAuthenticated reports whether a usable credential exists. It
	// never starts the interactive flow.
	IsAuthenticated() bool

	// Logout discards the cached and stored credential.
	Logout() error
}
