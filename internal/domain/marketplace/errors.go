package marketplace

import "errors"

var (
	// ErrCredentialNotFound indicates no marketplace account is linked for the key
	ErrCredentialNotFound = errors.New("marketplace: account not linked")
	// ErrCredentialInvalid indicates the stored refresh token was rejected.
	// The link is broken and the user must re-authorize; retrying is pointless.
	ErrCredentialInvalid = errors.New("marketplace: credential invalid, account must be re-linked")
	// ErrSignatureInvalid indicates an inbound webhook failed signature verification
	ErrSignatureInvalid = errors.New("marketplace: invalid webhook signature")
	// ErrRemoteUnavailable indicates a transient failure talking to the marketplace
	ErrRemoteUnavailable = errors.New("marketplace: remote temporarily unavailable")
	// ErrRemoteRequestFailed indicates the marketplace rejected a request
	ErrRemoteRequestFailed = errors.New("marketplace: remote request failed")
	// ErrRemoteInvalidResponse indicates an unparseable marketplace response
	ErrRemoteInvalidResponse = errors.New("marketplace: invalid remote response")
	// ErrStateMismatch indicates the OAuth callback state did not match
	ErrStateMismatch = errors.New("marketplace: oauth state mismatch")
)
