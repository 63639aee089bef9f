package common

const (
	// AuthorizationHeaderName carries the bearer token on inbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token inside the Authorization header.
	BearerPrefix = "Bearer "

	// PlaceholderSecret is the value shipped in sample configs; it is never
	// accepted as real key material.
	PlaceholderSecret = "REQUIRED_IN_PRODUCTION"

	// DecryptionErrorPassword replaces the secret of a record that could not
	// be decrypted with the current key.
	DecryptionErrorPassword = "[DECRYPTION_ERROR: This credential was encrypted with an old method. Please delete and re-add it.]"
)
