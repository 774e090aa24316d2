// Package auth obtains the Strava OAuth bearer token.
//
// Provider.Ensure returns the stored token while it is valid, refreshes an
// expired token when a refresh token is available, and otherwise walks the
// operator through the interactive authorization-code exchange. Every new
// token is committed to the configuration document before it is returned.
package auth
