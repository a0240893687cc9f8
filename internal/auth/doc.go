// Package auth is Bloomly's identity provider.
//
// [Provider] implements [IdentityProvider] over the accounts table: email and
// password sign-in with bcrypt hashes, sign-up, display names, and Google
// federated sign-in through [services.GoogleService]. Every failure surfaces as
// one of a few fixed errors so callers never show provider detail to users.
//
// The provider also acts as the session observer. It holds the current user of
// the process and pushes every change to observers registered with
// [Provider.ObserveAuthState]. The TUI and CLI use this directly; the web front
// end keeps one identity per browser in a signed cookie instead and uses
// [Tokens] to issue and verify it.
//
// [Tokens] issues HS256 JWTs (golang-jwt) carrying the user id, email and
// display name. The same tokens back the CLI session file written by
// [SaveSession].
package auth
