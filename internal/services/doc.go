// Package services defines the catalog interfaces Bloomly reads from and implements them over HTTP.
//
// # Catalog Interfaces
//
// Front ends depend on two read-only abstractions:
//   - [PlantCatalog] : species search, implemented by [PerenualService]
//   - [TrackCatalog] : ambient track listing, implemented by [JamendoService]
//
// Both are plain GET requests decoded from JSON through a shared jsonClient.
// Nothing is cached: every call is a fresh remote fetch.
//
// # Perenual
//
// [PerenualService] calls /species-list with the API key, the query and page=1.
// Requests pass through a [rate.Limiter] so bursts of searches queue instead of
// tripping the provider's quota. The limiter waits; it never drops a request.
//
// # Jamendo
//
// [JamendoService] fetches one page of tracks for the configured tags (default
// "nature", 20 tracks, mp31 audio).
//
// # Google
//
// [GoogleService] wraps the OAuth2 authorization-code flow and the OpenID
// userinfo endpoint for federated sign-in.
//
// # Error Handling
//
// Services use the sentinel errors from the shared package:
//   - [shared.ErrServiceUnavailable] : transport failure or canceled context
//   - [shared.ErrAPIRequest] : non-2xx status or undecodable body
//   - [shared.ErrMissingCredentials] : API key or client id not configured
//
// Transport errors are unwrapped from [url.Error] so request URLs carrying API
// keys never end up in messages or logs. No request is retried.
package services
