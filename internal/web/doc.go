// Package web implements the server-rendered Bloomly browser application.
//
// # Architecture
//
// Every page is rendered with html/template from the embedded templates directory. Each view maps to a
// template and a handler:
//
//  1. Home: search form and up to 12 result cards, each with a "Save to My Garden" action
//  2. Login: email/password form plus "Continue with Google" when Google credentials are configured
//  3. Register: name, email, password and confirmation
//  4. Profile: greeting, account details and the garden with rename/remove
//
// The notification slot and the player bar are part of the layout and render on every page.
//
// # State
//
// Two cookies carry state:
//   - bloomly_sid: a random browser id keyed into an in-memory table of per-browser views
//     (notification center, player, search view, garden view)
//   - bloomly_session: a signed JWT naming the authenticated user
//
// The browser table is pruned of idle entries and capped in size; losing an entry only resets
// transient UI state. Page and form routes create entries. The JSON poll, dismiss and the
// websocket only read them, and the player fetches its tracks on the first page render.
//
// # Routes
//
//	GET  /                          → home
//	POST /search                    → run a search, 303 back to /
//	GET  /login, POST /login        → password sign-in
//	POST /login/google              → 303 to the Google consent page
//	GET  /auth/google/callback      → federated sign-in completion
//	GET  /register, POST /register  → sign-up
//	GET  /profile                   → profile and garden (signed in only)
//	POST /logout                    → clear the session cookie
//	POST /favorites                 → save a search result
//	GET  /favorites/{id}/edit       → enter rename mode
//	POST /favorites/{id}/rename     → commit a rename
//	POST /favorites/{id}/cancel     → leave rename mode
//	POST /favorites/{id}/remove     → remove from the garden
//	POST /player/{action}           → next, prev, toggle, list, ended
//	POST /player/select/{index}     → play a track from the list
//	GET  /notifications             → current slot as JSON
//	POST /notifications/dismiss     → clear the slot
//	GET  /ws/notifications          → websocket stream of slot changes
//
// # Gating
//
// Unauthenticated requests for /profile get a 303 to /login. Authenticated requests for /login or /register
// get a 303 to /profile.
package web
