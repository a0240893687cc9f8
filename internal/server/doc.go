// Package server provides HTTP routing, middleware and the OAuth callback handler shared by the web front end and the CLI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [MuxRouter] implementation uses gorilla/mux internally, so path variables ({id}, {action}) and method
// matching come from mux. A request whose path matches but whose method does not gets a 405.
//
// # Middleware
//
// [Logging] writes one structured line per request. [Recover] turns a handler panic into a 500 and logs it.
//
// # OAuth Callback Handler
//
// [OAuthHandler] serves the loopback callback used by "bloomly login --google". It validates the state
// parameter, hands the authorization code to a sign-in function and sends the resulting user through a channel.
//
// It only processes one callback.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
