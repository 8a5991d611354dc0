// Package server provides the small local HTTP surface of the wedx client.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] wraps handlers in reverse order (last added executes first).
// The [BasicRouter] implementation uses method-qualified [http.ServeMux] patterns.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback with PKCE.
// It validates the state parameter, exchanges the code for a token and sends the result through a channel.
// Only the first callback is processed.
//
// # Current Usage
//
//   - `wedx auth login --browser` starts a temporary server on the configured callback address,
//     opens the browser and shuts the server down once the token arrives.
//   - `wedx tui` optionally serves /metrics and /healthz on metrics.listen while the picker runs.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
