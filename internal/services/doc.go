// Package services implements the REST client for the wedding-planning backend.
//
// # Backend Interface
//
// The selection store only sees the [Backend] interface: pinned selections (one per group type)
// and albums. [APIService] implements it over REST+JSON:
//
//	GET    /pinned-selections
//	DELETE /pinned-selections/{type}
//	POST   /pinned-selections
//	GET    /albums
//	POST   /albums
//	GET    /catalog/{category}
//	GET    /health
//
// Responses may be bare JSON or wrapped in a {"data": ...} envelope; both decode the same way.
//
// # Authentication
//
// Requests carry a bearer token through an [oauth2.Transport]. Tokens come from the password
// grant ([PasswordLogin]) or the authorization code flow handled by the server package, and are
// kept on disk by [shared.TokenStore].
//
// # Error Handling
//
// Non-2xx responses become [*APIError] carrying the status and the backend's message:
//   - [IsNotFound] : 404, or a message containing "not found"
//   - errors.Is(err, [shared.ErrAPIRequest]) : any failed backend call
//   - errors.Is(err, [shared.ErrNotAuthenticated]) : 401 responses
//
// # Rate Limiting
//
// Every request waits on a [rate.Limiter] before it is sent, so toggle storms cannot flood the backend.
package services
