// Package server provides HTTP routing, middleware, and the OAuth callback handler for the CLI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] implements it
// with [http.ServeMux] method patterns. [Middleware] is applied so that the first one added runs first;
// [Logging] and [Recover] log through charmbracelet/log.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the redirect step of the OAuth2 authorization code flow. It validates the state
// parameter, exchanges the code for a token, and sends the result through a channel. It only processes one
// callback.
//
// [Authorize] runs the whole flow for `vidhub auth youtube`: a temporary server on the redirect URI's host,
// the consent URL opened in a browser, and a timeout. The resulting token authorizes YouTube Data API calls
// alongside the API key.
package server
