// Package server runs the short-lived local HTTP server used by the login command.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback. It validates the state
// parameter, exchanges the authorization code through a [TokenExchanger] and sends the result
// through a channel. Only the first callback is processed.
//
// # Router
//
// [NewRouter] mounts handlers on a chi router with request logging and panic recovery.
// Handlers implement [Handler], which adds the list of routes they serve to [http.Handler].
//
// # Callback Server
//
// [Listen] starts the router on a local address; [CallbackServer.Wait] blocks until the callback
// delivers a token, the timeout elapses ([shared.ErrTimeout]) or the context is cancelled, then
// shuts the server down.
package server
