// Package server exposes a compiled HVQL evaluator over HTTP.
//
// Clients post view contexts as JSON (or YAML) and receive the computed
// styles. The same exchange is available over a websocket for viewers that
// restyle many entities per frame:
//
//	h := server.New(source,
//		server.WithLogger(logger),
//		server.WithOrigins("*"))
//	err := server.ListenAndServe(ctx, ":8080", h, 5*time.Second)
//
// The source is consulted on every request, so a [reload.Source] can swap
// evaluators while the server is running.
package server
