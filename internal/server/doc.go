// Package server exposes the schedule over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first).
// [RequestLogger] is the only middleware the schedule installs.
//
// The [BasicRouter] implementation registers "METHOD /path" patterns on an [http.ServeMux],
// so a request with the wrong method is answered with 405 by the mux itself.
//
// # Status Handler
//
// [StatusHandler] serves three routes while `taskdoc schedule --listen` is running:
//
//	GET  /healthz  liveness probe, always 200
//	GET  /status   the last run: its result, or the error that aborted it
//	POST /run      trigger a run now and return its result
//
// A triggered run shares the bot with the daily schedule, so it waits for a scheduled
// run in progress to finish before starting.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
