// Package logger builds *slog.Logger instances with functional options and
// provides attribute helpers that keep key names consistent across the
// tracking client.
//
// New creates a text or JSON handler, attaches static attributes and wraps
// it in a ContextHandler that injects values found in the context of each
// log call.
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "travel-ios"),
//	    logger.WithAttr(logger.Component("tracker")),
//	)
//	log.InfoContext(ctx, "session created",
//	    logger.UserID(42),
//	    logger.SessionID(9001),
//	    logger.EventType("flight_search"),
//	)
//
// Helpers such as Error, UserID and StatusCode return an empty slog.Attr for
// zero input, so they can be passed unconditionally.
package logger
