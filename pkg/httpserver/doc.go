// Package httpserver runs an http.Handler with sane timeouts and graceful
// shutdown.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    return err
//	}
//
// Run returns once ctx is canceled or the process receives SIGINT or SIGTERM
// and in-flight requests have drained. Listen failures wrap ErrStart, drain
// failures wrap ErrShutdown.
package httpserver
