package httpserver

import "time"

// Config is the environment form of the server options.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:"127.0.0.1:8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// NewFromConfig creates a Server from cfg. Zero values keep the defaults;
// opts are applied last.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	base := make([]Option, 0, 4+len(opts))
	if cfg.Addr != "" {
		base = append(base, WithAddr(cfg.Addr))
	}
	if cfg.ReadTimeout > 0 {
		base = append(base, WithReadTimeout(cfg.ReadTimeout))
	}
	if cfg.WriteTimeout > 0 {
		base = append(base, WithWriteTimeout(cfg.WriteTimeout))
	}
	if cfg.ShutdownTimeout > 0 {
		base = append(base, WithShutdownTimeout(cfg.ShutdownTimeout))
	}
	return New(append(base, opts...)...)
}
