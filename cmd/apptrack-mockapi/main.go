// apptrack-mockapi serves an in-memory analytics API for local runs of the
// tracking client:
//
//	HTTP_ADDR=127.0.0.1:8080 apptrack-mockapi
//	APPTRACK_BASE_URL=http://127.0.0.1:8080 apptrack --event app_launch
//
// State is lost when the process exits.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/dmitrymomot/apptrack/pkg/config"
	"github.com/dmitrymomot/apptrack/pkg/httpserver"
	"github.com/dmitrymomot/apptrack/pkg/logger"
	"github.com/dmitrymomot/apptrack/pkg/mockapi"
	"github.com/dmitrymomot/apptrack/pkg/requestid"
)

type appConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	var envFiles []string
	var addr string

	flagSet := pflag.NewFlagSet("apptrack-mockapi", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to read before the environment")
	flagSet.StringVar(&addr, "addr", "", "listen address (default: $HTTP_ADDR)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	var srvCfg httpserver.Config
	var app appConfig
	if len(envFiles) == 0 {
		if err := config.Load(&srvCfg); err != nil {
			return err
		}
		if err := config.Load(&app); err != nil {
			return err
		}
	} else {
		if err := config.Parse(&srvCfg, envFiles...); err != nil {
			return err
		}
		if err := config.Parse(&app); err != nil {
			return err
		}
	}

	log := logger.New(
		logger.WithEnvironment(app.Env, "apptrack-mockapi"),
		logger.WithOutput(stderr),
		logger.WithContextExtractors(requestid.LogAttr),
	)

	srv := httpserver.NewFromConfig(srvCfg, httpserver.WithAddr(addr), httpserver.WithLogger(log))
	return srv.Run(ctx, mockapi.New(mockapi.WithLogger(log)))
}
