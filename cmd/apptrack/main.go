// apptrack bootstraps the anonymous user of an install against the analytics
// service and optionally reports one event for it.
//
// Identity is kept in the selected storage backend, so running the command
// twice with the same --storage and --path resumes the same user:
//
//	apptrack --storage file --path ./identity.yaml
//	apptrack --storage file --path ./identity.yaml --event flight_search --vertical flight
//	apptrack --storage file --path ./identity.yaml --clear
//
// Service settings come from APPTRACK_* environment variables, optionally
// read from the files named with --env-file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/dmitrymomot/apptrack/pkg/config"
	"github.com/dmitrymomot/apptrack/pkg/logger"
	"github.com/dmitrymomot/apptrack/pkg/platform"
	"github.com/dmitrymomot/apptrack/pkg/redis"
	"github.com/dmitrymomot/apptrack/pkg/tracker"
	"github.com/dmitrymomot/apptrack/pkg/tracking"
)

// deviceConfig stands in for the platform identifier sources.
type deviceConfig struct {
	AdvertisingID string `env:"APPTRACK_ADVERTISING_ID"`
	VendorID      string `env:"APPTRACK_VENDOR_ID"`
	Locale        string `env:"APPTRACK_LOCALE" envDefault:"en_IN"`
}

type appConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		envFiles    []string
		storageKind string
		storagePath string
		event       string
		vertical    string
		tag         string
		attribution map[string]string
		clearUser   bool
		wait        time.Duration
		device      deviceConfig
	)

	flagSet := pflag.NewFlagSet("apptrack", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to read before the environment")
	flagSet.StringVar(&storageKind, "storage", storageFile, "identity storage: memory, file, sqlite or redis")
	flagSet.StringVar(&storagePath, "path", "", "file or database path for file and sqlite storage")
	flagSet.StringVar(&event, "event", "", "event type to report after initialization, e.g. flight_search")
	flagSet.StringVar(&vertical, "vertical", tracker.General.String(), "vertical of the event: flight, hotel, car or general")
	flagSet.StringVar(&tag, "tag", "", "session tag (default: the event type)")
	flagSet.StringToStringVar(&attribution, "attr", nil, "attribution fields, e.g. --attr gclid=abc,campaign_id=42")
	flagSet.BoolVar(&clearUser, "clear", false, "forget the stored user and exit")
	flagSet.DurationVar(&wait, "wait", 30*time.Second, "how long to wait for the event to be recorded")
	flagSet.StringVar(&device.AdvertisingID, "advertising-id", "", "platform advertising id (default: $APPTRACK_ADVERTISING_ID)")
	flagSet.StringVar(&device.VendorID, "vendor-id", "", "platform vendor id (default: $APPTRACK_VENDOR_ID)")
	flagSet.StringVar(&device.Locale, "locale", "", "device locale (default: $APPTRACK_LOCALE)")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	var (
		trackerCfg tracker.Config
		redisCfg   redis.Config
		envDevice  deviceConfig
		app        appConfig
	)
	if err := config.Parse(&trackerCfg, envFiles...); err != nil {
		return err
	}
	if err := config.Parse(&redisCfg); err != nil {
		return err
	}
	if err := config.Parse(&envDevice); err != nil {
		return err
	}
	if err := config.Parse(&app); err != nil {
		return err
	}
	device = mergeDevice(device, envDevice)

	log := logger.New(logger.WithEnvironment(app.Env, "apptrack"), logger.WithOutput(stderr))

	storage, closeStorage, err := openStorage(ctx, storageKind, storagePath, redisCfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", storageKind, err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			log.Warn("failed to close storage", logger.Error(err))
		}
	}()

	dev := platform.Static{Advertising: device.AdvertisingID, Vendor: device.VendorID, LocaleID: device.Locale}
	tr, err := tracker.NewFromConfig(trackerCfg, storage, dev, tracker.WithLogger(log))
	if err != nil {
		return err
	}

	if clearUser {
		if err := tr.ClearUserData(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "user data cleared")
		return nil
	}

	if err := tr.Initialize(ctx); err != nil {
		return err
	}
	defer tr.Wait()

	userID, _ := tr.UserID()
	fmt.Fprintf(stdout, "user_id=%d state=%s\n", userID, tr.State())

	if event == "" {
		return nil
	}

	var opts []tracker.SessionOption
	if tag != "" {
		opts = append(opts, tracker.WithTag(tag))
	}
	if len(attribution) > 0 {
		opts = append(opts, tracker.WithAttribution(tracking.AttributionFromMap(attribution)))
	}

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	session, err := tr.CreateSession(ctx, tracker.EventType(event), tracker.Vertical(vertical), opts...).AwaitContext(waitCtx)
	if err != nil {
		return fmt.Errorf("report %s: %w", event, err)
	}
	log.Debug("event reported", slog.Int64("user_session_id", session.ID))
	fmt.Fprintf(stdout, "user_session_id=%d event=%s vertical=%s tag=%s\n", session.ID, session.EventType, session.Vertical, session.Tag)
	return nil
}

// mergeDevice lets flags win over environment values.
func mergeDevice(flags, env deviceConfig) deviceConfig {
	if flags.AdvertisingID == "" {
		flags.AdvertisingID = env.AdvertisingID
	}
	if flags.VendorID == "" {
		flags.VendorID = env.VendorID
	}
	if flags.Locale == "" {
		flags.Locale = env.Locale
	}
	return flags
}
