package tracker

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/apptrack/pkg/deviceid"
	"github.com/dmitrymomot/apptrack/pkg/identity"
	"github.com/dmitrymomot/apptrack/pkg/platform"
	"github.com/dmitrymomot/apptrack/pkg/tracking"
)

// Config holds the deployment settings of a tracker, read from the environment.
type Config struct {
	BaseURL        string        `env:"APPTRACK_BASE_URL,required,notEmpty"`
	AppCode        string        `env:"APPTRACK_APP_CODE" envDefault:"apptrack"`
	AcquiredRoute  string        `env:"APPTRACK_ACQUIRED_ROUTE" envDefault:"organic"`
	SessionRoute   string        `env:"APPTRACK_SESSION_ROUTE" envDefault:"organic"`
	DefaultCountry string        `env:"APPTRACK_DEFAULT_COUNTRY" envDefault:"IN"`
	HTTPTimeout    time.Duration `env:"APPTRACK_HTTP_TIMEOUT" envDefault:"15s"`
	Namespace      string        `env:"APPTRACK_NAMESPACE" envDefault:"apptrack."`
	UserAgent      string        `env:"APPTRACK_USER_AGENT"`
	Email          string        `env:"APPTRACK_EMAIL"`
	ReferrerURL    string        `env:"APPTRACK_REFERRER_URL"`
}

// NewFromConfig wires a Tracker with an HTTP tracking client, a namespaced
// identity store over storage, and a provisioner reading from device.
// Options are applied after the config-derived ones.
func NewFromConfig(cfg Config, storage identity.Storage, device platform.Device, opts ...Option) (*Tracker, error) {
	var t *Tracker

	clientOpts := []tracking.Option{
		tracking.WithTimeout(cfg.HTTPTimeout),
		tracking.WithUserAgent(cfg.UserAgent),
		tracking.WithOnRequest(func(r tracking.RequestResult) {
			t.logRequest(r)
		}),
	}
	client, err := tracking.NewClient(cfg.BaseURL, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("tracker: %w", err)
	}

	store := identity.NewStore(storage, identity.WithNamespace(cfg.Namespace))
	provisioner := deviceid.New(store, device)

	base := []Option{
		WithAppCode(cfg.AppCode),
		WithAcquiredRoute(cfg.AcquiredRoute),
		WithSessionRoute(cfg.SessionRoute),
		WithDefaultCountry(cfg.DefaultCountry),
		WithEmail(cfg.Email),
		WithReferrerURL(cfg.ReferrerURL),
	}
	t = New(store, provisioner, client, device, append(base, opts...)...)
	return t, nil
}
