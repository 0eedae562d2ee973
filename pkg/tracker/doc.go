// Package tracker bootstraps an anonymous user for an app install and reports
// user events ("sessions") to the analytics service.
//
// On Initialize the tracker either resumes the user persisted by an earlier
// launch, or provisions the device identifiers and asks the service to create
// a user. Once a user exists it sends an app-launch session in the background.
// Every later call to CreateSession, or to one of the Track helpers, posts one
// session tagged with an event type and a vertical.
//
// The tracker moves through three states:
//
//	no_user ── Initialize ──▶ user_pending ── created ──▶ user_ready
//	   ▲                                                     │
//	   └──────────────────── ClearUserData ◀─────────────────┘
//
// Sessions requested outside user_ready resolve immediately with ErrNoUser and
// make no request. A failed create-user is not retried; the tracker stays in
// user_pending until Initialize is called again.
//
// # Usage
//
//	storage, err := identity.NewFileStorage("identity.yaml")
//	if err != nil {
//	    return err
//	}
//	var cfg tracker.Config
//	config.MustLoad(&cfg)
//	t, err := tracker.NewFromConfig(cfg, storage, device, tracker.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	if err := t.Initialize(ctx); err != nil {
//	    log.Warn("tracking disabled", logger.Error(err))
//	}
//
//	session, err := t.TrackFlightSearch(ctx, tracker.WithTag("home_cta")).Await()
//
// Call Wait before shutting down to let in-flight sessions finish.
package tracker
