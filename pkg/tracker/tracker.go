package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/apptrack/pkg/async"
	"github.com/dmitrymomot/apptrack/pkg/deviceid"
	"github.com/dmitrymomot/apptrack/pkg/identity"
	"github.com/dmitrymomot/apptrack/pkg/logger"
	"github.com/dmitrymomot/apptrack/pkg/platform"
	"github.com/dmitrymomot/apptrack/pkg/tracking"
)

// Client is the transport used by the Tracker. *tracking.Client satisfies it.
type Client interface {
	CreateUser(ctx context.Context, payload tracking.UserPayload) (tracking.UserCreated, error)
	CreateSession(ctx context.Context, payload tracking.SessionPayload) (tracking.SessionCreated, error)
}

// Session is a successfully recorded event.
type Session struct {
	ID        int64
	UserID    int64
	EventType EventType
	Vertical  Vertical
	Tag       string
}

// Tracker bootstraps the install's user and reports sessions against it.
//
// Initialize must run once per launch before sessions are created; the
// Tracker does not defend against overlapping Initialize calls. Session calls
// may be issued concurrently. In-memory state is only changed after a
// response arrives, under the tracker mutex.
type Tracker struct {
	store       *identity.Store
	provisioner *deviceid.Provisioner
	client      Client
	device      platform.Device
	log         *slog.Logger
	now         func() time.Time

	appCode        string
	acquiredRoute  string
	sessionRoute   string
	defaultCountry string
	email          string
	referrerURL    string

	mu         sync.Mutex
	lc         *lifecycle
	userID     int64
	created    bool
	sessionID  int64
	hasSession bool

	inflight sync.WaitGroup
}

// New creates a Tracker in the no_user state.
func New(store *identity.Store, provisioner *deviceid.Provisioner, client Client, device platform.Device, opts ...Option) *Tracker {
	if store == nil || provisioner == nil || client == nil || device == nil {
		panic("tracker: store, provisioner, client and device are required")
	}
	t := &Tracker{
		store:          store,
		provisioner:    provisioner,
		client:         client,
		device:         device,
		log:            logger.Discard(),
		now:            time.Now,
		appCode:        DefaultAppCode,
		acquiredRoute:  DefaultAcquiredRoute,
		sessionRoute:   DefaultSessionRoute,
		defaultCountry: platform.DefaultCountryCode,
		lc:             newLifecycle(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With(logger.Component("tracker"))
	return t
}

// Initialize resumes a persisted user or creates a new one, then fires an
// app-launch session in the background.
//
// A failed create-user leaves the tracker in user_pending and is returned;
// nothing is retried. Call Initialize again (typically on the next launch) to
// retry.
func (t *Tracker) Initialize(ctx context.Context) error {
	userID, ok, err := t.store.Account(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLoadAccount, err)
		t.log.ErrorContext(ctx, "failed to read persisted account", logger.Error(err))
		return err
	}

	if ok {
		if err := t.becomeReady(triggerResume, userID); err != nil {
			return err
		}
		t.log.DebugContext(ctx, "resumed existing user", logger.UserID(userID))
		t.launch(ctx)
		return nil
	}

	t.mu.Lock()
	err = t.lc.fire(triggerBootstrap)
	t.mu.Unlock()
	if err != nil {
		return err
	}

	ident, err := t.provisioner.Identity(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrProvisioning, err)
		t.log.ErrorContext(ctx, "failed to provision identity", logger.Error(err))
		return err
	}

	created, err := t.client.CreateUser(ctx, t.userPayload(ident))
	if err == nil && created.UserID <= 0 {
		err = fmt.Errorf("%w: non-positive user_id %d", tracking.ErrDecodeResponse, created.UserID)
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrCreateUser, err)
		t.log.WarnContext(ctx, "user creation failed, tracking disabled until next initialize",
			logger.DeviceID(ident.DeviceID, ident.DeviceIDType.String()),
			logger.Error(err),
		)
		return err
	}

	if err := t.store.SaveAccount(ctx, created.UserID, t.now()); err != nil {
		// Drop whatever part of the account was written.
		err = errors.Join(fmt.Errorf("%w: %w", ErrPersistAccount, err), t.store.ClearAccount(ctx))
		t.log.ErrorContext(ctx, "failed to persist created user", logger.UserID(created.UserID), logger.Error(err))
		return err
	}

	if err := t.becomeReady(triggerUserCreated, created.UserID); err != nil {
		return err
	}
	t.log.InfoContext(ctx, "user created",
		logger.UserID(created.UserID),
		logger.DeviceID(ident.DeviceID, ident.DeviceIDType.String()),
	)
	t.launch(ctx)
	return nil
}

// InitializeAsync runs Initialize in the background and resolves to the
// resulting state.
func (t *Tracker) InitializeAsync(ctx context.Context) *async.Future[State] {
	return async.Go(ctx, func(ctx context.Context) (State, error) {
		err := t.Initialize(ctx)
		return t.State(), err
	})
}

// CreateSession reports one event. The returned future resolves to the
// recorded session, or to the error. Without a known user the future is
// already resolved with ErrNoUser and no request is made.
func (t *Tracker) CreateSession(ctx context.Context, eventType EventType, vertical Vertical, opts ...SessionOption) *async.Future[Session] {
	if !eventType.Valid() {
		return async.Resolved(Session{}, fmt.Errorf("%w: %q", ErrInvalidEventType, eventType))
	}
	if !vertical.Valid() {
		return async.Resolved(Session{}, fmt.Errorf("%w: %q", ErrInvalidVertical, vertical))
	}

	userID, ok := t.readyUser()
	if !ok {
		t.log.WarnContext(ctx, "session dropped, no user",
			logger.EventType(eventType.String()),
			logger.State(t.State().String()),
		)
		return async.Resolved(Session{}, ErrNoUser)
	}

	cfg := sessionConfig{tag: eventType.String()}
	for _, opt := range opts {
		opt(&cfg)
	}

	payload := tracking.SessionPayload{
		UserID:      userID,
		Type:        SessionTypeAPI,
		Tag:         cfg.tag,
		Route:       t.sessionRoute,
		Vertical:    vertical.String(),
		CountryCode: platform.CountryCode(t.device.Locale(ctx), t.defaultCountry),
		Attribution: cfg.attribution,
	}

	// In-flight sessions are not aborted by the caller; AwaitContext only
	// stops waiting.
	t.inflight.Add(1)
	future := async.Go(context.WithoutCancel(ctx), func(ctx context.Context) (Session, error) {
		resp, err := t.client.CreateSession(ctx, payload)
		if err != nil {
			t.log.WarnContext(ctx, "session creation failed",
				logger.UserID(userID),
				logger.EventType(eventType.String()),
				logger.Vertical(vertical.String()),
				logger.Error(err),
			)
			return Session{}, err
		}

		t.recordSession(userID, resp.UserSessionID)
		t.log.DebugContext(ctx, "session created",
			logger.UserID(userID),
			logger.SessionID(resp.UserSessionID),
			logger.EventType(eventType.String()),
			logger.Vertical(vertical.String()),
		)
		return Session{
			ID:        resp.UserSessionID,
			UserID:    userID,
			EventType: eventType,
			Vertical:  vertical,
			Tag:       cfg.tag,
		}, nil
	})
	go func() {
		<-future.Done()
		t.inflight.Done()
	}()
	return future
}

// ClearUserData forgets the account: user id, created flag and install date
// are removed from storage and the tracker returns to no_user. Device, vendor
// and pseudo identifiers are kept.
func (t *Tracker) ClearUserData(ctx context.Context) error {
	if err := t.store.ClearAccount(ctx); err != nil {
		err = fmt.Errorf("%w: %w", ErrClearAccount, err)
		t.log.ErrorContext(ctx, "failed to clear account", logger.Error(err))
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.userID = 0
	t.created = false
	t.sessionID = 0
	t.hasSession = false
	return t.lc.fire(triggerClear)
}

// IsValidUser reports whether a created user with a known id is in memory.
func (t *Tracker) IsValidUser() bool {
	_, ok := t.readyUser()
	return ok
}

// UserID returns the current user id.
func (t *Tracker) UserID() (int64, bool) {
	return t.readyUser()
}

// CurrentSessionID returns the id of the most recently recorded session.
func (t *Tracker) CurrentSessionID() (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID, t.hasSession
}

// State returns the lifecycle state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lc.current
}

// Wait blocks until every session request issued so far has completed,
// including background app-launch sessions.
func (t *Tracker) Wait() {
	t.inflight.Wait()
}

func (t *Tracker) readyUser() (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lc.current != StateUserReady || !t.created || t.userID == 0 {
		return 0, false
	}
	return t.userID, true
}

func (t *Tracker) becomeReady(tr trigger, userID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.lc.fire(tr); err != nil {
		return err
	}
	t.userID = userID
	t.created = true
	return nil
}

// recordSession stores the latest session id unless the account changed
// while the request was in flight.
func (t *Tracker) recordSession(userID, sessionID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.userID != userID || !t.created {
		return
	}
	t.sessionID = sessionID
	t.hasSession = true
}

// launch fires the app-launch session without waiting for it.
func (t *Tracker) launch(ctx context.Context) {
	t.TrackAppLaunch(ctx)
}

func (t *Tracker) userPayload(ident deviceid.DeviceIdentity) tracking.UserPayload {
	return tracking.UserPayload{
		DeviceID:      ident.DeviceID,
		DeviceIDType:  ident.DeviceIDType.String(),
		App:           t.appCode,
		VendorID:      ident.VendorID,
		PseudoID:      ident.PseudoID,
		Email:         t.email,
		AcquiredRoute: t.acquiredRoute,
		ReferrerURL:   t.referrerURL,
	}
}

func (t *Tracker) logRequest(r tracking.RequestResult) {
	if t == nil {
		return
	}
	level := slog.LevelDebug
	if r.Err != nil {
		level = slog.LevelWarn
	}
	t.log.LogAttrs(context.Background(), level, "tracking request",
		logger.Path(r.Path),
		slog.String("request_id", r.RequestID),
		logger.StatusCode(r.StatusCode),
		logger.Duration(r.Duration),
		logger.Error(r.Err),
	)
}
