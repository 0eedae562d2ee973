package tracker_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apptrack/pkg/deviceid"
	"github.com/dmitrymomot/apptrack/pkg/identity"
	"github.com/dmitrymomot/apptrack/pkg/logger"
	"github.com/dmitrymomot/apptrack/pkg/platform"
	"github.com/dmitrymomot/apptrack/pkg/tracker"
	"github.com/dmitrymomot/apptrack/pkg/tracking"
)

const advertisingID = "6D92078A-8246-4BA4-AE5B-76104861E7DC"

var installedAt = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store       *identity.Store
	provisioner *deviceid.Provisioner
	client      *MockClient
	tracker     *tracker.Tracker
}

func newFixture(t *testing.T, storage identity.Storage, device platform.Device, opts ...tracker.Option) *fixture {
	t.Helper()

	if storage == nil {
		storage = identity.NewMemoryStorage()
	}
	if device == nil {
		device = platform.Static{Advertising: advertisingID, Vendor: "vendor-1", LocaleID: "en_US"}
	}

	store := identity.NewStore(storage)
	prov := deviceid.New(store, device)
	client := &MockClient{}
	opts = append([]tracker.Option{
		tracker.WithAppCode("travel"),
		tracker.WithClock(func() time.Time { return installedAt }),
	}, opts...)

	return &fixture{
		store:       store,
		provisioner: prov,
		client:      client,
		tracker:     tracker.New(store, prov, client, device, opts...),
	}
}

func sessionTagged(tag string) any {
	return mock.MatchedBy(func(p tracking.SessionPayload) bool { return p.Tag == tag })
}

// resume puts the fixture into user_ready through a persisted account and
// waits for the app-launch session.
func (f *fixture) resume(t *testing.T, userID int64) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.store.SaveAccount(ctx, userID, installedAt))
	f.client.On("CreateSession", mock.Anything, sessionTagged("app_launch")).
		Return(tracking.SessionCreated{Msg: "ok", UserID: userID, UserSessionID: 1}, nil).Once()

	require.NoError(t, f.tracker.Initialize(ctx))
	f.tracker.Wait()
	require.Equal(t, tracker.StateUserReady, f.tracker.State())
}

func TestTracker_CreateSessionWithoutUser(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatText))
	f := newFixture(t, nil, nil, tracker.WithLogger(log))

	future := f.tracker.CreateSession(context.Background(), tracker.FlightSearch, tracker.Flight)
	assert.True(t, future.IsComplete())

	_, err := future.Await()
	assert.ErrorIs(t, err, tracker.ErrNoUser)
	assert.Contains(t, buf.String(), "session dropped")
	assert.Equal(t, tracker.StateNoUser, f.tracker.State())

	f.client.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestTracker_InitializeCreatesUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, nil, nil)

	f.client.On("CreateUser", mock.Anything, mock.MatchedBy(func(p tracking.UserPayload) bool {
		return p.DeviceID == advertisingID &&
			p.DeviceIDType == "advertising_id" &&
			p.VendorID == "vendor-1" &&
			len(p.PseudoID) == deviceid.PseudoIDLength &&
			p.App == "travel" &&
			p.AcquiredRoute == tracker.DefaultAcquiredRoute &&
			p.Email == ""
	})).Return(tracking.UserCreated{Msg: "ok", UserID: 42}, nil).Once()

	f.client.On("CreateSession", mock.Anything, mock.MatchedBy(func(p tracking.SessionPayload) bool {
		return p.UserID == 42 &&
			p.Tag == "app_launch" &&
			p.Type == tracker.SessionTypeAPI &&
			p.Vertical == "general" &&
			p.Route == tracker.DefaultSessionRoute &&
			p.CountryCode == "US" &&
			p.Attribution == nil
	})).Return(tracking.SessionCreated{Msg: "ok", UserID: 42, UserSessionID: 7}, nil).Once()

	require.NoError(t, f.tracker.Initialize(ctx))
	f.tracker.Wait()

	assert.True(t, f.tracker.IsValidUser())
	assert.Equal(t, tracker.StateUserReady, f.tracker.State())

	userID, ok := f.tracker.UserID()
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)

	stored, ok, err := f.store.Account(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), stored)

	date, ok, err := f.store.InstallDate(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, installedAt.Equal(date))

	sessionID, ok := f.tracker.CurrentSessionID()
	assert.True(t, ok)
	assert.Equal(t, int64(7), sessionID)

	f.client.AssertExpectations(t)
}

func TestTracker_InitializeResumesPersistedUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, nil, nil)
	f.resume(t, 99)

	userID, ok := f.tracker.UserID()
	assert.True(t, ok)
	assert.Equal(t, int64(99), userID)

	// Resuming never provisions identifiers.
	_, ok, err := f.store.DeviceID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	f.client.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	f.client.AssertExpectations(t)
}

func TestTracker_InitializeFailureStaysPending(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, nil, nil)
	transportErr := fmt.Errorf("%w: connection refused", tracking.ErrTransport)
	f.client.On("CreateUser", mock.Anything, mock.Anything).
		Return(tracking.UserCreated{}, transportErr).Once()

	err := f.tracker.Initialize(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, tracker.ErrCreateUser)
	assert.ErrorIs(t, err, tracking.ErrTransport)

	assert.Equal(t, tracker.StateUserPending, f.tracker.State())
	assert.False(t, f.tracker.IsValidUser())

	_, ok, err := f.store.Account(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.tracker.TrackHotelSearch(ctx).Await()
	assert.ErrorIs(t, err, tracker.ErrNoUser)
	f.client.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)

	// Identifiers provisioned by the failed attempt are reused on retry.
	before, err := f.provisioner.Identity(ctx)
	require.NoError(t, err)

	f.client.On("CreateUser", mock.Anything, mock.MatchedBy(func(p tracking.UserPayload) bool {
		return p.DeviceID == before.DeviceID && p.PseudoID == before.PseudoID
	})).Return(tracking.UserCreated{Msg: "ok", UserID: 5}, nil).Once()
	f.client.On("CreateSession", mock.Anything, sessionTagged("app_launch")).
		Return(tracking.SessionCreated{Msg: "ok", UserID: 5, UserSessionID: 11}, nil).Once()

	require.NoError(t, f.tracker.Initialize(ctx))
	f.tracker.Wait()

	assert.Equal(t, tracker.StateUserReady, f.tracker.State())
	f.client.AssertExpectations(t)
}

func TestTracker_InitializePersistFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	storage := &failingStorage{
		MemoryStorage: identity.NewMemoryStorage(),
		failKey:       identity.DefaultNamespace + identity.KeyUserCreated,
	}
	f := newFixture(t, storage, nil)
	f.client.On("CreateUser", mock.Anything, mock.Anything).
		Return(tracking.UserCreated{Msg: "ok", UserID: 42}, nil).Once()

	err := f.tracker.Initialize(ctx)
	assert.ErrorIs(t, err, tracker.ErrPersistAccount)
	assert.ErrorIs(t, err, errStorageDown)

	assert.Equal(t, tracker.StateUserPending, f.tracker.State())
	assert.False(t, f.tracker.IsValidUser())

	_, ok, err := f.store.Account(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// The partially written account is rolled back.
	_, ok, err = f.store.UserID(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "user_id must not outlive a failed save")
	_, ok, err = f.store.InstallDate(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "install_date must not outlive a failed save")

	f.client.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestTracker_SessionPayload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, nil, nil)
	f.resume(t, 42)

	f.client.On("CreateSession", mock.Anything, mock.MatchedBy(func(p tracking.SessionPayload) bool {
		return p.Tag == "flight_search" && p.Vertical == "flight" && p.UserID == 42 && p.CountryCode == "US"
	})).Return(tracking.SessionCreated{Msg: "ok", UserID: 42, UserSessionID: 20}, nil).Once()
	f.client.On("CreateSession", mock.Anything, sessionTagged("home_cta")).
		Return(tracking.SessionCreated{Msg: "ok", UserID: 42, UserSessionID: 21}, nil).Once()

	t.Run("default tag is the event type", func(t *testing.T) {
		session, err := f.tracker.CreateSession(ctx, tracker.FlightSearch, tracker.Flight).Await()
		require.NoError(t, err)
		assert.Equal(t, "flight_search", session.Tag)
		assert.Equal(t, int64(20), session.ID)
		assert.Equal(t, int64(42), session.UserID)
	})

	t.Run("explicit tag overrides the default", func(t *testing.T) {
		session, err := f.tracker.TrackFlightSearch(ctx, tracker.WithTag("home_cta")).Await()
		require.NoError(t, err)
		assert.Equal(t, "home_cta", session.Tag)
		assert.Equal(t, tracker.FlightSearch, session.EventType)
	})

	sessionID, ok := f.tracker.CurrentSessionID()
	assert.True(t, ok)
	assert.Equal(t, int64(21), sessionID)
	f.client.AssertExpectations(t)
}

func TestTracker_AdClickAttribution(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, nil, nil)
	f.resume(t, 42)

	f.client.On("CreateSession", mock.Anything, mock.MatchedBy(func(p tracking.SessionPayload) bool {
		a := p.Attribution
		return p.Tag == "ad_click" &&
			p.Vertical == "hotel" &&
			a != nil &&
			a.GCLID != nil && *a.GCLID == "g-1" &&
			a.CampaignID != nil && *a.CampaignID == "c-9" &&
			a.AdID == nil && a.FBCLID == nil
	})).Return(tracking.SessionCreated{Msg: "ok", UserID: 42, UserSessionID: 30}, nil).Once()

	attribution := tracking.Attribution{GCLID: tracking.String("g-1"), CampaignID: tracking.String("c-9")}
	_, err := f.tracker.TrackAdClick(ctx, tracker.Hotel, attribution).Await()
	require.NoError(t, err)
	f.client.AssertExpectations(t)
}

func TestTracker_CountryCodeFallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	device := platform.Static{Advertising: advertisingID, LocaleID: "en"}
	f := newFixture(t, nil, device, tracker.WithDefaultCountry("AE"))
	f.resume(t, 42)

	f.client.On("CreateSession", mock.Anything, mock.MatchedBy(func(p tracking.SessionPayload) bool {
		return p.Tag == "rental_search" && p.Vertical == "car" && p.CountryCode == "AE"
	})).Return(tracking.SessionCreated{Msg: "ok", UserID: 42, UserSessionID: 3}, nil).Once()

	_, err := f.tracker.TrackRentalSearch(ctx).Await()
	require.NoError(t, err)
	f.client.AssertExpectations(t)
}

func TestTracker_SessionFailureKeepsState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, nil, nil)
	f.resume(t, 42)

	statusErr := &tracking.StatusError{Path: tracking.PathCreateSession, StatusCode: http.StatusBadGateway}
	f.client.On("CreateSession", mock.Anything, sessionTagged("booking_attempt")).
		Return(tracking.SessionCreated{}, statusErr).Once()

	_, err := f.tracker.TrackBookingAttempt(ctx, tracker.Hotel).Await()
	assert.ErrorIs(t, err, tracking.ErrUnexpectedStatus)
	assert.True(t, tracking.IsStatus(err, http.StatusBadGateway))

	sessionID, ok := f.tracker.CurrentSessionID()
	assert.True(t, ok)
	assert.Equal(t, int64(1), sessionID, "app-launch session id must survive a failed session")
	assert.True(t, f.tracker.IsValidUser())
}

func TestTracker_InvalidArguments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, nil, nil)
	f.resume(t, 42)

	_, err := f.tracker.CreateSession(ctx, tracker.EventType("page_view"), tracker.Flight).Await()
	assert.ErrorIs(t, err, tracker.ErrInvalidEventType)

	_, err = f.tracker.CreateSession(ctx, tracker.FlightSearch, tracker.Vertical("train")).Await()
	assert.ErrorIs(t, err, tracker.ErrInvalidVertical)

	f.client.AssertNumberOfCalls(t, "CreateSession", 1)
}

func TestTracker_ClearUserData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, nil, nil)
	f.client.On("CreateUser", mock.Anything, mock.Anything).
		Return(tracking.UserCreated{Msg: "ok", UserID: 42}, nil).Once()
	f.client.On("CreateSession", mock.Anything, sessionTagged("app_launch")).
		Return(tracking.SessionCreated{Msg: "ok", UserID: 42, UserSessionID: 7}, nil).Once()

	require.NoError(t, f.tracker.Initialize(ctx))
	f.tracker.Wait()

	before, err := f.provisioner.Identity(ctx)
	require.NoError(t, err)

	require.NoError(t, f.tracker.ClearUserData(ctx))

	assert.False(t, f.tracker.IsValidUser())
	assert.Equal(t, tracker.StateNoUser, f.tracker.State())
	_, ok := f.tracker.CurrentSessionID()
	assert.False(t, ok)

	for _, key := range []string{identity.KeyUserID, identity.KeyUserCreated, identity.KeyInstallDate} {
		_, ok, err := f.store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	after, err := f.provisioner.Identity(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = f.tracker.TrackAppLaunch(ctx).Await()
	assert.ErrorIs(t, err, tracker.ErrNoUser)
	f.client.AssertNumberOfCalls(t, "CreateSession", 1)
}

func TestTracker_ConcurrentSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, nil, nil)
	f.resume(t, 42)

	const n = 20
	for i := range n {
		f.client.On("CreateSession", mock.Anything, sessionTagged("search_button_click")).
			Return(tracking.SessionCreated{Msg: "ok", UserID: 42, UserSessionID: int64(100 + i)}, nil).Once()
	}

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.tracker.TrackSearchButtonClick(ctx, tracker.General)
		}()
	}
	wg.Wait()
	f.tracker.Wait()

	sessionID, ok := f.tracker.CurrentSessionID()
	require.True(t, ok)
	assert.GreaterOrEqual(t, sessionID, int64(100))
	assert.Less(t, sessionID, int64(100+n))
	f.client.AssertExpectations(t)
}

func TestTracker_InitializeAsync(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, nil, nil)
	require.NoError(t, f.store.SaveAccount(ctx, 8, installedAt))
	f.client.On("CreateSession", mock.Anything, sessionTagged("app_launch")).
		Return(tracking.SessionCreated{Msg: "ok", UserID: 8, UserSessionID: 1}, nil).Once()

	state, err := f.tracker.InitializeAsync(ctx).AwaitWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, tracker.StateUserReady, state)
	f.tracker.Wait()
}

func TestTracker_AppLaunchOutlivesCanceledContext(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, nil)
	require.NoError(t, f.store.SaveAccount(context.Background(), 42, installedAt))

	release := make(chan time.Time)
	f.client.On("CreateSession", mock.Anything, sessionTagged("app_launch")).
		WaitUntil(release).
		Return(tracking.SessionCreated{Msg: "ok", UserID: 42, UserSessionID: 9}, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.tracker.Initialize(ctx))
	cancel()
	close(release)
	f.tracker.Wait()

	sessionID, ok := f.tracker.CurrentSessionID()
	assert.True(t, ok)
	assert.Equal(t, int64(9), sessionID)
}

func TestTracker_InitializeRejectsNonPositiveUserID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, nil, nil)
	f.client.On("CreateUser", mock.Anything, mock.Anything).
		Return(tracking.UserCreated{Msg: "ok", UserID: 0}, nil).Once()

	err := f.tracker.Initialize(ctx)
	assert.ErrorIs(t, err, tracker.ErrCreateUser)
	assert.ErrorIs(t, err, tracking.ErrDecodeResponse)
	assert.Equal(t, tracker.StateUserPending, f.tracker.State())

	_, ok, err := f.store.UserID(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "an invalid id must not be persisted")

	// The next attempt asks the service again.
	f.client.On("CreateUser", mock.Anything, mock.Anything).
		Return(tracking.UserCreated{Msg: "ok", UserID: 12}, nil).Once()
	f.client.On("CreateSession", mock.Anything, sessionTagged("app_launch")).
		Return(tracking.SessionCreated{Msg: "ok", UserID: 12, UserSessionID: 1}, nil).Once()

	require.NoError(t, f.tracker.Initialize(ctx))
	f.tracker.Wait()
	assert.True(t, f.tracker.IsValidUser())
	f.client.AssertExpectations(t)
}

func TestTracker_SessionOutlivesCanceledContext(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, nil)
	f.resume(t, 42)

	release := make(chan time.Time)
	f.client.On("CreateSession", mock.Anything, sessionTagged("date_selected")).
		WaitUntil(release).
		Return(tracking.SessionCreated{Msg: "ok", UserID: 42, UserSessionID: 55}, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	future := f.tracker.TrackDateSelected(ctx, tracker.Hotel)
	cancel()

	_, err := future.AwaitContext(ctx)
	assert.ErrorIs(t, err, context.Canceled, "the caller stops waiting")

	close(release)
	session, err := future.Await()
	require.NoError(t, err)
	assert.Equal(t, int64(55), session.ID)

	sessionID, ok := f.tracker.CurrentSessionID()
	assert.True(t, ok)
	assert.Equal(t, int64(55), sessionID)
}

func TestNew_PanicsOnMissingDependencies(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		tracker.New(nil, nil, nil, nil)
	})
}
