package tracker

import (
	"context"

	"github.com/dmitrymomot/apptrack/pkg/async"
	"github.com/dmitrymomot/apptrack/pkg/tracking"
)

// TrackAppLaunch reports an app launch. It is sent automatically after
// Initialize succeeds.
func (t *Tracker) TrackAppLaunch(ctx context.Context) *async.Future[Session] {
	return t.CreateSession(ctx, AppLaunch, General)
}

func (t *Tracker) TrackSearchButtonClick(ctx context.Context, vertical Vertical, opts ...SessionOption) *async.Future[Session] {
	return t.CreateSession(ctx, SearchButtonClick, vertical, opts...)
}

// TrackAdClick reports a click on an ad with its campaign metadata.
func (t *Tracker) TrackAdClick(ctx context.Context, vertical Vertical, attribution tracking.Attribution, opts ...SessionOption) *async.Future[Session] {
	return t.CreateSession(ctx, AdClick, vertical, append([]SessionOption{WithAttribution(attribution)}, opts...)...)
}

func (t *Tracker) TrackFlightSearch(ctx context.Context, opts ...SessionOption) *async.Future[Session] {
	return t.CreateSession(ctx, FlightSearch, Flight, opts...)
}

func (t *Tracker) TrackHotelSearch(ctx context.Context, opts ...SessionOption) *async.Future[Session] {
	return t.CreateSession(ctx, HotelSearch, Hotel, opts...)
}

func (t *Tracker) TrackRentalSearch(ctx context.Context, opts ...SessionOption) *async.Future[Session] {
	return t.CreateSession(ctx, RentalSearch, Car, opts...)
}

func (t *Tracker) TrackFilterApplied(ctx context.Context, vertical Vertical, opts ...SessionOption) *async.Future[Session] {
	return t.CreateSession(ctx, FilterApplied, vertical, opts...)
}

func (t *Tracker) TrackResultSelected(ctx context.Context, vertical Vertical, opts ...SessionOption) *async.Future[Session] {
	return t.CreateSession(ctx, ResultSelected, vertical, opts...)
}

func (t *Tracker) TrackBookingAttempt(ctx context.Context, vertical Vertical, opts ...SessionOption) *async.Future[Session] {
	return t.CreateSession(ctx, BookingAttempt, vertical, opts...)
}

func (t *Tracker) TrackLocationSelected(ctx context.Context, vertical Vertical, opts ...SessionOption) *async.Future[Session] {
	return t.CreateSession(ctx, LocationSelected, vertical, opts...)
}

func (t *Tracker) TrackDateSelected(ctx context.Context, vertical Vertical, opts ...SessionOption) *async.Future[Session] {
	return t.CreateSession(ctx, DateSelected, vertical, opts...)
}
