package tracker

// EventType identifies what a session records.
type EventType string

const (
	SearchButtonClick EventType = "search_button_click"
	AdClick           EventType = "ad_click"
	AppLaunch         EventType = "app_launch"
	FlightSearch      EventType = "flight_search"
	HotelSearch       EventType = "hotel_search"
	RentalSearch      EventType = "rental_search"
	FilterApplied     EventType = "filter_applied"
	ResultSelected    EventType = "result_selected"
	BookingAttempt    EventType = "booking_attempt"
	LocationSelected  EventType = "location_selected"
	DateSelected      EventType = "date_selected"
)

var eventTypes = map[EventType]struct{}{
	SearchButtonClick: {},
	AdClick:           {},
	AppLaunch:         {},
	FlightSearch:      {},
	HotelSearch:       {},
	RentalSearch:      {},
	FilterApplied:     {},
	ResultSelected:    {},
	BookingAttempt:    {},
	LocationSelected:  {},
	DateSelected:      {},
}

func (e EventType) String() string { return string(e) }

// Valid reports whether e is one of the known event types.
func (e EventType) Valid() bool {
	_, ok := eventTypes[e]
	return ok
}

// Vertical is the product area an event belongs to.
type Vertical string

const (
	Flight  Vertical = "flight"
	Hotel   Vertical = "hotel"
	Car     Vertical = "car"
	General Vertical = "general"
)

func (v Vertical) String() string { return string(v) }

// Valid reports whether v is one of the known verticals.
func (v Vertical) Valid() bool {
	switch v {
	case Flight, Hotel, Car, General:
		return true
	}
	return false
}
