package tracking

// UserPayload is the body of POST /users/add/.
type UserPayload struct {
	DeviceID      string `json:"device_id"`
	DeviceIDType  string `json:"device_id_type"`
	App           string `json:"app"`
	VendorID      string `json:"vendor_id"`
	PseudoID      string `json:"pseudo_id"`
	Email         string `json:"email,omitempty"`
	AcquiredRoute string `json:"acquired_route"`
	ReferrerURL   string `json:"referrer_url,omitempty"`
}

// UserCreated is the success response of POST /users/add/.
type UserCreated struct {
	Msg    string `json:"msg"`
	UserID int64  `json:"user_id"`
}

// Attribution carries optional ad-campaign metadata for a session.
// Nil members are omitted from the request.
type Attribution struct {
	AdID            *string `json:"ad_id,omitempty"`
	AdGroupID       *string `json:"adgroup_id,omitempty"`
	CampaignID      *string `json:"campaign_id,omitempty"`
	CampaignGroupID *string `json:"campaign_group_id,omitempty"`
	AccountID       *string `json:"account_id,omitempty"`
	AdObjectiveName *string `json:"ad_objective_name,omitempty"`
	GCLID           *string `json:"gclid,omitempty"`
	FBCLID          *string `json:"fbclid,omitempty"`
	MSCLKID         *string `json:"msclkid,omitempty"`
}

// IsZero reports whether no member is set.
func (a Attribution) IsZero() bool {
	return a == Attribution{}
}

// AttributionFromMap builds an Attribution from wire field names.
// Unknown names and empty values are skipped.
func AttributionFromMap(fields map[string]string) Attribution {
	var a Attribution
	for k, v := range fields {
		if v == "" {
			continue
		}
		if dst := a.field(k); dst != nil {
			*dst = String(v)
		}
	}
	return a
}

func (a *Attribution) field(name string) **string {
	switch name {
	case "ad_id":
		return &a.AdID
	case "adgroup_id":
		return &a.AdGroupID
	case "campaign_id":
		return &a.CampaignID
	case "campaign_group_id":
		return &a.CampaignGroupID
	case "account_id":
		return &a.AccountID
	case "ad_objective_name":
		return &a.AdObjectiveName
	case "gclid":
		return &a.GCLID
	case "fbclid":
		return &a.FBCLID
	case "msclkid":
		return &a.MSCLKID
	default:
		return nil
	}
}

// String returns a pointer to s, for filling Attribution members.
func String(s string) *string {
	return &s
}

// SessionPayload is the body of POST /users/session/.
type SessionPayload struct {
	UserID      int64  `json:"user_id"`
	Type        string `json:"type"`
	Tag         string `json:"tag,omitempty"`
	Route       string `json:"route"`
	Vertical    string `json:"vertical"`
	CountryCode string `json:"country_code"`
	*Attribution
}

// SessionCreated is the success response of POST /users/session/.
type SessionCreated struct {
	Msg           string `json:"msg"`
	UserID        int64  `json:"user_id"`
	UserSessionID int64  `json:"user_session_id"`
}
