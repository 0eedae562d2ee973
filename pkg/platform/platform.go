package platform

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

// UnavailableAdvertisingID is reported by platforms when the advertising
// identifier is restricted or disabled.
const UnavailableAdvertisingID = "00000000-0000-0000-0000-000000000000"

// DefaultCountryCode is used when the locale carries no usable region.
const DefaultCountryCode = "IN"

// Device exposes platform identifier sources.
type Device interface {
	// AdvertisingID returns the advertising identifier, or
	// UnavailableAdvertisingID when it cannot be read.
	AdvertisingID(ctx context.Context) (string, error)

	// VendorID returns the publisher-scoped identifier. The bool is false when
	// the platform has none to offer.
	VendorID(ctx context.Context) (string, bool, error)

	// Locale returns the current locale identifier, e.g. "en_US" or "hi-IN".
	Locale(ctx context.Context) string
}

// Static is a Device with fixed values. Empty fields behave as unavailable.
type Static struct {
	Advertising string
	Vendor      string
	LocaleID    string
}

func (s Static) AdvertisingID(context.Context) (string, error) {
	if s.Advertising == "" {
		return UnavailableAdvertisingID, nil
	}
	return s.Advertising, nil
}

func (s Static) VendorID(context.Context) (string, bool, error) {
	return s.Vendor, s.Vendor != "", nil
}

func (s Static) Locale(context.Context) string {
	return s.LocaleID
}

// IsUnavailable reports whether id is the unavailable sentinel or empty.
func IsUnavailable(id string) bool {
	id = strings.TrimSpace(id)
	return id == "" || id == UnavailableAdvertisingID
}

// CountryCode extracts the upper-case ISO 3166-1 alpha-2 region from a locale
// identifier. Both BCP 47 ("en-US") and POSIX ("en_US.UTF-8") forms are
// accepted. Returns fallback when the locale has no explicit 2-letter region.
func CountryCode(locale, fallback string) string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return fallback
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fallback
	}
	region, confidence := tag.Region()
	if confidence != language.Exact || !region.IsCountry() {
		return fallback
	}
	code := region.String()
	if len(code) != 2 {
		return fallback
	}
	return code
}

// normalizeLocale strips POSIX codeset/modifier suffixes and converts
// underscores to hyphens.
func normalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	return strings.ReplaceAll(locale, "_", "-")
}
