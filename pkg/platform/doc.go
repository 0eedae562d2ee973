// Package platform describes the device-level identifier sources a tracking
// client reads from, and derives a country code from the device locale.
//
// Device is the boundary interface. Real applications back it with whatever
// the host platform offers; Static serves fixed values taken from
// configuration or command-line flags.
//
//	dev := platform.Static{
//	    Advertising: "6D92078A-8246-4BA4-AE5B-76104861E7DC",
//	    Vendor:      "E621E1F8-C36C-495A-93FC-0C247A3E6E5F",
//	    LocaleID:    "en_IN",
//	}
//	code := platform.CountryCode(dev.Locale(ctx), platform.DefaultCountryCode)
package platform
