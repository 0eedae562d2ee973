// Package tracking is the HTTP client of the analytics service.
//
// The service exposes two JSON endpoints under a versioned base URL:
//
//	POST {base}/users/add/      create the anonymous user of an install
//	POST {base}/users/session/  record one session/event for a user
//
// Client is stateless: it encodes the request, performs exactly one HTTP
// call, and decodes the response. It never retries and never touches local
// state; callers decide what to do with failures.
//
// # Usage
//
//	client, err := tracking.NewClient("https://api.example.com/v1",
//	    tracking.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//
//	created, err := client.CreateUser(ctx, tracking.UserPayload{
//	    DeviceID:      "6D92078A-8246-4BA4-AE5B-76104861E7DC",
//	    DeviceIDType:  "advertising_id",
//	    App:           "travel-ios",
//	    VendorID:      "E621E1F8-C36C-495A-93FC-0C247A3E6E5F",
//	    PseudoID:      "k3j9a0c1x7m2q8z4w5e6r",
//	    AcquiredRoute: "organic",
//	})
//
// # Errors
//
// Failures fall into a small taxonomy, each with a sentinel usable with
// errors.Is:
//
//   - ErrTransport: the request never produced a response.
//   - ErrUnexpectedStatus: a non-2xx response; errors.As into *StatusError
//     for the code and a truncated body.
//   - ErrDecodeResponse: the body was not valid JSON or missed required fields.
//   - ErrEncodeRequest, ErrInvalidConfiguration: programming errors.
package tracking
