// Package deviceid provisions the anonymous identifiers of an install.
//
// Three identifiers are produced, each at most once per install and cached in
// an identity.Store:
//
//   - the device identifier, taken from the platform advertising id, or a
//     random UUID when the platform reports the all-zero sentinel;
//   - the vendor identifier, taken from the platform vendor id, or a random
//     UUID when the platform has none;
//   - the pseudo identifier, 21 characters drawn uniformly from [a-z0-9].
//
// Once a value is stored it is returned unchanged on every later call
// without consulting the platform again.
package deviceid
