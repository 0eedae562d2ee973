// Package requestid correlates tracking requests between the client and the
// service.
//
// The tracking client stamps every outgoing request with an X-Request-ID
// header, taken from the context when the caller set one via WithContext and
// generated otherwise. Middleware does the reverse on the server side. LogAttr
// plugs into logger.WithContextExtractors so both sides log the same
// "request_id" attribute.
package requestid
