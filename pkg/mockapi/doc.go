// Package mockapi is an in-memory implementation of the analytics service
// API, for local development and end-to-end tests of the tracking client.
//
// Routes:
//
//	POST /users/add/                  create (or look up) the user of an install
//	POST /users/session/              record a session for a known user
//	GET  /users/{userID}/sessions/    list the sessions recorded for a user
//	GET  /healthz                     liveness probe
//
// Users are keyed by (app, pseudo_id), so registering the same install twice
// returns the same user id. Validation failures answer 400 with a JSON
// {"msg": ...} body and unknown users answer 404, mirroring the status codes
// the client maps into its error taxonomy. FailNext injects a one-shot error
// status for a route.
package mockapi
