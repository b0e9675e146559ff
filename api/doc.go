// Package api mounts the account routes under /public/v3 on a gorilla/mux
// router. Every route is wrapped by a gate.Policy, so handlers only run for
// requests that passed linting, rate limiting and authentication.
package api
