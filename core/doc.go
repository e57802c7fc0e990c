// Package core contains the client contracts, domain types, and the request
// pipeline shared by every resource: credential management, request dispatch
// with a single re-authentication replay, and wire mapping for identities,
// verification inputs, verifications, and webhooks.
//
// Transport implementations live in adapter packages; core only depends on
// the TransportAdapter contract.
package core
