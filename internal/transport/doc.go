// Package transport provides the single-attempt HTTP mechanics for grit.
//
// This package is internal to grit and handles one transport call at a time:
// client construction (including proxy routing and trust-store wiring),
// request assembly from pre-merged headers and query parameters, per-attempt
// timeouts, body materialization, and client span instrumentation.
//
// The main components are:
//
//   - [Request]: Fully assembled inputs for one attempt
//   - [Result]: Status, headers, final URL, and optional body bytes
//   - [Do]: Executes one attempt against an *http.Client
//   - [NewClient]: Builds a pooled client, optionally proxy-routed
//
// The package deliberately knows nothing about retries, rate limits, or
// response evaluation; those decisions live in the root package. Types here
// are decoupled from the root package types to avoid circular dependencies.
//
// Users of the grit library should not need to interact with this package
// directly. Configuration is done through the main grit package.
package transport
