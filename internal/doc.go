// Package internal holds the countdown tracker server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, and routing
// - domain: business logic for users and owned record collections
// - storage: database access and repositories (pgx + Postgres)
// - auth, config, metrics, telemetry, sanitize: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
