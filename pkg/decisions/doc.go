// Package decisions records fact-evaluation outcomes for audit and
// debugging.
//
// Every evaluation produces one append-only record: which entity, which
// channel, what the decision was, whether a retry was scheduled, and how
// long evaluation took. Records carry UUIDs and are stored in SQLite.
// A retention pruner, driven by a cron schedule, caps how long records
// are kept.
//
// Message content is deliberately not recorded; records carry IDs and
// decision metadata only.
package decisions
