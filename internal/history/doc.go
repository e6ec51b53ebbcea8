// Package history persists one row per dispatched item in a SQLite journal so
// operators can answer "where did my file go?" after the fact.
//
// The schema is embedded and its version kept in PRAGMA user_version. A
// mismatch is reported rather than migrated. Writes retry with backoff while
// another process holds the database lock.
package history
