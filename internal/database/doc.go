// Package database implements the persistence contracts on PostgreSQL.
// Uses pgx for connection pooling and tern for migrations. Answers live in a
// JSONB column and are appended with a single UPDATE, so per-question write
// ordering is serialized by the database. In-memory implementations back the
// unit tests.
package database
