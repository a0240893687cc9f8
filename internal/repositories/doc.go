// Package repositories implements SQLite persistence for Bloomly's documents and accounts.
//
// Key Implementations:
//   - [DocumentStore] : Schemaless JSON documents keyed by (collection, id), with merge writes and array union transforms
//   - [ProfileRepository] : The "users" collection viewed as favorites lists
//   - [AccountRepository] : Identity provider accounts with email and federated lookups
//
// Document writes run in a single transaction each: read the row, apply the
// patch in Go, write it back. SQLite serializes writers, so a transform such as
// [ArrayUnion] is atomic with respect to other writers of the same database.
//
// Accounts follow the soft delete convention: deleted_at is set and the row is
// excluded from every query. Sequence numbers come from [NextSequence], which
// increments a per-table counter in a dedicated sequence table.
package repositories
