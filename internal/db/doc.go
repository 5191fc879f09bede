// Package db is the credential store used by credmaster.
//
// It keeps workspaces, hosts, services, sessions and credential cores in
// SQLite, PostgreSQL or MySQL through Bun. Schema changes ship as embedded
// per-dialect migrations under migrations/<type>/ and are applied by Open.
//
// Sessions
//   - Store.Session checks out one connection and hands the callback a Repo
//     bound to it. The connection is released when the callback returns, on
//     success and on error.
//   - CreateCredential and DestroyCore run in their own transaction on that
//     connection so a rejected request leaves nothing behind.
//
// Querying
//   - Repo.Candidates evaluates a model.CoreQuery in SQL (secret type,
//     service names, port spans, login presence) and then loads the public,
//     private, realm, origin and logins of every matched core in chunked
//     IN (...) queries.
//
// MySQL DSNs need multiStatements=true so the migration files can run as a
// single Exec.
//
// Testing notes
//   - Use a per-test shared in-memory SQLite DSN such as
//     "file:test_<name>?mode=memory&cache=shared".
package db // import "github.com/toeirei/credmaster/internal/db"
