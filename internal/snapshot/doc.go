// Package snapshot caches the last known results of queries in a local
// SQLite database, keyed by canonical query hash.
//
// Clients that render query results can keep working offline by reading
// the latest snapshot for a query's hash. Each Put appends a new
// revision unless the payload is byte-identical to the latest one, so
// re-syncing an unchanged result never grows the store. Result payloads
// are msgpack-encoded; the query's canonical JSON is stored alongside
// its hash so a cache can be inspected without the original document.
package snapshot
