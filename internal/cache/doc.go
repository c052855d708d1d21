// Package cache stores built binary distributions keyed by the identity
// tuple derived from a requirement (name, version, cache format revision).
// Backends share one get/put/list-by-key contract: a local disk store rooted
// at the configured binary cache directory and an optional remote store
// speaking the shared-cache HTTP protocol. Writes use temp file + rename for
// atomicity and entry mod times carry the freshness signal used to decide
// between reusing a cached artifact and rebuilding it.
package cache
