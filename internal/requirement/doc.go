// Package requirement wraps a single resolved package requirement and derives
// the identity and freshness signals the caching layer builds its keys from:
// canonical name, resolved version, distribution format (sdist vs wheel),
// direct/transitive lineage, the editable flag and the newest modification
// time of matching source archives. Derived fields are computed on first
// access and memoized; ambiguous on-disk evidence fails loudly instead of
// guessing, because a guessed format silently corrupts cache keys.
package requirement
