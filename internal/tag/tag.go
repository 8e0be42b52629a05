// Package tag exposes a build-tag controlled switch for invariant
// checks that must cost nothing in release builds.
//
// Build with `-tags debug` to enable them.
package tag

// Debug gates invariant assertions (sentinel poisoning, ownership
// checks) that are too expensive to run unconditionally in hot CAS
// loops.
var Debug = debug
