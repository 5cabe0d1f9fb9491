// Package testutil provides testing utilities for rawmem.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded random bytes and byte ranges for property tests.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	buf := rng.Bytes(4096)
//
// # Ranges
//
//	for _, r := range rng.Ranges(100, capacity) { ... }    // always in bounds
//	for _, r := range rng.BadRanges(100, capacity) { ... } // always out of bounds
package testutil
