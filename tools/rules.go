//go:build ruleguard

// Package gorules holds go-ruleguard dev lint rules specific to this
// codebase's two easiest-to-misuse invariants. Run with:
//
//	ruleguard -rules tools/rules.go ./...
//
// Never imported by package code; this file only exists for `ruleguard`
// to load directly.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// tripleBufferGetBufferWithoutCheck flags every TripleBuffer.GetBuffer
// call outside tests as a prompt to compare NumBuffers() first (the
// matcher does not look for a preceding check) —
// detfunc.Core relies on callers checking buffer count before indexing,
// and a bare GetBuffer call is the easiest way to panic on an empty
// pool.
func tripleBufferGetBufferWithoutCheck(m dsl.Matcher) {
	m.Match(`$buf.GetBuffer($*_)`).
		Where(m["buf"].Type.Is(`*triplebuffer.TripleBuffer`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`check NumBuffers() before GetBuffer to avoid indexing an empty pool`)
}

// sigmaCompareZero flags exact floating-point equality checks against a
// sigma value instead of the sigma > 0 / sigma <= 0 guard
// internal/correntropy.Contribution already uses: sigma is a computed
// bandwidth, never an exact literal, so `== 0`/`!= 0` silently passes
// through values like 1e-300 that should have been rejected.
func sigmaCompareZero(m dsl.Matcher) {
	m.Match(`$sigma == 0`, `$sigma != 0`).
		Where(m["sigma"].Text.Matches(`(?i)sigma`)).
		Report(`compare sigma with <= 0 / > 0, not exact equality, per internal/correntropy.Contribution's guard`)
}
