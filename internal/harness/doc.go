// Package harness executes YAML smoke scenarios against the SDK surface.
//
// A scenario is a list of directive steps driven through the real assertion,
// lifecycle, and random packages with a recording transport and a fresh
// tracker installed, so runs are deterministic and observable. The harness
// exists to smoke-test the binding outside a host test program; it is not
// part of the production contract.
//
// # Scenario Format
//
//	name: checkout_smoke
//	description: "exercises the binding end to end"
//	steps:
//	  - directive: always
//	    message: "cart total is non-negative"
//	    conditions: [true, true]
//	    details: { currency: USD }
//	  - directive: event
//	    name: checkout
//	    details: { phase: begin }
//	  - directive: setup_complete
//	  - directive: random
//	    count: 3
//
// Directives: always, always_or_unreachable, sometimes, reachable,
// unreachable, event, setup_complete, random.
//
// # Determinism
//
// Every run gets a run token (UUIDv7 in production, fixed in tests) attached
// to lifecycle payloads, a seeded PRNG behind the random directive, and
// synthetic step locations, so the emission stream is byte-stable and
// suitable for golden comparison.
package harness
