// Package random requests randomness from the voidstar engine so that its
// fuzzing driver can steer the host program's decisions and replay them
// deterministically.
//
// Do not seed a conventional PRNG from these values, and do not store a
// value to decide something later. Either makes it much harder for the
// engine to control and learn from the program's execution history. Call
// these functions at the moment a decision is needed.
//
// Outside the fuzzing environment the functions fall back to a local
// pseudo-random source, so host code keeps working unchanged.
package random

import "github.com/voidstarhq/voidstar-go/internal/emitter"

// GetRandom returns one random 64-bit value. It never fails and is safe to
// call from any goroutine.
func GetRandom() uint64 {
	return emitter.DispatchRandom()
}

// RandomChoice picks one item from things. The second return is false when
// things is empty. Use the result immediately; do not store it.
func RandomChoice[T any](things []T) (T, bool) {
	switch len(things) {
	case 0:
		var zero T
		return zero, false
	case 1:
		return things[0], true
	}
	idx := GetRandom() % uint64(len(things))
	return things[idx], true
}
