package emitter

import (
	"math/rand/v2"
	"sync"
)

// Recorder is a Handler that captures every record in memory and serves
// randomness from a seeded PRNG. Tests and the smoke harness install it via
// Set to observe exactly what the SDK would have sent to the engine, with
// fully deterministic output.
type Recorder struct {
	mu      sync.Mutex
	records [][]byte
	rng     *rand.Rand
}

// NewRecorder returns a Recorder whose Random sequence is determined by seed.
func NewRecorder(seed uint64) *Recorder {
	return &Recorder{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Output captures a copy of the record.
func (r *Recorder) Output(payload []byte) {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, cp)
}

// Random returns the next value from the seeded sequence.
func (r *Recorder) Random() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Uint64()
}

// HandlesOutput reports true.
func (r *Recorder) HandlesOutput() bool {
	return true
}

// Records returns a snapshot of everything captured so far, in emission order.
func (r *Recorder) Records() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.records))
	copy(out, r.records)
	return out
}

// Lines returns the captured records as strings, in emission order.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, len(r.records))
	for i, rec := range r.records {
		lines[i] = string(rec)
	}
	return lines
}
