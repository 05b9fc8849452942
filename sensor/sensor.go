// Package sensor provides the read-only value sources a treadmill program
// samples with READSENSOR.
//
// Three sensors reflect machine state (elapsed time, speed and incline);
// the others simulate physical measurements and draw from a random source
// owned by the machine, so that independent machines do not share state
// and tests can substitute deterministic values.
package sensor

import (
	"math/rand/v2"
)

// Sensor is a read-only value source.
type Sensor interface {
	// Read samples the sensor.
	Read() int64
}

// Func adapts a function to a Sensor.
type Func func() int64

var _ Sensor = Func(nil)

func (fn Func) Read() int64 {
	return fn()
}

// Constant always reads the same value.
type Constant int64

var _ Sensor = Constant(0)

func (c Constant) Read() int64 {
	return int64(c)
}

// Sequence reads its values in order, repeating from the start once
// exhausted. An empty sequence reads zero.
type Sequence struct {
	Values []int64
	Index  int
}

var _ Sensor = (*Sequence)(nil)

func (seq *Sequence) Read() (value int64) {
	if len(seq.Values) == 0 {
		return
	}

	if seq.Index >= len(seq.Values) {
		seq.Index = 0
	}
	value = seq.Values[seq.Index]
	seq.Index++

	return
}

// Rewind restarts the sequence.
func (seq *Sequence) Rewind() {
	seq.Index = 0
}

// Random reads uniformly distributed values in [Min, Max].
type Random struct {
	Min  int64
	Max  int64
	Rand *rand.Rand
}

var _ Sensor = (*Random)(nil)

// NewRandom creates a random sensor drawing from rng.
func NewRandom(min, max int64, rng *rand.Rand) *Random {
	return &Random{Min: min, Max: max, Rand: rng}
}

func (r *Random) Read() int64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + r.Rand.Int64N(r.Max-r.Min+1)
}
