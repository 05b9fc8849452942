package sensor

import (
	"fmt"
	"iter"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
)

// Standard sensor names.
const (
	TEMPO       = "tempo"       // Elapsed running time.
	VELOCIDADE  = "velocidade"  // Belt speed.
	INCLINACAO  = "inclinacao"  // Belt incline.
	PESO        = "peso"        // Runner weight.
	TEMPERATURA = "temperatura" // Motor temperature.
	TENSAO      = "tensao"      // Supply voltage.
)

// Bounds of the simulated measurements.
const (
	PESO_MIN        = 50
	PESO_MAX        = 100
	TEMPERATURA_MIN = 20
	TEMPERATURA_MAX = 35
	TENSAO_MIN      = 220
	TENSAO_MAX      = 240
)

// Machine is the machine state reflected by the deterministic sensors.
type Machine interface {
	ElapsedTime() int64
	Speed() int64
	Incline() int64
}

// Bank is a set of named sensors. Names are case-insensitive.
type Bank struct {
	sensors map[string]Sensor
}

// NewBank creates an empty sensor bank.
func NewBank() *Bank {
	return &Bank{sensors: map[string]Sensor{}}
}

// NewTreadmill creates the standard treadmill sensor bank for a machine,
// with the simulated measurements drawn from rng.
func NewTreadmill(machine Machine, rng *rand.Rand) (bank *Bank) {
	bank = NewBank()

	bank.Set(TEMPO, Func(machine.ElapsedTime))
	bank.Set(VELOCIDADE, Func(machine.Speed))
	bank.Set(INCLINACAO, Func(machine.Incline))
	bank.Set(PESO, NewRandom(PESO_MIN, PESO_MAX, rng))
	bank.Set(TEMPERATURA, NewRandom(TEMPERATURA_MIN, TEMPERATURA_MAX, rng))
	bank.Set(TENSAO, NewRandom(TENSAO_MIN, TENSAO_MAX, rng))

	return
}

// Set installs a sensor under name, replacing any existing one.
// A nil sensor removes the name.
func (bank *Bank) Set(name string, sensor Sensor) {
	name = strings.ToLower(name)
	if sensor == nil {
		delete(bank.sensors, name)
		return
	}
	bank.sensors[name] = sensor
}

// Get returns the sensor installed under name.
func (bank *Bank) Get(name string) (sensor Sensor, ok bool) {
	sensor, ok = bank.sensors[strings.ToLower(name)]
	return
}

// Read samples the named sensor.
func (bank *Bank) Read(name string) (value int64, err error) {
	sensor, ok := bank.Get(name)
	if !ok {
		err = ErrSensorUnknown(name)
		return
	}

	value = sensor.Read()
	return
}

// Names returns the sensor names in sorted order.
func (bank *Bank) Names() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(bank.sensors)))
}

// Defines returns assembler equates for the bounds of the random sensors,
// e.g. PESO_MIN and PESO_MAX.
func (bank *Bank) Defines() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for name := range bank.Names() {
			random, ok := bank.sensors[name].(*Random)
			if !ok {
				continue
			}
			prefix := strings.ToUpper(name)
			if !yield(prefix+"_MIN", fmt.Sprintf("%d", random.Min)) {
				return
			}
			if !yield(prefix+"_MAX", fmt.Sprintf("%d", random.Max)) {
				return
			}
		}
	}
}
