package sensor

import (
	"github.com/ezrec/treadmill/translate"
)

var f = translate.From

// ErrSensorUnknown is returned when reading a sensor that is not installed.
type ErrSensorUnknown string

func (err ErrSensorUnknown) Error() string {
	return f("sensor %v not found", string(err))
}
