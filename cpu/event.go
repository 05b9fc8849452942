package cpu

// Event is a device control notification sent to a Monitor.
type Event int

//go:generate go tool stringer -linecomment -type=Event
const (
	EVENT_START  = Event(0) // start
	EVENT_STOP   = Event(1) // stop
	EVENT_STATUS = Event(2) // status
	EVENT_HALT   = Event(3) // halt
)

// Monitor observes the device control instructions of a running program.
// STATUS has no effect on machine state; its display is up to the Monitor.
type Monitor interface {
	Notify(event Event, cpu *Cpu)
}
