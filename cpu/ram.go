package cpu

const (
	RAM_SIZE = 256 // Words of RAM.
)

// Ram is the machine memory. Addresses wrap modulo RAM_SIZE, so there is
// no out of bounds access.
type Ram [RAM_SIZE]int64

// Address returns the effective index of a requested address.
func (r *Ram) Address(addr int64) int {
	index := addr % RAM_SIZE
	if index < 0 {
		index += RAM_SIZE
	}
	return int(index)
}

func (r *Ram) Load(addr int64) int64 {
	return r[r.Address(addr)]
}

func (r *Ram) Store(addr int64, value int64) {
	r[r.Address(addr)] = value
}

func (r *Ram) Reset() {
	clear(r[:])
}
