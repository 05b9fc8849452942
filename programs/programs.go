// Package programs holds the example treadmill programs.
package programs

import (
	"embed"
	"path"
	"slices"
	"strings"

	"github.com/ezrec/treadmill/translate"
)

var f = translate.From

//go:embed *.asm
var sources embed.FS

// ErrProgramUnknown is returned for a program name with no source.
type ErrProgramUnknown string

func (err ErrProgramUnknown) Error() string {
	return f("program %v unknown", string(err))
}

// Names returns the names of the example programs, sorted.
func Names() (names []string) {
	entries, _ := sources.ReadDir(".")
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".asm")
		if ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return
}

// Get returns the source of an example program.
func Get(name string) (source string, err error) {
	data, err := sources.ReadFile(path.Clean(name) + ".asm")
	if err != nil {
		err = ErrProgramUnknown(name)
		return
	}

	source = string(data)
	return
}
