// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/k0kubun/pp/v3"

	"github.com/ezrec/treadmill/emulator"
	"github.com/ezrec/treadmill/programs"
)

func main() {
	var compile string
	var maxSteps int
	var seed uint64
	var verbose bool
	var dump bool
	var interactive bool

	flag.StringVar(&compile, "c", "", ".asm file to run")
	flag.IntVar(&maxSteps, "m", 1000, "Maximum steps, 0 for no limit")
	flag.Uint64Var(&seed, "seed", rand.Uint64(), "Random sensor seed")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&dump, "d", false, "Dump the assembled program")
	flag.BoolVar(&interactive, "i", false, "Interactive console")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	type source struct {
		name string
		text string
	}
	var sources []source

	if len(compile) != 0 {
		if !strings.HasSuffix(compile, ".asm") {
			log.Fatalf("%v: not an .asm file", compile)
		}
		text, err := os.ReadFile(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		sources = append(sources, source{name: compile, text: string(text)})
	} else {
		for _, name := range programs.Names() {
			text, err := programs.Get(name)
			if err != nil {
				log.Fatalf("%v: %v", name, err)
			}
			sources = append(sources, source{name: name, text: text})
		}
	}

	for _, src := range sources {
		emu := emulator.NewEmulatorSeed(seed)
		emu.Verbose = verbose
		emu.Output = os.Stdout

		err := emu.Load(src.text)
		if err != nil {
			log.Fatalf("%v: %v", src.name, err)
		}

		if dump {
			pp.Println(emu.Program)
		}

		emu.Summary()

		if interactive {
			err = console(emu, src.name, maxSteps)
		} else {
			err = emu.Run(maxSteps)
			if err == nil {
				emu.Status()
			}
		}
		if err != nil {
			log.Fatalf("%v: %v", src.name, err)
		}
	}
}
