package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/ezrec/treadmill/cpu"
	"github.com/ezrec/treadmill/emulator"
)

const consoleHelp = `commands:
  step [n]   execute n instructions (default 1)
  run        run until halted or the step limit
  status     treadmill status display
  regs       machine registers
  ram        memory contents
  list       program listing
  quit       leave the console`

// console steps a loaded program under user control.
func console(emu *emulator.Emulator, name string, maxSteps int) (err error) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	prompt := name + "> "

	for {
		var line string
		line, err = ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			err = nil
			fmt.Println()
			return
		}
		if err != nil {
			return
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		ln.AppendHistory(line)

		switch words[0] {
		case "step", "s":
			count := 1
			if len(words) > 1 {
				count, err = strconv.Atoi(words[1])
				if err != nil || count < 1 {
					fmt.Printf("step: invalid count %q\n", words[1])
					err = nil
					continue
				}
			}
			for range count {
				if !stepOne(emu) {
					break
				}
			}
		case "run", "r":
			err = emu.Run(maxSteps)
			if err != nil {
				fmt.Println(err)
				err = nil
			}
		case "status":
			emu.Status()
		case "regs":
			fmt.Print(emu.Cpu.String())
		case "ram":
			state := emu.Snapshot()
			for n := 0; n < cpu.RAM_SIZE; n += 8 {
				fmt.Printf("%3d: %v\n", n, state.Ram[n:n+8])
			}
		case "list":
			for pc, ins := range emu.Program.All() {
				mark := " "
				if pc == emu.Pc {
					mark = ">"
				}
				dbg := emu.Program.Debug(pc)
				for _, label := range dbg.Labels {
					fmt.Printf("      %v:\n", label)
				}
				fmt.Printf("%v %3d  %v\n", mark, pc, ins)
			}
		case "help", "?":
			fmt.Println(consoleHelp)
		case "quit", "q":
			return
		default:
			fmt.Printf("%v: unknown command, try help\n", words[0])
		}
	}
}

// stepOne executes one instruction, reporting where it is. It returns
// false once the program can no longer advance.
func stepOne(emu *emulator.Emulator) bool {
	if emu.Halted {
		fmt.Println("halted")
		return false
	}

	pc := emu.Pc
	dbg := emu.Program.Debug(pc)
	if dbg.Instruction != nil {
		fmt.Printf("%3d  %v\n", pc, dbg.Instruction)
	}

	done, err := emu.Tick()
	if err != nil {
		fmt.Println(err)
		return false
	}

	if dbg.Instruction != nil && dbg.Opcode.Jumps() && emu.Pc != pc+1 {
		fmt.Printf("     -> %d\n", emu.Pc)
	}

	return !done
}
