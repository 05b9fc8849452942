// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const (
	MACRO_DEPTH_LIMIT     = 16      // Maximum nesting of macro expansions.
	EXPRESSION_STEP_LIMIT = 1 << 20 // Maximum Starlark steps for a $() expression.
	SOURCE_LINE_LIMIT     = 1 << 20 // Maximum length of a source line.
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// sourceLine is a line of source after directive, equate and macro
// expansion, waiting for the label and decode passes.
type sourceLine struct {
	LineNo  int
	Line    string
	Macro   string
	IsLabel bool
	Label   string
	Words   []string
	Raw     []string // Words with macro arguments, but not equates, substituted.
}

// wrap locates an error at the source line.
func (src *sourceLine) wrap(err error) error {
	if len(src.Macro) != 0 {
		err = &ErrMacro{Macro: src.Macro, Line: src.LineNo, Err: err}
	}
	return &ErrSyntax{LineNo: src.LineNo, Line: src.Line, Err: err}
}

// Assembler is a two pass macro assembler for the treadmill machine.
//
// The first pass binds every label to the index of the instruction that
// follows it, so jumps may refer forwards or backwards. The second pass
// decodes each instruction and checks its operand count.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to instruction indexes.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	args       map[string]string // Arguments of the macros being expanded.
	lines      []sourceLine
	expansions int
	depth      int
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// splitWords splits a line on whitespace and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// stripComment removes a ';' comment and surrounding whitespace.
func stripComment(text string) string {
	line, _, _ := strings.Cut(text, ";")
	return strings.TrimSpace(line)
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
)

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	thread.SetMaxExecutionSteps(EXPRESSION_STEP_LIMIT)
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	define := func(key, str string) {
		equate, ok := asm.Equate[str]
		if ok {
			str = equate
		}
		v, perr := strconv.ParseInt(str, 0, 64)
		if perr != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			return
		}
		pred[key] = starlark.MakeInt64(v)
	}
	for key, str := range asm.Equate {
		define(key, str)
	}
	for key, str := range asm.args {
		define(key, str)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrParseExpression(expr), err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// evaluate replaces character literals and $() expressions with their
// decimal values.
func (asm *Assembler) evaluate(line string) (out string, err error) {
	out = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			switch str[1:] {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		}
		return strconv.Itoa(int(str[0]))
	})

	out = reExpression.ReplaceAllStringFunc(out, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return strconv.FormatInt(value, 10)
	})

	return
}

// expand handles a single comment-stripped line: equate definitions,
// equate substitution and macro expansion. Labels and instructions are
// queued for the label and decode passes.
func (asm *Assembler) expand(line string, lineno int, macro string) (err error) {
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	src := sourceLine{LineNo: lineno, Line: line, Macro: macro}

	line, err = asm.evaluate(line)
	if err != nil {
		return
	}

	if len(line) == 0 {
		return
	}

	if strings.HasSuffix(line, ":") {
		src.IsLabel = true
		src.Label = strings.TrimSpace(line[:len(line)-1])
		asm.lines = append(asm.lines, src)
		return
	}

	words := splitWords(line)
	if len(words) == 0 {
		err = ErrOpcodeMissing
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		value := words[2]
		arg, ok := asm.args[value]
		if ok {
			value = arg
		}
		equate, ok := asm.Equate[value]
		if ok {
			value = equate
		}
		// Integer equates are stored in decimal, the only literal
		// form the machine resolves at run time.
		v, perr := strconv.ParseInt(value, 0, 64)
		if perr == nil {
			value = strconv.FormatInt(v, 10)
		}
		asm.Equate[words[1]] = value
		return
	}

	// Equates are substituted last, so that a jump may still name a
	// label that shares its name with an equate.
	raw := make([]string, len(words))
	for n, word := range words {
		arg, ok := asm.args[word]
		if ok {
			word = arg
		}
		raw[n] = word
		equate, ok := asm.Equate[word]
		if ok {
			word = equate
		}
		words[n] = word
	}

	// .macro processing
	def, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := raw[1:]
		if len(args) != len(def.Args) {
			err = ErrMacroSyntax
			return
		}
		if asm.depth >= MACRO_DEPTH_LIMIT {
			err = ErrMacroRecursion
			return
		}

		asm.depth++
		asm.expansions++
		prefix := fmt.Sprintf("%v_%v_", name, asm.expansions)

		old_equate := maps.Clone(asm.Equate)
		old_args := maps.Clone(asm.args)
		for n, arg := range def.Args {
			asm.args[arg] = args[n]
		}
		defer func() {
			asm.Equate = old_equate
			asm.args = old_args
			asm.depth--
		}()

		for n, body := range def.Lines {
			body_lineno := def.LineNo + n
			body = strings.ReplaceAll(body, "@", prefix)
			err = asm.expand(body, body_lineno, name)
			if err != nil {
				var located *ErrSyntax
				if !errors.As(err, &located) {
					err = (&sourceLine{LineNo: body_lineno, Line: body, Macro: name}).wrap(err)
				}
				return
			}
		}

		return
	}

	src.Words = words
	src.Raw = raw
	asm.lines = append(asm.lines, src)

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(nil, SOURCE_LINE_LIMIT)

	var line string
	var lineno int
	var macro *Macro

	if asm.Label == nil {
		asm.Label = make(map[string]int, 16)
	}
	clear(asm.Label)
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
	asm.args = map[string]string{}
	asm.lines = asm.lines[:0]
	asm.expansions = 0
	asm.depth = 0

	located := func(err error) error {
		var already *ErrSyntax
		if errors.As(err, &already) {
			return err
		}
		return &ErrSyntax{LineNo: lineno, Line: line, Err: err}
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		line = stripComment(text)
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = located(ErrMacroNesting)
				return
			}
			if len(words) < 2 {
				err = located(ErrMacroSyntax)
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = located(ErrMacroDuplicate)
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
				Args:   words[2:],
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = located(ErrMacroLonelyEndm)
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		err = asm.expand(line, lineno, "")
		if err != nil {
			err = located(err)
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		lineno++
		line = ""
		err = located(err)
		return
	}

	if macro != nil {
		err = located(ErrMacroLonely)
		return
	}

	// Pass 1: bind labels to the index of the next instruction.
	index := 0
	for n := range asm.lines {
		src := &asm.lines[n]
		if !src.IsLabel {
			index++
			continue
		}
		_, ok := asm.Label[src.Label]
		if ok {
			err = src.wrap(ErrLabelDuplicate)
			return
		}
		asm.Label[src.Label] = index
		if asm.Verbose {
			log.Printf("asm: label %v = %v", src.Label, index)
		}
	}

	// Pass 2: decode instructions.
	instructions := make([]Instruction, 0, index)
	for n := range asm.lines {
		src := &asm.lines[n]
		if src.IsLabel {
			continue
		}

		op, ok := ParseOpcode(src.Words[0])
		if !ok {
			err = src.wrap(ErrOpcodeUnknown(strings.ToUpper(src.Words[0])))
			return
		}

		operands := slices.Clone(src.Words[1:])
		if len(operands) != op.Arity() {
			err = src.wrap(&ErrArity{Opcode: op, Expect: op.Arity(), Got: len(operands)})
			return
		}

		// Labels take precedence over equates for jump targets.
		target := op.Target()
		if target >= 0 {
			label := src.Raw[target+1]
			_, ok := asm.Label[label]
			if ok {
				operands[target] = label
			}
		}

		instructions = append(instructions, Instruction{
			LineNo:   src.LineNo,
			Line:     src.Line,
			Opcode:   op,
			Operands: operands,
		})
	}

	prog = &Program{
		Instructions: instructions,
		Labels:       maps.Clone(asm.Label),
	}

	return
}
