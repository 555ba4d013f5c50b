// Package console renders cli output: colored status lines, wire
// dumps and interactive prompts. Output goes straight to the terminal;
// the structured logger stays reserved for diagnostics.
package console

import (
	"fmt"
	"os"
)

const PictoPlug = "🔌"
const PictoChip = "💾"
const PictoScan = "🔍"
const PictoFinish = "🏁"
const PictoStop = "🚫"
const PictoNotebook = "📒"
const PictoWrench = "🔧"

// Trace enables wire-level dumps in transports that cannot see the
// command context.
var Trace bool

func Error(msg string) {
	_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", Red("ERROR"), msg)
}

func Errorf(msg string, args ...interface{}) {
	Error(fmt.Sprintf(msg, args...))
}

func Warn(msg string) {
	_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", Yellow("WARN"), msg)
}

func Debug(msg string) {
	if Trace {
		_, _ = fmt.Fprintf(os.Stdout, "%s %s\n", White("[DEBUG]"), msg)
	}
}

func Debugf(msg string, args ...interface{}) {
	Debug(fmt.Sprintf(msg, args...))
}

// PInfof prints a status line prefixed with a pictogram.
func PInfof(picto, msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stdout, "%s %s\n", picto, fmt.Sprintf(msg, args...))
}

func Print(msg string) {
	_, _ = fmt.Fprintln(os.Stdout, msg)
}

func Printf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stdout, msg, args...)
}
