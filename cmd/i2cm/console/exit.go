package console

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Exitf formats a message and wraps it in a cli exit code, so command
// actions can bail out with a single return.
func Exitf(code int, format string, args ...interface{}) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf(format, args...), code)
}
