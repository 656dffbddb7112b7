package cli

import (
	"fmt"
	"io"

	"github.com/matzehuels/diagramview/internal/tui"
	"github.com/matzehuels/diagramview/pkg/errors"
)

// stdinName is the argument that selects standard input.
const stdinName = "-"

// openSource resolves a command argument to a markup source.
// Standard input is read fully up front since it cannot be reloaded.
func openSource(arg string, stdin io.Reader) (tui.Source, bool, error) {
	if arg != "" && arg != stdinName {
		return tui.FileSource{Path: arg}, false, nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, errors.MaxMarkupSize+1))
	if err != nil {
		return nil, true, fmt.Errorf("read stdin: %w", err)
	}
	return tui.StaticSource{Label: "stdin", Markup: string(data)}, true, nil
}

// argOrStdin returns the first argument, or "-" when there is none.
func argOrStdin(args []string) string {
	if len(args) == 0 {
		return stdinName
	}
	return args[0]
}
