// clipdeck: clipboard history with fuzzy search.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clipdeck",
		Short: "Clipboard history with fuzzy search",
		Long: `clipdeck watches the system clipboard and keeps a bounded, deduplicated
history of text snippets. Double-tap Ctrl to search it; pick an entry to copy
it back to the clipboard.

Run "clipdeck run" in a terminal to start the daemon and its search view.
Use "clipdeck toggle/quit/push/list" from any shell to talk to it.

Config file search order (first found wins):
  /etc/clipdeck/clipdeck.toml
  $HOME/.config/clipdeck/clipdeck.toml
  path supplied via --config

All flags can be set via CLIPDECK_<FLAG> env vars or config-file keys.
See "clipdeck run --help" for the full flag reference.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRunCmd(),
		newToggleCmd(),
		newQuitCmd(),
		newPushCmd(),
		newListCmd(),
		newVersionCmd(),
	)
	return root
}

// printError lists config field errors one per line.
func printError(err error) {
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		fmt.Fprintln(os.Stderr, "Error: invalid configuration")
		for _, fe := range fieldErrs {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", fe.Field, fe.Err)
		}
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clipdeck %s\n", Version)
		},
	}
}
