package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipdeck/internal/control"
	"go.klb.dev/clipdeck/internal/history"
	"go.klb.dev/clipdeck/internal/message"
)

// newClientCmd builds a command that talks to a running daemon.
func newClientCmd(use, short string, args cobra.PositionalArgs, run func(*cobra.Command, *control.Client, []string) error) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    args,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, a []string) error {
			return run(cmd, control.NewClient(v.GetString("socket")), a)
		},
	}
	addConfigFlag(cmd)
	addSocketFlag(cmd)
	return cmd
}

func newToggleCmd() *cobra.Command {
	return newClientCmd("toggle", "Show or hide the search view", cobra.NoArgs,
		func(_ *cobra.Command, c *control.Client, _ []string) error {
			return c.Toggle()
		})
}

func newQuitCmd() *cobra.Command {
	return newClientCmd("quit", "Stop the running daemon", cobra.NoArgs,
		func(_ *cobra.Command, c *control.Client, _ []string) error {
			return c.Quit()
		})
}

func newPushCmd() *cobra.Command {
	cmd := newClientCmd("push [text...]", "Add text to the history (reads stdin without arguments)", cobra.ArbitraryArgs,
		func(cmd *cobra.Command, c *control.Client, args []string) error {
			text, err := pushText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if text == "" {
				return fmt.Errorf("nothing to push")
			}
			changed, err := c.Push(text)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(cmd.ErrOrStderr(), "already the most recent entry")
			}
			return nil
		})
	cmd.Long = `Adds text to the running daemon's history, exactly as if it had been copied.
This works even when clipboard capture is unavailable.`
	return cmd
}

// pushText joins args with spaces, or reads all of stdin when there are none.
// A single trailing newline from stdin is dropped.
func pushText(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}

func newListCmd() *cobra.Command {
	var (
		query  string
		limit  int
		asJSON bool
	)
	cmd := newClientCmd("list", "Print the history, newest first or ranked by --query", cobra.NoArgs,
		func(cmd *cobra.Command, c *control.Client, _ []string) error {
			entries, err := c.List(query, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			return printTable(cmd.OutOrStdout(), entries, time.Now())
		})
	f := cmd.Flags()
	f.StringVarP(&query, "query", "q", "", "fuzzy query")
	f.IntVarP(&limit, "limit", "n", 0, "maximum entries to print (0 = all)")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printJSON(w io.Writer, entries []message.Entry) error {
	if entries == nil {
		entries = []message.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func printTable(w io.Writer, entries []message.Entry, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.ID, fmtAge(now.Sub(e.CreatedAt)), history.Preview(e.Content, 80))
	}
	return tw.Flush()
}

func fmtAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
