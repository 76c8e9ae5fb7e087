package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"topicbook/internal/monitor"
	"topicbook/pkg/topicbook"
)

func runWatch(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet("watch", flag.ContinueOnError)
		fs.SetOutput(stderr)
		var flags clientFlags
		flags.register(fs)
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
			fmt.Fprintln(stderr, "watch requires exactly one task id")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		id := topicbook.TaskID(strings.TrimSpace(fs.Arg(0)))

		cfg, err := flags.load()
		if err != nil {
			return reportConfigError(stderr, err)
		}
		return runSession(session{
			cfg:     cfg,
			verbose: flags.verbose,
			start: func(_ context.Context, mon *monitor.Monitor) error {
				return mon.Attach(id)
			},
		}, stdout, stderr)
	}
}
