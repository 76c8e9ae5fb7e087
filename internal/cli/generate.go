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

func runGenerate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet("generate", flag.ContinueOnError)
		fs.SetOutput(stderr)
		var flags clientFlags
		flags.register(fs)
		topic := fs.String("topic", "", "Topic to generate a book about")
		description := fs.String("description", "", "Optional context for personalization")
		interactive := fs.Bool("interactive", false, "Keep the live view open; press r to generate again")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}

		req := topicbook.TaskRequest{
			Topic:       *topic,
			Description: *description,
		}
		if req.Topic == "" {
			req.Topic = strings.Join(fs.Args(), " ")
		} else if fs.NArg() > 0 {
			fmt.Fprintln(stderr, "generate accepts either --topic or a positional topic, not both")
			return ExitUsage
		}
		if err := req.Validate(); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, err := flags.load()
		if err != nil {
			return reportConfigError(stderr, err)
		}

		submit := func(ctx context.Context, mon *monitor.Monitor) error {
			_, err := mon.Submit(ctx, req)
			return err
		}
		s := session{
			cfg:     cfg,
			verbose: flags.verbose,
			topic:   req.Topic,
			linger:  *interactive,
			start:   submit,
		}
		if *interactive {
			s.resubmit = submit
		}
		return runSession(s, stdout, stderr)
	}
}
