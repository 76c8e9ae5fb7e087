package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"topicbook/internal/catalog"
	"topicbook/pkg/topicbook"
)

func runBooks(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet("books", flag.ContinueOnError)
		fs.SetOutput(stderr)
		var flags clientFlags
		flags.register(fs)
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
			return ExitUsage
		}
		cfg, err := flags.load()
		if err != nil {
			return reportConfigError(stderr, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		names, err := newClient(cfg).ListBooks(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "list books: %v\n", err)
			return ExitError
		}
		fmt.Fprint(stdout, catalog.FormatList(names, cfg.NoColor))
		return ExitOK
	}
}

func runRead(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet("read", flag.ContinueOnError)
		fs.SetOutput(stderr)
		var flags clientFlags
		flags.register(fs)
		raw := fs.Bool("raw", false, "Print the markdown source")
		width := fs.Int("width", 0, "Wrap width (default: terminal width)")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		selector := strings.TrimSpace(strings.Join(fs.Args(), " "))
		if selector == "" {
			fmt.Fprintln(stderr, "read requires a book number, title or filename")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		cfg, err := flags.load()
		if err != nil {
			return reportConfigError(stderr, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		book, err := catalog.Lookup(ctx, newClient(cfg), selector)
		if err != nil {
			if errors.Is(err, topicbook.ErrBookNotFound) {
				fmt.Fprintf(stderr, "no book matches %q\n", selector)
			} else {
				fmt.Fprintf(stderr, "read book: %v\n", err)
			}
			return ExitError
		}
		if *raw {
			fmt.Fprint(stdout, book.Content)
			if !strings.HasSuffix(book.Content, "\n") {
				fmt.Fprintln(stdout)
			}
			return ExitOK
		}
		w := *width
		if w <= 0 {
			w = terminalWidth(stdout, 80)
		}
		rendered, err := catalog.Render(book, catalog.RenderOptions{Width: w, NoColor: cfg.NoColor})
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitError
		}
		fmt.Fprint(stdout, rendered)
		return ExitOK
	}
}
