package cli

import (
	"fmt"
	"io"

	"topicbook/internal/config"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Command is one topicbook subcommand.
type Command struct {
	Name    string
	Group   string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

// Command groups in the order they are listed.
const (
	groupSession = "Sessions"
	groupLibrary = "Library"
	groupBackend = "Backend"
)

var groupOrder = []string{groupSession, groupLibrary, groupBackend}

// Run dispatches args to a subcommand and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

// wantsHelp reports a help flag before any "--" terminator.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--":
			return false
		case "-h", "-help", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  topicbook <command> [options]")
	for _, group := range groupOrder {
		fmt.Fprintf(w, "\n%s:\n", group)
		for _, cmd := range commands {
			if cmd.Group == group {
				fmt.Fprintf(w, "  %-9s %s\n", cmd.Name, cmd.Summary)
			}
		}
	}
	fmt.Fprintf(w, "\nSettings come from %s, %s_* environment variables and flags.\n",
		config.ConfigPath("."), config.EnvPrefix)
	fmt.Fprintln(w, "Use \"topicbook <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(group, name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Group:   group,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command(groupSession, "generate", "Submit a topic and follow the generation log", []string{
		"topicbook generate [--description <text>] [--interactive] <topic>",
		"topicbook generate --topic <topic> [--description <text>]",
	}, runGenerate),
	command(groupSession, "watch", "Follow the log of an existing task", []string{
		"topicbook watch <task-id>",
	}, runWatch),
	command(groupLibrary, "books", "List generated books", []string{
		"topicbook books",
	}, runBooks),
	command(groupLibrary, "read", "Render a generated book", []string{
		"topicbook read [--raw] <number|title|filename>",
	}, runRead),
	command(groupBackend, "serve", "Run a local generation backend", []string{
		"topicbook serve [--addr <host:port>] [--library <dir>] [--ledger <db.duckdb>]",
	}, runServe),
}
