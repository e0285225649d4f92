package commands

import (
	"flag"
	"fmt"
)

// Help is the 'help' command. It lists the commands or displays the long form help
// for a single command.
type Help struct {
	app string
	cli []Command
	fs  *flag.FlagSet
}

func NewHelp(app string, cli []Command) *Help {
	return &Help{
		app: app,
		cli: cli,
	}
}

func (h *Help) Name() string {
	return "help"
}

func (h *Help) FlagSet() *flag.FlagSet {
	if h.fs == nil {
		h.fs = flag.NewFlagSet("help", flag.ExitOnError)
	}

	return h.fs
}

func (h *Help) Description() string {
	return "Displays the help for a command"
}

func (h *Help) Usage() string {
	return "<command>"
}

func (h *Help) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s help <command>\n", h.app)
	fmt.Println()
	fmt.Println("  Displays the help for a command")
	fmt.Println()
}

func (h *Help) Execute(args ...any) error {
	if h.fs != nil && h.fs.NArg() > 0 {
		name := h.fs.Arg(0)
		if name == h.Name() {
			h.Help()
			return nil
		}

		for _, c := range h.cli {
			if c.Name() == name {
				c.Help()
				return nil
			}
		}

		return fmt.Errorf("unknown command '%v'", name)
	}

	h.usage()

	return nil
}

func (h *Help) usage() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] <command> [options]\n", h.app)
	fmt.Println()
	fmt.Println("  Commands:")
	fmt.Println()
	fmt.Printf("    %-12s %s\n", h.Name(), h.Description())

	for _, c := range h.cli {
		fmt.Printf("    %-12s %s\n", c.Name(), c.Description())
	}

	fmt.Println()
	fmt.Println("  Options:")
	fmt.Println()
	fmt.Println("    --debug      Displays internal information for diagnosing errors")
	fmt.Println()
	fmt.Printf("  Use '%s help <command>' for the options for a command\n", h.app)
	fmt.Println()
}
