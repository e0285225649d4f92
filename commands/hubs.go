package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/wwp-bim/acc-docs-sync/app"
)

var HubsCmd = Hubs{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		debug:       false,
	},
}

type Hubs struct {
	command
}

func (cmd *Hubs) Name() string {
	return "hubs"
}

func (cmd *Hubs) Description() string {
	return "Lists the hubs accessible to the signed in user"
}

func (cmd *Hubs) Usage() string {
	return ""
}

func (cmd *Hubs) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] hubs [options]\n", APP)
	fmt.Println()
	fmt.Println("  Lists the hubs accessible to the signed in user, signing in first if necessary")
	fmt.Println()

	helpOptions(cmd.FlagSet())
	fmt.Println()
}

func (cmd *Hubs) FlagSet() *flag.FlagSet {
	return cmd.flagset("hubs")
}

func (cmd *Hubs) Execute(args ...any) error {
	ctx, options := unpack(args)

	cmd.debug = options.Debug

	s, err := cmd.open(ctx, app.Options{})
	if err != nil {
		return err
	}

	defer s.close(ctx)

	if err := s.signin(ctx); err != nil {
		return err
	}

	hubs, err := s.Hubs(ctx)
	if err != nil {
		return err
	}

	printHubs(os.Stdout, hubs)

	return nil
}
