package commands

import (
	"flag"
	"fmt"

	"github.com/wwp-bim/acc-docs-sync/app"
)

var SignOutCmd = SignOut{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		debug:       false,
	},
}

type SignOut struct {
	command
}

func (cmd *SignOut) Name() string {
	return "sign-out"
}

func (cmd *SignOut) Description() string {
	return "Discards the cached Autodesk access token"
}

func (cmd *SignOut) Usage() string {
	return ""
}

func (cmd *SignOut) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] sign-out [options]\n", APP)
	fmt.Println()
	fmt.Println("  Discards the current session and removes the cached access token from the settings.")
	fmt.Println("  The remembered folder URL and spreadsheet path are kept.")
	fmt.Println()

	helpOptions(cmd.FlagSet())
	fmt.Println()
}

func (cmd *SignOut) FlagSet() *flag.FlagSet {
	return cmd.flagset("sign-out")
}

func (cmd *SignOut) Execute(args ...any) error {
	ctx, options := unpack(args)

	cmd.debug = options.Debug

	s, err := cmd.open(ctx, app.Options{})
	if err != nil {
		return err
	}

	defer closeStore(s.store)

	return s.SignOut(ctx)
}
