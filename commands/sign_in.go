package commands

import (
	"flag"
	"fmt"
	"time"

	"github.com/wwp-bim/acc-docs-sync/app"
)

var SignInCmd = SignIn{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		debug:       false,
	},
}

type SignIn struct {
	command
}

func (cmd *SignIn) Name() string {
	return "sign-in"
}

func (cmd *SignIn) Description() string {
	return "Signs in to Autodesk Platform Services"
}

func (cmd *SignIn) Usage() string {
	return ""
}

func (cmd *SignIn) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] sign-in [options]\n", APP)
	fmt.Println()
	fmt.Println("  Opens the Autodesk sign-in page in the default browser and waits for the sign-in to")
	fmt.Println("  complete. The client ID and secret are taken from CLIENT_ID and CLIENT_SECRET in the")
	fmt.Println("  environment or a .env file next to the executable. The access token is cached in")
	fmt.Println("  the settings until it expires.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s sign-in\n", APP)
	fmt.Println()
}

func (cmd *SignIn) FlagSet() *flag.FlagSet {
	return cmd.flagset("sign-in")
}

func (cmd *SignIn) Execute(args ...any) error {
	ctx, options := unpack(args)

	cmd.debug = options.Debug

	s, err := cmd.open(ctx, app.Options{})
	if err != nil {
		return err
	}

	defer s.close(ctx)

	if err := s.SignIn(ctx); err != nil {
		return err
	}

	if v := s.Settings().Expiry(); !v.IsZero() {
		fmt.Printf("Signed in (access token expires %v)\n", v.Local().Format(time.DateTime))
	}

	return nil
}
