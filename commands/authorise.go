package commands

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/wwp-bim/acc-docs-sync/auth"
)

var AuthoriseCmd = Authorise{
	workdir:     DEFAULT_WORKDIR,
	credentials: DEFAULT_CREDENTIALS,
	redirect:    "http://127.0.0.1:8766/",
	timeout:     3 * time.Minute,
	debug:       false,
}

type Authorise struct {
	workdir     string
	credentials string
	redirect    string
	timeout     time.Duration
	debug       bool
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises acc-docs-sync to read Google Sheets workbooks"
}

func (cmd *Authorise) Usage() string {
	return "--credentials <file>"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] authorise [options] --credentials <file>\n", APP)
	fmt.Println()
	fmt.Println("  Authorises acc-docs-sync to read Google Sheets workbooks. The credentials file is the")
	fmt.Println("  OAuth2 client 'credentials.json' downloaded from the Google Cloud console and the")
	fmt.Println("  redirect URL must be registered as an authorised redirect URI for the client.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s authorise --credentials \"credentials.json\"\n", APP)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("authorise", flag.ExitOnError)

	flagset.StringVar(&cmd.workdir, "workdir", cmd.workdir, "Directory for working files (tokens, settings)")
	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path for the 'credentials.json' file")
	flagset.StringVar(&cmd.redirect, "redirect", cmd.redirect, "Loopback redirect URL for the authorisation response")
	flagset.DurationVar(&cmd.timeout, "timeout", cmd.timeout, "Time allowed to complete the authorisation in the browser")

	return flagset
}

func (cmd *Authorise) Execute(args ...any) error {
	ctx, options := unpack(args)

	cmd.debug = options.Debug

	if strings.TrimSpace(cmd.credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	config, err := googleConfig(cmd.credentials)
	if err != nil {
		return fmt.Errorf("invalid Google credentials (%v)", err)
	}

	config.RedirectURL = cmd.redirect

	token, err := auth.Authorize(ctx, config, cmd.timeout, auth.OpenBrowser, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if err != nil {
		return fmt.Errorf("authorisation error (%w)", err)
	}

	tokens := tokensFile(cmd.workdir, cmd.credentials)
	if err := saveToken(tokens, token); err != nil {
		return err
	}

	infof("Google Sheets tokens saved to %v", tokens)

	return nil
}
