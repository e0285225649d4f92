package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/wwp-bim/acc-docs-sync/commands"
)

var cli = []commands.Command{
	&commands.VersionCmd,
	&commands.AuthoriseCmd,
	&commands.SignInCmd,
	&commands.SignOutCmd,
	&commands.HubsCmd,
	&commands.ProjectsCmd,
	&commands.FoldersCmd,
	&commands.FilesCmd,
	&commands.InspectCmd,
	&commands.GetCmd,
	&commands.SyncCmd,
}

var options = commands.Options{
	Debug: false,
}

var help = commands.NewHelp(commands.APP, cli)

func main() {
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Parse()

	cmd, err := commands.Parse(cli, help)
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if cmd == nil {
		help.Execute(ctx)
		os.Exit(1)
	}

	if err = cmd.Execute(ctx, &options); err != nil {
		cancel()
		log.Fatalf("ERROR: %v", err)
	}
}
