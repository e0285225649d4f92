package commands

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/wwp-bim/acc-docs-sync/app"
)

var ProjectsCmd = Projects{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		debug:       false,
	},
	hub: "",
}

type Projects struct {
	command
	hub string
}

func (cmd *Projects) Name() string {
	return "projects"
}

func (cmd *Projects) Description() string {
	return "Lists the projects in a hub"
}

func (cmd *Projects) Usage() string {
	return "--hub <hub>"
}

func (cmd *Projects) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] projects [options] --hub <hub>\n", APP)
	fmt.Println()
	fmt.Println("  Lists the projects in a hub, sorted by name. The hub may be given by ID or name.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s projects --hub \"b.0a5c3e1d-4f1b-4c2e-9a11-2d8f6a9b7c31\"\n", APP)
	fmt.Printf("    %s projects --hub \"WWP Architects\"\n", APP)
	fmt.Println()
}

func (cmd *Projects) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("projects")

	flagset.StringVar(&cmd.hub, "hub", cmd.hub, "Hub ID or name")

	return flagset
}

func (cmd *Projects) Execute(args ...any) error {
	ctx, options := unpack(args)

	cmd.debug = options.Debug

	if strings.TrimSpace(cmd.hub) == "" {
		return fmt.Errorf("--hub is a required option")
	}

	s, err := cmd.open(ctx, app.Options{})
	if err != nil {
		return err
	}

	defer s.close(ctx)

	if err := s.signin(ctx); err != nil {
		return err
	}

	projects, err := s.SelectHub(ctx, cmd.hub)
	if err != nil {
		return err
	}

	printProjects(os.Stdout, projects)

	return nil
}
