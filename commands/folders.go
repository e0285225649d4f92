package commands

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/wwp-bim/acc-docs-sync/app"
)

var FoldersCmd = Folders{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		debug:       false,
	},
	hub:     "",
	project: "",
	folders: "",
}

type Folders struct {
	command
	hub     string
	project string
	folders string
}

func (cmd *Folders) Name() string {
	return "folders"
}

func (cmd *Folders) Description() string {
	return "Displays the folder tree of a project"
}

func (cmd *Folders) Usage() string {
	return "--hub <hub> --project <project> [--folder <id>]"
}

func (cmd *Folders) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] folders [options] --hub <hub> --project <project> [--folder <id>]\n", APP)
	fmt.Println()
	fmt.Println("  Displays the top folders of a project with 'Project Files' expanded. Additional folders")
	fmt.Println("  can be expanded with --folder, which may be repeated as a comma separated list of folder")
	fmt.Println("  IDs. Folders that have not been expanded are marked with '+'.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s folders --hub \"WWP Architects\" --project \"Harbour Tower\" \\\n", APP)
	fmt.Println(`                          --folder "urn:adsk.wipprod:fs.folder:co.9bW0kqyhQ0i1fXOXmCd3Bw"`)
	fmt.Println()
}

func (cmd *Folders) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("folders")

	flagset.StringVar(&cmd.hub, "hub", cmd.hub, "Hub ID or name")
	flagset.StringVar(&cmd.project, "project", cmd.project, "Project ID or name")
	flagset.StringVar(&cmd.folders, "folder", cmd.folders, "Comma separated list of folder IDs to expand")

	return flagset
}

func (cmd *Folders) Execute(args ...any) error {
	ctx, options := unpack(args)

	cmd.debug = options.Debug

	if strings.TrimSpace(cmd.hub) == "" {
		return fmt.Errorf("--hub is a required option")
	}

	if strings.TrimSpace(cmd.project) == "" {
		return fmt.Errorf("--project is a required option")
	}

	s, err := cmd.open(ctx, app.Options{})
	if err != nil {
		return err
	}

	defer s.close(ctx)

	if err := s.signin(ctx); err != nil {
		return err
	}

	if _, err := s.SelectHub(ctx, cmd.hub); err != nil {
		return err
	}

	tree, err := s.SelectProject(ctx, cmd.project)
	if err != nil {
		return err
	}

	// ... expand in order so that a child of an expanded folder can be expanded too
	for _, id := range strings.Split(cmd.folders, ",") {
		if id = strings.TrimSpace(id); id != "" {
			if _, err := s.ExpandFolder(ctx, id); err != nil {
				return err
			}
		}
	}

	printTree(os.Stdout, tree, 0)

	return nil
}
