package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/wwp-bim/acc-docs-sync/acc"
	"github.com/wwp-bim/acc-docs-sync/app"
)

var FilesCmd = Files{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		debug:       false,
	},
}

type Files struct {
	command
	target
}

// target identifies a folder either by a URL copied from the ACC Docs web UI or by
// project and folder ID. The last folder URL is used if neither is given.
type target struct {
	url     string
	project string
	folder  string
}

func (t *target) flags(flagset *flag.FlagSet) {
	flagset.StringVar(&t.url, "url", t.url, "ACC Docs folder URL, copied from the browser address bar")
	flagset.StringVar(&t.project, "project", t.project, "Project ID (alternative to --url)")
	flagset.StringVar(&t.folder, "folder", t.folder, "Folder URN (alternative to --url)")
}

func (t target) validate() error {
	if strings.TrimSpace(t.url) != "" {
		return nil
	}

	if (strings.TrimSpace(t.project) == "") != (strings.TrimSpace(t.folder) == "") {
		return fmt.Errorf("--project and --folder must be used together")
	}

	return nil
}

func (t target) load(ctx context.Context, s *session) ([]acc.FileItem, error) {
	url := strings.TrimSpace(t.url)
	project := strings.TrimSpace(t.project)
	folder := strings.TrimSpace(t.folder)

	switch {
	case url != "":
		return s.LoadFolderURL(ctx, url)

	case project != "" && folder != "":
		return s.SelectFolderIn(ctx, project, folder)

	default:
		last := s.Settings().LastFolderURL
		if last == "" {
			return nil, fmt.Errorf("--url or --project and --folder are required (no folder URL remembered)")
		}

		infof("Using last folder URL %v", last)

		return s.LoadFolderURL(ctx, last)
	}
}

func (cmd *Files) Name() string {
	return "files"
}

func (cmd *Files) Description() string {
	return "Lists the files in a folder with their descriptions"
}

func (cmd *Files) Usage() string {
	return "--url <url> | --project <id> --folder <urn>"
}

func (cmd *Files) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] files [options] [--url <url> | --project <id> --folder <urn>]\n", APP)
	fmt.Println()
	fmt.Println("  Lists the files in a folder with their current descriptions. Subfolders are not")
	fmt.Println("  included. Without --url or --project/--folder the last folder URL is used.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s files --url \"https://acc.autodesk.com/docs/files/projects/8ad7c0a2-...?folderUrn=urn%%3Aadsk.wipprod%%3Afs.folder%%3Aco.X\"\n", APP)
	fmt.Println()
}

func (cmd *Files) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("files")

	cmd.target.flags(flagset)

	return flagset
}

func (cmd *Files) Execute(args ...any) error {
	ctx, options := unpack(args)

	cmd.debug = options.Debug

	if err := cmd.target.validate(); err != nil {
		return err
	}

	s, err := cmd.open(ctx, app.Options{})
	if err != nil {
		return err
	}

	defer s.close(ctx)

	if err := s.signin(ctx); err != nil {
		return err
	}

	files, err := cmd.target.load(ctx, s)
	if err != nil {
		return err
	}

	printFiles(os.Stdout, files)

	return nil
}
