package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wwp-bim/acc-docs-sync/acc"
	"github.com/wwp-bim/acc-docs-sync/app"
	"github.com/wwp-bim/acc-docs-sync/config"
	"github.com/wwp-bim/acc-docs-sync/reconcile"
	"github.com/wwp-bim/acc-docs-sync/workbook"
)

var SyncCmd = Sync{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		debug:       false,
	},
	workbook: "",
	exclude:  "",
	report:   "",
	dryrun:   false,
}

type Sync struct {
	command
	target
	workbook string
	exclude  string
	report   string
	dryrun   bool
}

func (cmd *Sync) Name() string {
	return "sync"
}

func (cmd *Sync) Description() string {
	return "Updates the descriptions of the files in a folder from a spreadsheet"
}

func (cmd *Sync) Usage() string {
	return "[--url <url> | --project <id> --folder <urn>] --workbook <file|url>"
}

func (cmd *Sync) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] sync [options] [--url <url> | --project <id> --folder <urn>] --workbook <file|url>\n", APP)
	fmt.Println()
	fmt.Println("  Matches the files in an ACC Docs folder against the rows of a spreadsheet by file name")
	fmt.Println("  (case-insensitive, extension optional) and sets the description of the latest version")
	fmt.Println("  of each matched file to the description in the spreadsheet. Files without a matching")
	fmt.Println("  row, rows without a description and read-only file types are skipped.")
	fmt.Println()
	fmt.Println("  Without --url or --project/--folder the last folder URL is used and without --workbook")
	fmt.Println("  the last spreadsheet is used.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s sync --url \"https://acc.autodesk.com/docs/files/projects/8ad7c0a2-...?folderUrn=urn%%3Aadsk.wipprod%%3Afs.folder%%3Aco.X\" \\\n", APP)
	fmt.Println(`                       --workbook "descriptions.xlsx" \`)
	fmt.Println(`                       --dryrun \`)
	fmt.Println(`                       --report "sync.tsv"`)
	fmt.Println()
}

func (cmd *Sync) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("sync")

	cmd.target.flags(flagset)

	flagset.StringVar(&cmd.workbook, "workbook", cmd.workbook, "Spreadsheet file (.xlsx, .tsv) or Google Sheets URL")
	flagset.StringVar(&cmd.exclude, "exclude-type", cmd.exclude, "Comma separated list of item types that are not updated (overrides ACC_EXCLUDED_TYPES)")
	flagset.StringVar(&cmd.report, "report", cmd.report, "Writes the outcome for every file to a TSV file")
	flagset.BoolVar(&cmd.dryrun, "dryrun", cmd.dryrun, "Reports the updates without changing any descriptions")

	return flagset
}

func (cmd *Sync) Execute(args ...any) error {
	ctx, options := unpack(args)

	cmd.debug = options.Debug

	if err := cmd.target.validate(); err != nil {
		return err
	}

	s, err := cmd.open(ctx, app.Options{DryRun: cmd.dryrun}, cmd.configure)
	if err != nil {
		return err
	}

	defer s.close(ctx)

	path := strings.TrimSpace(cmd.workbook)
	if path == "" {
		if path = s.Settings().LastExcelPath; path == "" {
			return fmt.Errorf("--workbook is a required option")
		}

		infof("Using last spreadsheet %v", path)
	}

	if err := s.signin(ctx); err != nil {
		return err
	}

	// ... load the folder and the spreadsheet concurrently
	files := app.Go(ctx, s.App, func(ctx context.Context) ([]acc.FileItem, error) {
		return cmd.target.load(ctx, s)
	})

	sheet := app.Go(ctx, s.App, func(ctx context.Context) (*workbook.Diagnostics, error) {
		d := s.LoadWorkbook(ctx, path)
		return d, nil
	})

	f := <-files
	w := <-sheet

	if f.Err != nil {
		return f.Err
	} else if w.Err != nil {
		return w.Err
	}

	if w.Value.Err != nil {
		warnf("Spreadsheet not loaded - no file will match (%v)", w.Value.Err)
	}

	if cmd.debug || w.Value.Err != nil {
		printDiagnostics(os.Stdout, s.Diagnostics())
		fmt.Println()
	}

	if len(f.Value) == 0 {
		return nil
	}

	result, err := s.RunReconciliation(ctx)
	if result != nil {
		printResult(os.Stdout, result)

		if cmd.report != "" {
			if err := cmd.write(result); err != nil {
				warnf("Report not written (%v)", err)
			} else {
				infof("Report written to %v", cmd.report)
			}
		}
	}

	if err != nil {
		return err
	}

	if result.Failed > 0 {
		return fmt.Errorf("%v updates failed", result.Failed)
	}

	return nil
}

func (cmd *Sync) configure(cfg *config.Config) {
	if v := strings.TrimSpace(cmd.exclude); v != "" {
		types := []string{}
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}

		cfg.ExcludedTypes = types
	}
}

func (cmd *Sync) write(result *reconcile.Result) error {
	if err := os.MkdirAll(filepath.Dir(cmd.report), 0770); err != nil {
		return err
	}

	f, err := os.Create(cmd.report)
	if err != nil {
		return err
	}

	defer f.Close()

	if err := writeReport(f, result); err != nil {
		return err
	}

	return f.Close()
}
