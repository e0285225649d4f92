package commands

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wwp-bim/acc-docs-sync/app"
	"github.com/wwp-bim/acc-docs-sync/workbook"
)

var GetCmd = Get{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		debug:       false,
	},

	workbook: "",
	file:     time.Now().Format("descriptions 2006-01-02T150405.tsv"),
}

type Get struct {
	command
	workbook string
	file     string
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Extracts the file name/description table from a spreadsheet to a TSV file"
}

func (cmd *Get) Usage() string {
	return "--workbook <file|url> --file <file>"
}

func (cmd *Get) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] get [options] --workbook <file|url> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Reads the file name/description table from a spreadsheet exactly as 'sync' would and")
	fmt.Println("  stores it to a TSV file. The TSV file can be edited and used as the --workbook for 'sync'.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s get --credentials \"credentials.json\" \\\n", APP)
	fmt.Println(`                      --workbook "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                      --file "descriptions.tsv"`)
	fmt.Println()
}

func (cmd *Get) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("get")

	flagset.StringVar(&cmd.workbook, "workbook", cmd.workbook, "Spreadsheet file or Google Sheets URL")
	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to 'descriptions <yyyy-mm-dd HHmmss>.tsv'")

	return flagset
}

func (cmd *Get) Execute(args ...any) error {
	ctx, options := unpack(args)

	cmd.debug = options.Debug

	if strings.TrimSpace(cmd.workbook) == "" {
		return fmt.Errorf("--workbook is a required option")
	}

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	s, err := cmd.open(ctx, app.Options{})
	if err != nil {
		return err
	}

	defer s.close(ctx)

	if diagnostics := s.LoadWorkbook(ctx, cmd.workbook); diagnostics.Err != nil {
		return diagnostics.Err
	}

	rows := s.Rows()
	if len(rows) == 0 {
		return fmt.Errorf("no data in spreadsheet")
	}

	dir := filepath.Dir(cmd.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".descriptions-*.tsv")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := workbook.WriteTSV(tmp, rows); err != nil {
		return fmt.Errorf("error creating TSV file (%v)", err)
	}

	tmp.Close()

	if err := os.Rename(tmp.Name(), cmd.file); err != nil {
		return err
	}

	infof("Retrieved %v rows to file %s", len(rows), cmd.file)

	return nil
}
