package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/wwp-bim/acc-docs-sync/app"
	"github.com/wwp-bim/acc-docs-sync/keys"
	"github.com/wwp-bim/acc-docs-sync/workbook"
)

var InspectCmd = Inspect{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		debug:       false,
	},
	workbook: "",
	rows:     false,
}

type Inspect struct {
	command
	workbook string
	rows     bool
}

func (cmd *Inspect) Name() string {
	return "inspect"
}

func (cmd *Inspect) Description() string {
	return "Displays how a description spreadsheet will be read"
}

func (cmd *Inspect) Usage() string {
	return "--workbook <file|url>"
}

func (cmd *Inspect) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] inspect [options] --workbook <file|url>\n", APP)
	fmt.Println()
	fmt.Println("  Loads a description spreadsheet (.xlsx, .tsv or a Google Sheets URL) and displays the")
	fmt.Println("  selected sheet, the range read and a sample of the rows. With --rows every row is listed")
	fmt.Println("  with the key used to match it against file names. Without --workbook the last")
	fmt.Println("  spreadsheet is used.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s inspect --workbook \"descriptions.xlsx\" --rows\n", APP)
	fmt.Println()
}

func (cmd *Inspect) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("inspect")

	flagset.StringVar(&cmd.workbook, "workbook", cmd.workbook, "Spreadsheet file or Google Sheets URL")
	flagset.BoolVar(&cmd.rows, "rows", cmd.rows, "Lists every row with its lookup key")

	return flagset
}

func (cmd *Inspect) Execute(args ...any) error {
	ctx, options := unpack(args)

	cmd.debug = options.Debug

	s, err := cmd.open(ctx, app.Options{})
	if err != nil {
		return err
	}

	defer s.close(ctx)

	path := strings.TrimSpace(cmd.workbook)
	if path == "" {
		if path = s.Settings().LastExcelPath; path == "" {
			return fmt.Errorf("--workbook is a required option")
		}
	}

	diagnostics := s.LoadWorkbook(ctx, path)

	printDiagnostics(os.Stdout, diagnostics)

	if cmd.rows {
		fmt.Println()
		printRows(os.Stdout, s.Rows())
	}

	return diagnostics.Err
}

func printDiagnostics(w io.Writer, d *workbook.Diagnostics) {
	fmt.Fprintf(w, "Workbook: %v\n", d.Source)
	for _, line := range d.Lines() {
		fmt.Fprintf(w, "  %v\n", line)
	}
}

func printRows(w io.Writer, rows []workbook.Row) {
	t := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(t, "FILE\tKEY\tDESCRIPTION")
	for _, r := range rows {
		fmt.Fprintf(t, "%v\t%v\t%v\n", r.FileName, keys.Normalize(r.FileName), oneline(r.Description))
	}

	t.Flush()
}
