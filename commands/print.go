package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/wwp-bim/acc-docs-sync/acc"
	"github.com/wwp-bim/acc-docs-sync/reconcile"
)

func printHubs(w io.Writer, hubs []acc.Hub) {
	t := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(t, "ID\tNAME\tREGION")
	for _, h := range hubs {
		fmt.Fprintf(t, "%v\t%v\t%v\n", h.ID, h.Name, h.Region)
	}

	t.Flush()
}

func printProjects(w io.Writer, projects []acc.Project) {
	t := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(t, "ID\tNAME")
	for _, p := range projects {
		fmt.Fprintf(t, "%v\t%v\n", p.ID, p.Name)
	}

	t.Flush()
}

// printTree prints the loaded folder tree, indented by depth. Folders that have
// not been expanded are marked with '+'.
func printTree(w io.Writer, nodes []*acc.FolderNode, depth int) {
	for _, node := range nodes {
		marker := " "
		if !node.Loaded() {
			marker = "+"
		}

		fmt.Fprintf(w, "%v%v %v  [%v]\n", strings.Repeat("  ", depth), marker, node.Name, node.ID)

		printTree(w, node.Children(), depth+1)
	}
}

func printFiles(w io.Writer, files []acc.FileItem) {
	t := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(t, "NAME\tTYPE\tDESCRIPTION\tID")
	for _, f := range files {
		name := f.Name
		if !f.Updatable {
			name += " (read-only)"
		}

		fmt.Fprintf(t, "%v\t%v\t%v\t%v\n", name, f.Type, oneline(f.Description), f.ID)
	}

	t.Flush()
}

func printResult(w io.Writer, result *reconcile.Result) {
	t := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(t, "FILE\tOUTCOME\tROW\tDESCRIPTION")
	for _, e := range result.Audit {
		outcome := e.Outcome.String()
		if e.DryRun {
			outcome += " (dry run)"
		}

		fmt.Fprintf(t, "%v\t%v\t%v\t%v\n", e.Name, outcome, e.Row, oneline(e.Description))
	}

	t.Flush()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%v\n", result)
}

// writeReport writes the reconciliation audit as a TSV file with a header row.
func writeReport(w io.Writer, result *reconcile.Result) error {
	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'

	if err := tsv.Write([]string{"Run", "File", "Type", "Item", "Outcome", "Keys", "Row", "Version", "Description", "Error"}); err != nil {
		return err
	}

	for _, e := range result.Audit {
		errmsg := ""
		if e.Err != nil {
			errmsg = e.Err.Error()
		}

		outcome := e.Outcome.String()
		if e.DryRun {
			outcome += " (dry run)"
		}

		record := []string{
			result.RunID,
			e.Name,
			e.Type,
			e.ItemID,
			outcome,
			strings.Join(e.Keys, "; "),
			e.Row,
			e.Tip,
			oneline(e.Description),
			oneline(errmsg),
		}

		if err := tsv.Write(record); err != nil {
			return err
		}
	}

	tsv.Flush()

	return tsv.Error()
}

func oneline(v string) string {
	return strings.Join(strings.Fields(v), " ")
}
