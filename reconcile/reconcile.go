// Package reconcile pushes spreadsheet descriptions onto the tip versions of
// the files in an ACC Docs folder.
package reconcile

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/wwp-bim/acc-docs-sync/acc"
	"github.com/wwp-bim/acc-docs-sync/keys"
	"github.com/wwp-bim/acc-docs-sync/workbook"
)

type Outcome int

const (
	Updated Outcome = iota
	MissingID
	NoMatchingRow
	EmptyDescription
	UnsupportedType
	MissingTip
	UpdateFailed
)

func (o Outcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case MissingID:
		return "missing item id"
	case NoMatchingRow:
		return "no matching row"
	case EmptyDescription:
		return "empty description"
	case UnsupportedType:
		return "unsupported type"
	case MissingTip:
		return "missing tip version"
	case UpdateFailed:
		return "update failed"
	default:
		return fmt.Sprintf("outcome:%d", int(o))
	}
}

// Service is the subset of the resource client used by a reconciliation pass.
type Service interface {
	GetItemDetail(ctx context.Context, project, item string) (*acc.ItemDetail, error)
	UpdateVersionDescription(ctx context.Context, project, version, description string) error
}

// Entry records what happened to one file.
type Entry struct {
	Name        string
	Type        string
	ItemID      string
	Keys        []string
	Row         string
	Description string
	Tip         string
	Outcome     Outcome
	DryRun      bool
	Err         error
}

type Result struct {
	RunID   string
	Updated int
	Skipped int
	Failed  int
	Audit   []Entry
}

func (r Result) String() string {
	return fmt.Sprintf("Updated: %v, Skipped: %v, Failed: %v", r.Updated, r.Skipped, r.Failed)
}

type Engine struct {
	service  Service
	excluded map[string]bool
	dryrun   bool
	debug    bool
}

type Option func(*Engine)

// WithExcludedTypes replaces the set of extension types that are never updated.
func WithExcludedTypes(types ...string) Option {
	return func(e *Engine) {
		e.excluded = map[string]bool{}
		for _, t := range types {
			if t = strings.TrimSpace(t); t != "" {
				e.excluded[strings.ToLower(t)] = true
			}
		}
	}
}

// WithDryRun evaluates every file without updating anything.
func WithDryRun(dryrun bool) Option {
	return func(e *Engine) {
		e.dryrun = dryrun
	}
}

func WithDebug(debug bool) Option {
	return func(e *Engine) {
		e.debug = debug
	}
}

func NewEngine(service Service, opts ...Option) *Engine {
	e := Engine{
		service: service,
	}

	WithExcludedTypes(acc.ReadOnlyTypes...)(&e)

	for _, opt := range opts {
		opt(&e)
	}

	return &e
}

// Run makes a single sequential pass over the files. A file that cannot be updated
// is recorded in the audit trail and the pass carries on with the next file. The
// description of each updated file is replaced in 'files'.
func (e *Engine) Run(ctx context.Context, project string, files []acc.FileItem, index *workbook.RowIndex) (*Result, error) {
	result := Result{
		RunID: uuid.NewString(),
		Audit: []Entry{},
	}

	if e.debug {
		sample := index.Keys()
		if len(sample) > workbook.MaxSamples {
			sample = sample[:workbook.MaxSamples]
		}

		if len(sample) > 0 {
			debugf("Excel keys sample: %v", strings.Join(sample, ", "))
		}
	}

	for i := range files {
		if err := ctx.Err(); err != nil {
			return &result, err
		}

		entry := e.reconcile(ctx, project, &files[i], index)

		switch entry.Outcome {
		case Updated:
			result.Updated++
		case UpdateFailed:
			result.Failed++
		default:
			result.Skipped++
		}

		result.Audit = append(result.Audit, entry)
	}

	infof("Update finished. %v", result)

	return &result, nil
}

func (e *Engine) reconcile(ctx context.Context, project string, file *acc.FileItem, index *workbook.RowIndex) Entry {
	entry := Entry{
		Name:   file.Name,
		Type:   file.Type,
		ItemID: file.ID,
	}

	label := file.String()

	if file.ID == "" {
		entry.Outcome = MissingID
		infof("Skipped (missing item id): %v", label)
		return entry
	}

	key := keys.Normalize(file.Name)
	base := keys.NormalizeBase(file.Name)

	entry.Keys = []string{key}
	row, ok := index.Get(key)
	if !ok {
		entry.Keys = append(entry.Keys, base)
		row, ok = index.Get(base)
	}

	if !ok {
		entry.Outcome = NoMatchingRow
		infof("Skipped (no Excel row): %v | key='%v' base='%v'", label, key, base)
		return entry
	}

	entry.Row = row.FileName

	if row.Description == "" {
		entry.Outcome = EmptyDescription
		infof("Skipped (empty description): %v | excel='%v'", label, row.FileName)
		return entry
	}

	entry.Description = row.Description

	if e.excluded[strings.ToLower(file.Type)] || !file.Updatable {
		entry.Outcome = UnsupportedType
		infof("Skipped (%v not supported for description update): %v", file.Type, label)
		return entry
	}

	infof("Updating: %v | type=%v | item_id=%v | desc_len=%v | desc='%v'", file.Name, file.Type, file.ID, len(row.Description), preview(row.Description))

	detail, err := e.service.GetItemDetail(ctx, project, file.ID)
	if err != nil {
		entry.Outcome = MissingTip
		entry.Err = err
		warnf("Pre-update fetch failed: %v", err)
		infof("Skipped (missing tip version id): %v", label)
		return entry
	}

	if e.debug {
		debugf("Pre-update item: ext_type='%v' desc='%v' tip='%v'", detail.Type, detail.Description, detail.Tip)
	}

	if detail.Tip == "" {
		entry.Outcome = MissingTip
		infof("Skipped (missing tip version id): %v", label)
		return entry
	}

	entry.Tip = detail.Tip

	if e.dryrun {
		entry.Outcome = Updated
		entry.DryRun = true
		infof("Would update: %v", label)
		return entry
	}

	if err := e.service.UpdateVersionDescription(ctx, project, detail.Tip, row.Description); err != nil {
		entry.Outcome = UpdateFailed
		entry.Err = err
		warnf("Failed to update %v: %v", label, err)
		return entry
	}

	file.Description = row.Description
	entry.Outcome = Updated
	infof("Updated: %v", label)

	return entry
}

func preview(s string) string {
	if r := []rune(s); len(r) > 120 {
		return string(r[:117]) + "..."
	}

	return s
}

func debugf(format string, args ...any) {
	log.Printf("%-5s %s", "DEBUG", fmt.Sprintf(format, args...))
}

func infof(format string, args ...any) {
	log.Printf("%-5s %s", "INFO", fmt.Sprintf(format, args...))
}

func warnf(format string, args ...any) {
	log.Printf("%-5s %s", "WARN", fmt.Sprintf(format, args...))
}
