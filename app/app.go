// Package app holds the operations behind the CLI commands: signing in and out,
// browsing hubs, projects and folders, loading the description spreadsheet and
// running a reconciliation pass. It keeps the current selection and persists the
// remembered settings.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/wwp-bim/acc-docs-sync/acc"
	"github.com/wwp-bim/acc-docs-sync/auth"
	"github.com/wwp-bim/acc-docs-sync/config"
	"github.com/wwp-bim/acc-docs-sync/reconcile"
	"github.com/wwp-bim/acc-docs-sync/settings"
	"github.com/wwp-bim/acc-docs-sync/workbook"
)

var (
	ErrNoHub            = errors.New("no hub selected")
	ErrNoProject        = errors.New("no project selected")
	ErrNoFolder         = errors.New("no folder selected")
	ErrNoWorkbook       = errors.New("no spreadsheet loaded")
	ErrFolderNotFound   = errors.New("folder not found")
	ErrProjectNotInURL  = errors.New("project ID not found in URL - select a project and try again")
	ErrUnknownHub       = errors.New("unknown hub")
	ErrUnknownProject   = errors.New("unknown project")
	ErrSettingsNotSaved = errors.New("settings not saved")
)

type Options struct {
	Config     *config.Config
	Store      settings.Store
	Auth       *auth.Manager
	BaseURL    string
	HTTPClient *http.Client
	Google     *http.Client
	Workers    int
	DryRun     bool
	Debug      bool
}

type App struct {
	sync.Mutex
	config   *config.Config
	store    settings.Store
	settings settings.Settings
	auth     *auth.Manager
	client   *acc.Client
	google   *http.Client
	workers  chan struct{}
	saving   sync.Mutex
	dryrun   bool
	debug    bool

	hubs     []acc.Hub
	hub      *acc.Hub
	projects []acc.Project
	project  *acc.Project
	tree     []*acc.FolderNode
	folder   string
	files    []acc.FileItem
	index    *workbook.RowIndex
	diag     *workbook.Diagnostics
}

// New creates the application state, loads the remembered settings and restores
// the cached session if it is still usable. An expired cached token is removed
// from the settings.
func New(ctx context.Context, options Options) (*App, error) {
	cfg := options.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	manager := options.Auth
	if manager == nil {
		manager = auth.NewManager(auth.WithRedirectURI(cfg.RedirectURI), auth.WithDebug(options.Debug))
	}

	workers := options.Workers
	if workers <= 0 {
		workers = 4
	}

	opts := []acc.Option{
		acc.WithDebug(options.Debug),
		acc.WithReadOnlyTypes(excluded(cfg)...),
	}

	if options.BaseURL != "" {
		opts = append(opts, acc.WithBaseURL(options.BaseURL))
	}

	if options.HTTPClient != nil {
		opts = append(opts, acc.WithHTTPClient(options.HTTPClient))
	}

	a := App{
		config:  cfg,
		store:   options.Store,
		auth:    manager,
		client:  acc.NewClient(manager, opts...),
		google:  options.Google,
		workers: make(chan struct{}, workers),
		dryrun:  options.DryRun,
		debug:   options.Debug,
	}

	if a.store != nil {
		s, err := a.store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to load settings (%w)", err)
		}

		a.settings = *s
	}

	a.restore(ctx)

	return &a, nil
}

func (a *App) restore(ctx context.Context) {
	if a.settings.Token == "" {
		return
	}

	session := auth.Session{
		AccessToken:  a.settings.Token,
		Expiry:       a.settings.Expiry(),
		ClientID:     a.config.ClientID,
		ClientSecret: a.config.ClientSecret,
	}

	if err := a.auth.Restore(session); err != nil {
		infof("Cached session not restored (%v)", err)
		a.settings.ClearToken()
		if err := a.save(ctx); err != nil {
			warnf("%v", err)
		}

		return
	}

	infof("Restored cached session (expires %v)", session.Expiry.Local().Format("2006-01-02 15:04:05"))
}

// Settings returns a copy of the remembered settings.
func (a *App) Settings() settings.Settings {
	a.Lock()
	defer a.Unlock()

	return a.settings
}

func (a *App) State() auth.State {
	return a.auth.State()
}

// SignIn runs the interactive OAuth2 sign-in and caches the new access token.
func (a *App) SignIn(ctx context.Context) error {
	id, secret, err := a.config.Credentials()
	if err != nil {
		return err
	}

	timeout := a.config.AuthTimeout
	if timeout <= 0 {
		timeout = config.DefaultAuthTimeout
	}

	if err := a.auth.Authenticate(ctx, id, secret, timeout); err != nil {
		return fmt.Errorf("sign-in failed (%w)", err)
	}

	infof("Signed in")

	a.Lock()
	a.cacheToken()
	a.Unlock()

	return a.save(ctx)
}

// SignOut discards the session, the cached token and the current selection.
func (a *App) SignOut(ctx context.Context) error {
	a.auth.SignOut()

	a.Lock()
	a.settings.ClearToken()
	a.hubs, a.hub = nil, nil
	a.projects, a.project = nil, nil
	a.tree, a.folder, a.files = nil, "", nil
	a.Unlock()

	infof("Signed out")

	return a.save(ctx)
}

func (a *App) Hubs(ctx context.Context) ([]acc.Hub, error) {
	hubs, err := a.client.ListHubs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load hubs (%w)", err)
	}

	a.Lock()
	a.hubs = hubs
	a.Unlock()

	return hubs, nil
}

// SelectHub makes a hub current and returns its projects sorted by name. The hub
// may be given by ID or name.
func (a *App) SelectHub(ctx context.Context, hub string) ([]acc.Project, error) {
	a.Lock()
	hubs := a.hubs
	a.Unlock()

	if hubs == nil {
		var err error
		if hubs, err = a.Hubs(ctx); err != nil {
			return nil, err
		}
	}

	var selected *acc.Hub
	for i := range hubs {
		if hubs[i].ID == hub || strings.EqualFold(hubs[i].Name, hub) {
			selected = &hubs[i]
			break
		}
	}

	if selected == nil {
		return nil, fmt.Errorf("%w '%v'", ErrUnknownHub, hub)
	}

	projects, err := a.client.ListProjects(ctx, selected.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects (%w)", err)
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return strings.ToLower(projects[i].Name) < strings.ToLower(projects[j].Name)
	})

	a.Lock()
	defer a.Unlock()

	a.hub = selected
	a.projects = projects
	a.project = nil
	a.tree, a.folder, a.files = nil, "", nil

	if a.debug {
		debugf("hub %v: %v projects", selected.Name, len(projects))
	}

	return projects, nil
}

// SelectProject makes a project of the current hub current and returns its top
// folders. The 'Project Files' folder is expanded.
func (a *App) SelectProject(ctx context.Context, project string) ([]*acc.FolderNode, error) {
	a.Lock()
	hub := a.hub
	projects := a.projects
	a.Unlock()

	if hub == nil {
		return nil, ErrNoHub
	}

	var selected *acc.Project
	for i := range projects {
		if projects[i].ID == project || strings.EqualFold(projects[i].Name, project) {
			selected = &projects[i]
			break
		}
	}

	if selected == nil {
		return nil, fmt.Errorf("%w '%v'", ErrUnknownProject, project)
	}

	folders, err := a.client.ListTopFolders(ctx, hub.ID, selected.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load folders (%w)", err)
	}

	tree := []*acc.FolderNode{}
	for _, f := range folders {
		tree = append(tree, acc.NewFolderNode(selected.ID, f))
	}

	for _, node := range tree {
		if acc.IsProjectFiles(node.Folder) {
			if _, err := node.Expand(ctx, a.client.ListFolderChildren); err != nil {
				warnf("Failed to expand %v (%v)", node.Name, err)
			}
		}
	}

	a.Lock()
	defer a.Unlock()

	a.project = selected
	a.tree = tree
	a.folder, a.files = "", nil

	return tree, nil
}

// ExpandFolder loads the subfolders of a folder in the current project's tree.
// Expanding a folder more than once returns the children loaded the first time.
func (a *App) ExpandFolder(ctx context.Context, folder string) ([]*acc.FolderNode, error) {
	node, err := a.find(folder)
	if err != nil {
		return nil, err
	}

	if _, err := node.Expand(ctx, a.client.ListFolderChildren); err != nil {
		return nil, fmt.Errorf("failed to expand folder %v (%w)", node.Name, err)
	}

	return node.Children(), nil
}

// SelectFolder makes a folder of the current project current and loads its files.
func (a *App) SelectFolder(ctx context.Context, folder string) ([]acc.FileItem, error) {
	a.Lock()
	project := a.project
	a.Unlock()

	if project == nil {
		return nil, ErrNoProject
	}

	files, err := a.client.ListFiles(ctx, project.ID, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to load files (%w)", err)
	}

	a.Lock()
	defer a.Unlock()

	a.folder = folder
	a.files = files

	if len(files) == 0 {
		infof("No files in this folder.")
	}

	return files, nil
}

// SelectFolderIn selects a folder by project ID without browsing to it first.
// The current project and folder are unchanged if the files cannot be loaded.
func (a *App) SelectFolderIn(ctx context.Context, project, folder string) ([]acc.FileItem, error) {
	files, err := a.client.ListFiles(ctx, project, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to load files (%w)", err)
	}

	a.Lock()
	a.switchProject(project)
	a.folder = folder
	a.files = files
	a.Unlock()

	if len(files) == 0 {
		infof("No files in this folder.")
	}

	return files, nil
}

// LoadFolderURL loads the files of a folder pasted from the ACC Docs web UI. The
// project IDs derived from the URL are tried in order, followed by the current
// project, until one is accepted by the service.
func (a *App) LoadFolderURL(ctx context.Context, url string) ([]acc.FileItem, error) {
	ref, err := acc.ParseFolderURL(url)
	if err != nil {
		return nil, err
	}

	candidates := acc.ProjectCandidates(ref.ProjectID)

	a.Lock()
	if a.project != nil && !slices.Contains(candidates, a.project.ID) {
		candidates = append(candidates, a.project.ID)
	}
	a.Unlock()

	if len(candidates) == 0 {
		return nil, ErrProjectNotInURL
	}

	a.Lock()
	a.settings.LastFolderURL = strings.TrimSpace(url)
	a.Unlock()

	if err := a.save(ctx); err != nil {
		warnf("%v", err)
	}

	var last error
	for _, project := range candidates {
		files, err := a.client.ListFiles(ctx, project, ref.FolderID)
		if err == nil {
			a.Lock()
			a.switchProject(project)
			a.folder = ref.FolderID
			a.files = files
			a.Unlock()

			if len(files) == 0 {
				infof("No files in this folder.")
			} else {
				infof("Files loaded from URL (project %v)", project)
			}

			return files, nil
		}

		last = err
		if !acc.IsInvalidProject(err) {
			break
		}

		if a.debug {
			debugf("project ID %v rejected (%v)", project, err)
		}
	}

	return nil, fmt.Errorf("failed to load folder URL (%w)", last)
}

// LoadWorkbook reads and indexes the description spreadsheet. A spreadsheet that
// cannot be read leaves an empty index and is reported in the diagnostics.
func (a *App) LoadWorkbook(ctx context.Context, path string) *workbook.Diagnostics {
	opts := []workbook.Option{}
	if a.google != nil {
		opts = append(opts, workbook.WithGoogleClient(a.google))
	}

	index, diagnostics := workbook.Load(ctx, path, opts...)

	for _, line := range diagnostics.Lines() {
		infof("%v", line)
	}

	a.Lock()
	a.index = index
	a.diag = diagnostics
	if diagnostics.Err == nil {
		a.settings.LastExcelPath = strings.TrimSpace(path)
	}
	a.Unlock()

	if diagnostics.Err != nil {
		warnf("Excel load failed: %v", diagnostics.Err)
	} else {
		infof("Loaded %v rows from Excel (case-insensitive; extension optional).", index.Len())
		if err := a.save(ctx); err != nil {
			warnf("%v", err)
		}
	}

	return diagnostics
}

// Diagnostics returns the diagnostics of the last spreadsheet load.
func (a *App) Diagnostics() *workbook.Diagnostics {
	a.Lock()
	defer a.Unlock()

	return a.diag
}

// Rows returns the indexed spreadsheet rows in sheet order.
func (a *App) Rows() []workbook.Row {
	a.Lock()
	defer a.Unlock()

	if a.index == nil {
		return nil
	}

	return a.index.Rows()
}

func (a *App) Files() []acc.FileItem {
	a.Lock()
	defer a.Unlock()

	return append([]acc.FileItem{}, a.files...)
}

// RunReconciliation applies the loaded spreadsheet to the current folder's files.
func (a *App) RunReconciliation(ctx context.Context) (*reconcile.Result, error) {
	a.Lock()
	project := a.project
	index := a.index
	files := append([]acc.FileItem{}, a.files...)
	folder := a.folder
	a.Unlock()

	switch {
	case index == nil:
		return nil, ErrNoWorkbook
	case project == nil:
		return nil, ErrNoProject
	case folder == "":
		return nil, ErrNoFolder
	}

	engine := reconcile.NewEngine(a.client,
		reconcile.WithExcludedTypes(excluded(a.config)...),
		reconcile.WithDryRun(a.dryrun),
		reconcile.WithDebug(a.debug))

	// the engine replaces the descriptions of updated files in 'files'
	result, err := engine.Run(ctx, project.ID, files, index)

	a.Lock()
	if a.folder == folder && a.project != nil && a.project.ID == project.ID {
		a.files = files
	}
	a.Unlock()

	return result, err
}

// Shutdown saves the remembered settings, including the current access token.
func (a *App) Shutdown(ctx context.Context) error {
	a.Lock()
	a.cacheToken()
	a.Unlock()

	return a.save(ctx)
}

func (a *App) find(folder string) (*acc.FolderNode, error) {
	a.Lock()
	tree := a.tree
	a.Unlock()

	if tree == nil {
		return nil, ErrNoProject
	}

	for _, root := range tree {
		if node := root.Find(folder); node != nil {
			return node, nil
		}
	}

	return nil, fmt.Errorf("%w '%v'", ErrFolderNotFound, folder)
}

// switchProject makes a project current by ID. The folder tree belongs to the
// previous project and is discarded. Caller holds the lock.
func (a *App) switchProject(project string) {
	if a.project == nil || a.project.ID != project {
		a.project = &acc.Project{ID: project}
		a.tree = nil
	}
}

// cacheToken copies the session's access token into the settings. Caller holds the lock.
func (a *App) cacheToken() {
	if session, ok := a.auth.Session(); ok {
		a.settings.SetToken(session.AccessToken, session.Expiry)
	}
}

func (a *App) save(ctx context.Context) error {
	if a.store == nil {
		return nil
	}

	// snapshot and write in order so that a later snapshot is never overwritten
	a.saving.Lock()
	defer a.saving.Unlock()

	a.Lock()
	s := a.settings
	a.Unlock()

	if err := a.store.Save(ctx, &s); err != nil {
		return fmt.Errorf("%w (%v)", ErrSettingsNotSaved, err)
	}

	return nil
}

func excluded(cfg *config.Config) []string {
	if cfg == nil || cfg.ExcludedTypes == nil {
		return acc.ReadOnlyTypes
	}

	return cfg.ExcludedTypes
}
