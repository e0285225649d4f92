package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/wwp-bim/acc-docs-sync/app"
	"github.com/wwp-bim/acc-docs-sync/auth"
	"github.com/wwp-bim/acc-docs-sync/config"
	"github.com/wwp-bim/acc-docs-sync/settings"
)

const APP = "acc-docs-sync"

type Options struct {
	Debug bool
}

// Command is implemented by every CLI command in the main() command list.
type Command interface {
	FlagSet() *flag.FlagSet
	Execute(args ...any) error
	Name() string
	Description() string
	Usage() string
	Help()
}

// Parse finds the command named by the first non-flag argument and parses the
// remaining arguments with the command's flagset. Returns nil if no command
// was given.
func Parse(cli []Command, help Command) (Command, error) {
	args := flag.Args()
	if len(args) == 0 {
		return nil, nil
	}

	if args[0] == help.Name() {
		if err := help.FlagSet().Parse(args[1:]); err != nil {
			return nil, err
		}

		return help, nil
	}

	for _, c := range cli {
		if c.Name() == args[0] {
			if err := c.FlagSet().Parse(args[1:]); err != nil {
				return nil, err
			}

			return c, nil
		}
	}

	return nil, fmt.Errorf("invalid command '%v' - use '%v help' for the list of commands", args[0], APP)
}

type command struct {
	workdir      string
	credentials  string
	settingsFile string
	redis        string
	debug        bool
}

func (cmd *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&cmd.workdir, "workdir", cmd.workdir, "Directory for working files (settings, Google tokens)")
	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Google OAuth2 'credentials.json' file, used for Google Sheets workbooks")
	flagset.StringVar(&cmd.settingsFile, "settings", cmd.settingsFile, "Settings file. Defaults to <workdir>/settings.json")
	flagset.StringVar(&cmd.redis, "redis", cmd.redis, "Redis server address for the remembered settings (overrides REDIS_ADDR)")

	return flagset
}

// session bundles the application with the resources opened for a single
// command invocation.
type session struct {
	*app.App
	store settings.Store
}

// open loads the configuration, opens the settings store and creates the
// application. The cached session is restored if it is still usable.
func (cmd *command) open(ctx context.Context, options app.Options, configure ...func(*config.Config)) (*session, error) {
	cfg, err := config.Load(config.EnvFiles()...)
	if err != nil {
		return nil, err
	}

	if cmd.redis != "" {
		cfg.RedisAddr = cmd.redis
	}

	for _, f := range configure {
		f(cfg)
	}

	store, err := cmd.store(ctx, cfg)
	if err != nil {
		return nil, err
	}

	google, err := authorize(ctx, cmd.credentials, tokensFile(cmd.workdir, cmd.credentials))
	if err != nil {
		if cmd.debug {
			debugf("Google Sheets not available (%v)", err)
		}
	}

	options.Config = cfg
	options.Store = store
	options.Google = google
	options.Debug = cmd.debug
	options.Auth = auth.NewManager(auth.WithRedirectURI(cfg.RedirectURI), auth.WithDebug(cmd.debug))

	a, err := app.New(ctx, options)
	if err != nil {
		closeStore(store)
		return nil, err
	}

	return &session{App: a, store: store}, nil
}

func (cmd *command) store(ctx context.Context, cfg *config.Config) (settings.Store, error) {
	if cfg.RedisAddr != "" {
		if cmd.debug {
			debugf("settings: redis %v", cfg.RedisAddr)
		}

		return settings.OpenRedis(ctx, cfg.RedisAddr)
	}

	file := cmd.settingsFile
	if file == "" {
		file = filepath.Join(cmd.workdir, "settings.json")
	}

	if err := os.MkdirAll(filepath.Dir(file), 0770); err != nil {
		return nil, err
	}

	if cmd.debug {
		debugf("settings: %v", file)
	}

	return settings.NewFileStore(file), nil
}

// close saves the settings (including the current access token) and releases the
// settings store.
func (s *session) close(ctx context.Context) {
	if err := s.Shutdown(ctx); errors.Is(err, app.ErrSettingsNotSaved) {
		warnf("%v - the next run will not remember this session", err)
	} else if err != nil {
		warnf("%v", err)
	}

	closeStore(s.store)
}

// signin makes sure there is a usable session, running the interactive sign-in
// if the cached session could not be restored.
func (s *session) signin(ctx context.Context) error {
	if s.State() == auth.Authenticated {
		return nil
	}

	infof("Not signed in - opening the Autodesk sign-in page in your browser")

	return s.SignIn(ctx)
}

func closeStore(store settings.Store) {
	if c, ok := store.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			warnf("%v", err)
		}
	}
}

func unpack(args []any) (context.Context, *Options) {
	ctx := context.Background()
	options := &Options{}

	for _, arg := range args {
		switch v := arg.(type) {
		case context.Context:
			ctx = v
		case *Options:
			options = v
		}
	}

	return ctx, options
}

func helpOptions(flagset *flag.FlagSet) {
	count := 0
	flagset.VisitAll(func(f *flag.Flag) {
		count++
	})

	if count > 0 {
		fmt.Println("  Options:")
		fmt.Println()
		flagset.VisitAll(func(f *flag.Flag) {
			fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
		})
	}
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
