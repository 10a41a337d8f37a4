// Package cli implements the roster command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/roster/internal/logger"
	"github.com/mesh-intelligence/roster/internal/paths"
	"github.com/mesh-intelligence/roster/pkg/roster"
	"github.com/mesh-intelligence/roster/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	jsonMode  bool
	verbose   bool
}

// app is the state of one CLI invocation, filled in by the root
// PersistentPreRunE before any subcommand runs.
type app struct {
	flags     rootFlags
	configDir string
	cfg       types.Config
	log       zerolog.Logger
}

// NewRootCmd creates the top-level "roster" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}
	root := &cobra.Command{
		Use:   "roster",
		Short: "Keep hourly and salaried worker records",
		Long: "Roster stores hourly and salaried worker records, numbered per category,\n" +
			"in a JSON file or another configured backend.",
		Version: roster.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.roster-db)")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: json, sqlite, postgres, s3")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newSearchCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newClearCmd(a),
		newPurgeCmd(a),
		newInfoCmd(a),
	)
	return root
}

// Execute runs the root command against os.Args and returns the process
// exit code. Errors are printed to stderr.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

func (a *app) setup(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return systemError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	a.configDir = configDir

	level := v.GetString(cfgKeyLogLevel)
	if a.flags.verbose {
		level = "debug"
	}
	a.log = logger.New(logger.Config{
		Level:  level,
		Format: v.GetString(cfgKeyLogFormat),
		Out:    cmd.ErrOrStderr(),
	})

	a.cfg, err = buildConfig(v, a.flags)
	if err != nil {
		return systemError(err)
	}
	a.log.Debug().Str("config_dir", configDir).Str("backend", a.cfg.Backend).Str("data_dir", a.cfg.DataDir).Msg("configured")
	return nil
}

// openStore opens and loads the configured store. Corrupt data is reported
// on stderr and the command continues with an empty store. The caller must
// Close the returned store.
func (a *app) openStore(cmd *cobra.Command) (*roster.Store, error) {
	st, err := roster.Open(cmd.Context(), a.cfg, a.log)
	if err == nil {
		return st, nil
	}
	if errors.Is(err, types.ErrCorruptData) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; continuing with an empty store\n", err)
		return st, nil
	}
	if isConfigError(err) {
		return nil, err
	}
	return nil, systemError(err)
}

// sysError marks a failure of the environment rather than of the user's
// input. It maps to exitSysError.
type sysError struct{ err error }

func (e *sysError) Error() string { return e.err.Error() }
func (e *sysError) Unwrap() error { return e.err }

func systemError(err error) error {
	if err == nil {
		return nil
	}
	return &sysError{err: err}
}

func isConfigError(err error) bool {
	for _, target := range []error{
		types.ErrBackendEmpty,
		types.ErrBackendUnknown,
		types.ErrDSNMissing,
		types.ErrBucketMissing,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// exitCode maps an error to the process exit code: persistence and other
// environment failures are system errors, everything else is a user error.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *sysError
	if errors.As(err, &se) || errors.Is(err, types.ErrPersistence) {
		return exitSysError
	}
	return exitUserError
}
