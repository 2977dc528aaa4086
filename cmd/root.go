// =============================================================================
// Genset Invoicer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invoicer)
//   ├── importCmd     (invoicer import)
//   ├── clearCmd      (invoicer clear)
//   ├── invoicesCmd   (invoicer invoices)
//   ├── previewCmd    (invoicer preview)
//   ├── statementCmd  (invoicer statement)
//   ├── exportCmd     (invoicer export)
//   ├── customersCmd  (invoicer customers list|set)
//   ├── companyCmd    (invoicer company show|set)
//   ├── validateCmd   (invoicer validate)
//   ├── registerCmd   (invoicer register)
//   └── versionCmd    (invoicer version)
//
// STARTUP:
//   Before any subcommand runs, the root command
//   1. Loads the configuration (viper: defaults, file, INVOICER_* env)
//   2. Builds the zap logger
//   3. Loads the state file into a session
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nilefleet/genset-invoicer/internal/config"
	"github.com/nilefleet/genset-invoicer/internal/invoicing"
	"github.com/nilefleet/genset-invoicer/internal/logger"
	"github.com/nilefleet/genset-invoicer/internal/session"
	"github.com/nilefleet/genset-invoicer/internal/store"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// If empty, config.yaml is looked up in the usual places.
var cfgFile string

// stateFile overrides the state_file setting.
var stateFile string

// verbose switches logging to debug level.
var verbose bool

// app is the state shared by the running command.
var app *application

// application bundles everything a command works with.
type application struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
	session *session.Session
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Genset Invoicer - Turn booking sheets into invoices and statements",
	Long: `Genset Invoicer reads booking sheets (CSV or XLSX), groups their lines
into one invoice per booking reference, numbers every invoice from the
customer's policy, and produces printable invoices and statements of account.

Key Features:
  - Per-customer serial prefixes, starting serials and payment terms
  - Statements of account filtered by date window and shipper
  - Twelve document themes, HTML preview and PDF export
  - Sequential batch export with per-item results

Example Usage:
  invoicer import bookings.csv            # Replace the booking pool
  invoicer invoices --customer "Acme"     # List invoices
  invoicer export --customer "Acme"       # Export Acme's invoices as PDF
  invoicer statement --customer "Acme" --from 2026-01-01 --to 2026-01-31`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return initApp()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			_ = app.logger.Sync()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
// An interrupt cancels the command context; a running export stops after
// the current invoice.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is ./config.yaml if present)",
	)

	rootCmd.PersistentFlags().StringVar(
		&stateFile,
		"state",
		"",
		"Path to the state file (overrides state_file)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initApp loads configuration, logger and state.
func initApp() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if stateFile != "" {
		cfg.StateFile = stateFile
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	st := store.New(cfg.StateFile)
	state, err := st.Load()
	if err != nil {
		return err
	}

	opts := invoicing.Options{
		SerialMode:     cfg.SerialMode(),
		DefaultDueDays: cfg.Invoicing.DefaultDueDays,
	}

	app = &application{
		cfg:     cfg,
		logger:  log,
		store:   st,
		session: session.FromState(state, opts, log),
	}

	log.Debug("application initialized",
		zap.String("state_file", cfg.StateFile),
		zap.String("serial_mode", string(opts.SerialMode)),
		zap.String("backend", cfg.Export.Backend))
	return nil
}

// save writes the session back to the state file.
func (a *application) save() error {
	if err := a.store.Save(a.session.State()); err != nil {
		return err
	}
	a.logger.Debug("state saved", zap.String("path", a.store.Path()))
	return nil
}
