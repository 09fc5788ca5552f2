package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/warp/taxman/config"
	"github.com/warp/taxman/logging"
	"github.com/warp/taxman/store/sqlite"
)

var version = "0.1.0"

// app is what every subcommand needs once configuration has loaded.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "taxman",
		Short: "GST ledger and BAS reporting for a small consultancy",
		Long: `taxman keeps clients, employees, effective-dated billing rates,
invoices, expenses and receipts, and computes Business Activity
Statement summaries on a cash or accrual basis.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
				cfg.DB.Path = dbPath
			}
			log, err := logging.Setup(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = log
			return nil
		},
	}

	root.PersistentFlags().String("db", "", "SQLite database path, overrides TAXMAN_DB_PATH (\":memory:\" for in-memory)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newReportCmd(a))
	return root
}

func (a *app) openStore() (*sqlite.Store, error) {
	a.log.Info().Str("path", a.cfg.DB.Path).Msg("opening database")
	return sqlite.New(a.cfg.DB.Path)
}
