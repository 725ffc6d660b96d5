package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"timetable/internal/config"
	"timetable/internal/logger"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgPath string
	envFile string

	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "timetable",
		Short:         "University timetable API and spreadsheet importer",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", config.Getenv("TIMETABLE_CONFIG", ""), "configuration file (.yaml, .yml or .json)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newImportCmd(a),
		newTemplateCmd(),
		newVersionCmd(),
	)
	return root
}

// load reads configuration and sets up logging.
// PRE: flags parsed
// POST: a.cfg and a.log are populated
func (a *app) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	root, err := logger.Setup(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.Component(root, cmd.Name())
	return nil
}
