package cmd

import (
	dbpkg "commentflow/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := dbpkg.Connect(cfg, logger.Named("db"))
		if err != nil {
			return err
		}
		defer database.Close()

		if err := dbpkg.Migrate(database); err != nil {
			return err
		}
		logger.Info("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
