package cmd

import (
	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the inventory schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the inventory tables",
	Long: `Creates the inventory tables and indexes if they do not exist and adds missing
columns. Existing rows are never modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadConfig()
		if err != nil {
			return err
		}
		defer l.Sync()

		dst, err := openTarget(cfg, l)
		if err != nil {
			return err
		}
		if err := dst.Migrate(cmd.Context()); err != nil {
			return err
		}
		l.Info("Inventory schema is up to date")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
