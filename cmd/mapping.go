package cmd

import (
	"fmt"
	"os"

	"inventory-sync/feature/source"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var mappingOffline bool

// mappingCmd is the parent command for field mapping operations.
var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Inspect the record system field mapping",
}

// mappingShowCmd prints the effective mapping as YAML.
var mappingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective field mapping",
	Long: `Prints the default field mapping merged with the configured mapping file.
The output is a valid mapping file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadConfig()
		if err != nil {
			return err
		}
		defer l.Sync()

		mapping, err := source.LoadMapping(cfg.Sync.MappingFile)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(mapping)
	},
}

// mappingCheckCmd validates the mapping, against the live record system by default.
var mappingCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the field mapping against the record system",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadConfig()
		if err != nil {
			return err
		}
		defer l.Sync()

		if mappingOffline {
			mapping, err := source.LoadMapping(cfg.Sync.MappingFile)
			if err != nil {
				return err
			}
			if err := mapping.Validate(); err != nil {
				return fmt.Errorf("invalid source mapping: %w", err)
			}
			l.Info("Mapping is valid", zap.Bool("offline", true))
			return nil
		}

		if _, err := openSource(cmd.Context(), cfg, l); err != nil {
			return err
		}
		l.Info("Mapping is valid", zap.String("database", cfg.Source.Name))
		return nil
	},
}

func init() {
	mappingCheckCmd.Flags().BoolVar(&mappingOffline, "offline", false, "Validate without connecting to the record system")

	mappingCmd.AddCommand(mappingShowCmd)
	mappingCmd.AddCommand(mappingCheckCmd)
	RootCmd.AddCommand(mappingCmd)
}
