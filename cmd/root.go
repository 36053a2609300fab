package cmd

import (
	"github.com/spf13/cobra"

	"github.com/arcanaland/cantor/internal/config"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cantor",
	Short: "A terminal caller for Mexican Lotería",
	Long: `Cantor is a command-line caller for Mexican Lotería.
It shuffles the 54-card deck, calls each card aloud with its art drawn in
the terminal, and keeps track of the cards still to come.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/cantor/config.toml)")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	RootCmd.PersistentFlags().StringP("deck", "d", "", "Deck from your deck library or a path to a deck")
	RootCmd.PersistentFlags().String("images", "", "Image directory or base URL holding <card>.jpg art")

	RootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		configFile, _ := cmd.Flags().GetString("config")
		config.SetConfigFile(configFile)
	}

	RootCmd.AddCommand(validateCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
