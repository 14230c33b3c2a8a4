package cmd

import (
	"log"

	"github.com/jmorland/jcsh/core/config"
	"github.com/spf13/cobra"
)

// initCmd creates the configuration directory
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the jcsh configuration directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.ErrOrStderr(), "", 0)

		path, err := configPath()
		if err != nil {
			return err
		}

		return config.Initialize(path, logger)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
