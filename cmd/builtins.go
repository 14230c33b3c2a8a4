package cmd

import (
	"fmt"

	"github.com/jmorland/jcsh/core"
	"github.com/spf13/cobra"
)

// builtinsCmd lists the commands handled inside the shell itself
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the shell's builtin commands.",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, v := range core.BuiltinNames() {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
