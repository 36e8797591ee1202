package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dr-ipconfig",
	Short: "dr-ipconfig decides between production and DR addressing at boot",
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
