package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var baseDirFlag string

	// .env is a developer convenience; absence is not an error.
	_ = godotenv.Load()

	ctx := newCommandContext(&configFlag, &baseDirFlag)

	rootCmd := &cobra.Command{
		Use:           "presswork",
		Short:         "Filesystem-queued document conversion and protection",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&baseDirFlag, "base-dir", "", "Base directory holding the queue directories")

	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newReconcileCommand(ctx))
	rootCmd.AddCommand(newProtectCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
