package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/teammate/pkg/logger"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "teamform",
	Short: "Balanced team formation",
	Long: `teamform partitions a roster of participants into teams that spread
games, roles and personality types as evenly as possible.

Rosters are CSV files with the columns
  ID,Name,Email,PreferredGame,SkillLevel,PreferredRole,PersonalityScore,PersonalityType`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.SetLevelString(logLevel)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(formCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(loadCmd)
}
