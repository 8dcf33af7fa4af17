// Package commands implements the stratus CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "stratus",
	Short: "Stratus - in-memory AWS service emulator",
	Long: `Stratus emulates AWS services (S3, SQS, SNS, DynamoDB, Lambda, Cognito,
CloudWatch Logs, Kinesis, Firehose, EventBridge, Step Functions, Secrets
Manager, KMS, SSM Parameter Store) against in-process state. Each service
speaks its real wire protocol on its own port, so unmodified AWS SDKs and
tools work against it for local development and tests.

All state lives in memory and is lost on restart.

Use "stratus [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/stratus/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}
