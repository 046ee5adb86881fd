package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Filip850/ksef-fetch-demo/ksef/util"
)

var (
	version = "1.0.0"

	// Global flags
	verbose bool
	envName string
)

var rootCmd = &cobra.Command{
	Use:   "ksef-fetch",
	Short: "Fetch invoice packages from KSeF",
	Long: `ksef-fetch retrieves e-invoices from KSeF through the asynchronous
export API: it authenticates with a KSeF token, submits a date-ranged export
job, polls it to completion, follows truncated result sets and decrypts the
resulting package into invoice records.

Credentials come from the environment:
  KSEF_NIP    tenant NIP
  KSEF_TOKEN  pre-shared KSeF token
  KSEF_ENV    default for --env (test, demo, prod)

Examples:
  # Fetch January 2024 from the test environment
  ksef-fetch fetch --from 2024-01-01 --to 2024-02-01 --key-file mf-test.pem

  # Write verification QR codes next to the summary
  ksef-fetch fetch --from 2024-01-01 --to 2024-02-01 --key-file mf-test.pem --qr-dir ./qr`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&envName, "env", util.GetEnvOr("KSEF_ENV", "test"), "KSeF environment (test, demo, prod)")
}
