package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "standards-rag",
	Short: "Regulatory standards indexing and caution retrieval",
	Long: `standards-rag indexes authority-issued standard documents into a
vector index and retrieves regulatory caution statements for chemical
ingredients.

Run "standards-rag serve" to expose the HTTP API, "standards-rag index"
for a one-shot indexing pass, or "standards-rag cautions" to query from
the command line.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}
