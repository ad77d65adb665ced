package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/regulens/standards-rag/config"
	"github.com/regulens/standards-rag/service"
	"github.com/regulens/standards-rag/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Run one incremental indexing pass over the corpus",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath())
		if err != nil {
			fmt.Println("Failed to load config:", err)
			os.Exit(1)
		}
		embedder, err := service.NewEmbedder(cfg.Embedder)
		if err != nil {
			fmt.Println("Failed to create embedder:", err)
			os.Exit(1)
		}
		indexingService := service.NewIndexingService(cfg, embedder)

		progress := func(p types.IndexingProgress) {
			fmt.Printf("[%d/%d] %s\n", p.Processed+1, p.Total, p.Message)
		}
		summary, err := indexingService.Reindex(context.Background(), progress)
		if err != nil {
			fmt.Println("Indexing failed:", err)
			os.Exit(1)
		}

		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			fmt.Println("Failed to render summary:", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
