package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/regulens/standards-rag/config"
	"github.com/regulens/standards-rag/service"
)

var cautionsCmd = &cobra.Command{
	Use:   "cautions [ingredient ...]",
	Short: "Print regulatory cautions for the given ingredients",
	Args:  cobra.MinimumNArgs(1),
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
		cautionService := service.NewCautionService(indexingService, embedder, cfg)

		fmt.Println(cautionService.CautionsAsText(context.Background(), args))
	},
}

func init() {
	rootCmd.AddCommand(cautionsCmd)
}
