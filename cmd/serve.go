package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/regulens/standards-rag/config"
	"github.com/regulens/standards-rag/handler"
	"github.com/regulens/standards-rag/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the caution retrieval HTTP server",
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
		healthService := service.NewHealthService(indexingService, embedder, cfg)
		websocketService := service.NewWebSocketService(indexingService)

		healthHandler := handler.NewHealthHandler(healthService)
		cautionHandler := handler.NewCautionHandler(cautionService)
		indexHandler := handler.NewIndexHandler(indexingService, websocketService)
		corsHandler := handler.NewCorsHandler()

		mux := http.NewServeMux()
		mux.Handle("/api/v1/health", healthHandler.HandleHealth())
		mux.Handle("/api/v1/cautions", cautionHandler.HandleCautions())
		mux.Handle("/api/v1/cautions/text", cautionHandler.HandleCautionsText())
		mux.Handle("/admin/api/v1/reindex", indexHandler.HandleReindex())
		mux.Handle("/admin/api/v1/reindex/ws", indexHandler.HandleReindexWS())

		addr := ":" + cfg.Port
		log.Printf("Starting server on %s (corpus: %s, index backend: %s)",
			addr, cfg.CorpusDir, cfg.Index.Backend)
		if err := http.ListenAndServe(addr, corsHandler.CorsMiddleware(mux)); err != nil {
			fmt.Println("Server error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// configPath resolves the --config flag, defaulting to ./config.yaml.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "config.yaml"
}
