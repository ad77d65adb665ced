package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string              `mapstructure:"port"`
	CorpusDir           string              `mapstructure:"corpus_dir"`
	IndexDir            string              `mapstructure:"index_dir"`
	Chunking            ChunkingConfig      `mapstructure:"chunking"`
	Embedder            EmbedderConfig      `mapstructure:"embedder"`
	Index               IndexConfig         `mapstructure:"index"`
	Retrieval           RetrievalConfig     `mapstructure:"retrieval"`
	Extraction          ExtractionConfig    `mapstructure:"extraction"`
	WeaviateStoreConfig WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
}

type ChunkingConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
}

type EmbedderConfig struct {
	Provider     string `mapstructure:"provider"` // openai, gemini or local
	Model        string `mapstructure:"model"`
	BaseURL      string `mapstructure:"base_url"`
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	Dimension    int    `mapstructure:"dimension"` // local provider only
}

type IndexConfig struct {
	Backend      string `mapstructure:"backend"` // local or weaviate
	BatchSize    int    `mapstructure:"batch_size"`
	DocumentType string `mapstructure:"document_type"`
}

type RetrievalConfig struct {
	TopK   int     `mapstructure:"top_k"`
	FetchK int     `mapstructure:"fetch_k"`
	Lambda float32 `mapstructure:"lambda"`
}

// ExtractionConfig holds the caution extraction heuristics as plain
// configuration data so they can be tuned without touching control flow.
type ExtractionConfig struct {
	CautionKeywords []string `mapstructure:"caution_keywords"`
	QueryTemplates  []string `mapstructure:"query_templates"`
	MaxParagraphLen int      `mapstructure:"max_paragraph_len"`
}

type WeaviateStoreConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"`
}

// DefaultCautionKeywords gates chunks and statements during extraction.
var DefaultCautionKeywords = []string{
	"caution", "warning", "restriction", "limit", "maximum", "minimum",
	"prohibited", "not allowed", "should not", "avoid", "must not",
	"instruction", "requirement", "mandatory", "compliance", "regulation",
	"standard", "guideline", "specification", "condition", "precaution",
}

// DefaultQueryTemplates are the topic phrases appended to an ingredient
// name to form its retrieval query variants.
var DefaultQueryTemplates = []string{
	"caution warning restriction",
	"limit concentration maximum",
	"instruction requirement",
	"regulation compliance",
}

func Default() *Config {
	return &Config{
		Port:      "8080",
		CorpusDir: "data/standards",
		IndexDir:  "index",
		Chunking: ChunkingConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Embedder: EmbedderConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			Dimension: 256,
		},
		Index: IndexConfig{
			Backend:      "local",
			BatchSize:    50,
			DocumentType: "Regulatory_Standard",
		},
		Retrieval: RetrievalConfig{
			TopK:   5,
			FetchK: 10,
			Lambda: 0.5,
		},
		Extraction: ExtractionConfig{
			CautionKeywords: DefaultCautionKeywords,
			QueryTemplates:  DefaultQueryTemplates,
			MaxParagraphLen: 300,
		},
	}
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	// A missing config file is not an error: defaults plus environment
	// variables are enough to run.
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.BindEnv("embedder.OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("embedder.GEMINI_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("weaviate_store_config.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")

	config := Default()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	applyDefaults(config)

	return config, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Chunking.ChunkSize <= 0 {
		cfg.Chunking.ChunkSize = def.Chunking.ChunkSize
	}
	if cfg.Chunking.ChunkOverlap < 0 || cfg.Chunking.ChunkOverlap >= cfg.Chunking.ChunkSize {
		cfg.Chunking.ChunkOverlap = def.Chunking.ChunkOverlap
	}
	if cfg.Index.BatchSize <= 0 {
		cfg.Index.BatchSize = def.Index.BatchSize
	}
	if cfg.Index.DocumentType == "" {
		cfg.Index.DocumentType = def.Index.DocumentType
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Retrieval.FetchK < cfg.Retrieval.TopK {
		cfg.Retrieval.FetchK = def.Retrieval.FetchK
	}
	if cfg.Retrieval.Lambda <= 0 || cfg.Retrieval.Lambda > 1 {
		cfg.Retrieval.Lambda = def.Retrieval.Lambda
	}
	if len(cfg.Extraction.CautionKeywords) == 0 {
		cfg.Extraction.CautionKeywords = DefaultCautionKeywords
	}
	if len(cfg.Extraction.QueryTemplates) == 0 {
		cfg.Extraction.QueryTemplates = DefaultQueryTemplates
	}
	if cfg.Extraction.MaxParagraphLen <= 0 {
		cfg.Extraction.MaxParagraphLen = def.Extraction.MaxParagraphLen
	}
	if cfg.Embedder.Dimension <= 0 {
		cfg.Embedder.Dimension = def.Embedder.Dimension
	}
}
