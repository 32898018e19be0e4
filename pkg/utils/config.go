package utils

import (
	"os"
	"strconv"
)

type PipelineConfig struct {
	StorePath string
	UPCBatch  int
	MaxPages  int
	Workers   int
}

func LoadPipelineConfig() PipelineConfig {
	cfg := PipelineConfig{
		StorePath: "data/editions.csv",
		UPCBatch:  75,
		MaxPages:  30,
		Workers:   4,
	}

	if p := os.Getenv("COMICHUB_STORE_PATH"); p != "" {
		cfg.StorePath = p
	}
	if n := envInt("COMICHUB_UPC_BATCH"); n > 0 {
		cfg.UPCBatch = n
	}
	if n := envInt("COMICHUB_MAX_PAGES"); n > 0 {
		cfg.MaxPages = n
	}
	if n := envInt("COMICHUB_LOOKUP_WORKERS"); n > 0 {
		cfg.Workers = n
	}
	return cfg
}

// envInt reads an integer env var; unset or malformed returns 0 and the
// caller keeps its default.
func envInt(key string) int {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
