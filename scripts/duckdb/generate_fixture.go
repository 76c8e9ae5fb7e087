package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"topicbook/internal/backend"
	"topicbook/internal/duckdb"
	"topicbook/internal/library"
	"topicbook/pkg/topicbook"
)

// fixtureConfig defines the JSON config for generating a task ledger fixture.
type fixtureConfig struct {
	Topics   []string `json:"topics"`
	Attempts int      `json:"attempts"`
	// FailEvery marks every Nth attempt as failed. Zero means none fail.
	FailEvery int `json:"fail_every"`
}

func main() {
	configPath := flag.String("config", "", "path to fixture config JSON")
	outPath := flag.String("out", "", "output duckdb file path")
	flag.Parse()
	if *configPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: generate_fixture --config <path> --out <duckdb file>")
		os.Exit(2)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir output dir: %v\n", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := generateFixture(ctx, *outPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "generate fixture: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (fixtureConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixtureConfig{}, err
	}
	var cfg fixtureConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fixtureConfig{}, err
	}
	if len(cfg.Topics) == 0 {
		return fixtureConfig{}, errors.New("at least one topic is required")
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	return cfg, nil
}

func generateFixture(ctx context.Context, path string, cfg fixtureConfig) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	ledger, err := duckdb.Open(ctx, path)
	if err != nil {
		return err
	}
	defer ledger.Close()

	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	for _, topic := range cfg.Topics {
		for attempt := 0; attempt < cfg.Attempts; attempt++ {
			n++
			created := start.Add(time.Duration(n) * time.Minute)
			info := backend.TaskInfo{
				ID:        deterministicID(n),
				Topic:     topic,
				Status:    backend.StatusPending,
				CreatedAt: created,
			}
			if err := ledger.RecordCreated(ctx, info); err != nil {
				return err
			}
			info.FinishedAt = created.Add(40 * time.Second)
			if cfg.FailEvery > 0 && n%cfg.FailEvery == 0 {
				info.Status = backend.StatusFailed
				info.Error = "pipeline: search quota exhausted"
			} else {
				info.Status = backend.StatusSucceeded
				info.Filename = library.BaseFilename(topic) + ".md"
			}
			if err := ledger.RecordFinished(ctx, info); err != nil {
				return err
			}
		}
	}
	fmt.Printf("wrote %d tasks to %s\n", n, path)
	return nil
}

// deterministicID derives a stable task id so fixtures diff cleanly.
func deterministicID(index int) topicbook.TaskID {
	return topicbook.TaskID(uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "topicbook-fixture-%d", index)).String())
}
