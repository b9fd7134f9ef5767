// Command replay sends a fixed list of customer questions through the
// configured LLM provider using the production support prompt, and writes
// the answers to JSON and CSV for side-by-side review.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ShopAssist/models"
	"ShopAssist/pkg/config"
	svc "ShopAssist/pkg/services"

	"github.com/google/uuid"
)

type ResultItem struct {
	Query      string `json:"query"`
	Response   string `json:"response"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Provider   string `json:"provider"`
	Timestamp  string `json:"timestamp"`
}

type RunSummary struct {
	RunID        string       `json:"run_id"`
	StartedAt    string       `json:"started_at"`
	EndedAt      string       `json:"ended_at"`
	Env          string       `json:"env"`
	Provider     string       `json:"provider"`
	TotalQueries int          `json:"total_queries"`
	Failures     int          `json:"failures"`
	Results      []ResultItem `json:"results"`
}

// parseQueries accepts either ["q1", "q2", ...] or [{"q": "..."}, ...].
func parseQueries(data []byte) ([]string, error) {
	var arrAny []any
	if err := json.Unmarshal(data, &arrAny); err != nil {
		return nil, fmt.Errorf("invalid queries file: %w", err)
	}
	out := make([]string, 0, len(arrAny))
	for _, v := range arrAny {
		switch t := v.(type) {
		case string:
			if q := strings.TrimSpace(t); q != "" {
				out = append(out, q)
			}
		case map[string]any:
			if qv, ok := t["q"].(string); ok && strings.TrimSpace(qv) != "" {
				out = append(out, strings.TrimSpace(qv))
			}
		}
	}
	if len(out) == 0 {
		return nil, errors.New("queries file is empty or malformed")
	}
	return out, nil
}

type runner struct {
	gen      svc.Generator
	provider string
	timeout  time.Duration
	pause    time.Duration
	now      func() time.Time
}

// run asks every query as the first message of a fresh conversation. Errors
// are recorded per query and do not stop the run.
func (r *runner) run(ctx context.Context, queries []string) []ResultItem {
	results := make([]ResultItem, 0, len(queries))
	for i, q := range queries {
		if i > 0 && r.pause > 0 {
			time.Sleep(r.pause)
		}
		transcript := svc.RenderTranscript([]models.Message{{Role: models.RoleUser, Content: q}})
		prompt := svc.BuildSupportPrompt(transcript, q)

		start := r.now()
		qctx, cancel := context.WithTimeout(ctx, r.timeout)
		reply, err := r.gen.Generate(qctx, prompt)
		cancel()

		item := ResultItem{
			Query:      q,
			Response:   strings.TrimSpace(reply),
			DurationMs: r.now().Sub(start).Milliseconds(),
			Provider:   r.provider,
			Timestamp:  start.UTC().Format(time.RFC3339),
		}
		if err != nil {
			item.Error = err.Error()
		}
		log.Printf("[replay] %d/%d %q -> %dms error=%v", i+1, len(queries), truncate(q, 64), item.DurationMs, err != nil)
		results = append(results, item)
	}
	return results
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeCSV(path string, items []ResultItem) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	_ = w.Write([]string{"query", "provider", "duration_ms", "error", "response"})
	for _, it := range items {
		_ = w.Write([]string{it.Query, it.Provider, strconv.FormatInt(it.DurationMs, 10), it.Error, it.Response})
	}
	w.Flush()
	return w.Error()
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func main() {
	queriesPath := flag.String("queries", "queries.json", "JSON list of customer questions")
	outDir := flag.String("out", filepath.Join("cmd", "replay", "results"), "output directory")
	timeoutSec := flag.Int("timeout", 40, "seconds allowed per question")
	sleepMs := flag.Int("sleep-ms", 600, "pause between questions, to stay under provider rate limits")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[replay] config: %v", err)
	}
	data, err := os.ReadFile(*queriesPath)
	if err != nil {
		log.Fatalf("[replay] cannot read %s: %v", *queriesPath, err)
	}
	queries, err := parseQueries(data)
	if err != nil {
		log.Fatalf("[replay] %v", err)
	}

	ctx := context.Background()
	gen, err := svc.NewGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("[replay] llm provider: %v", err)
	}

	started := time.Now()
	r := &runner{
		gen:      gen,
		provider: cfg.LLMProvider,
		timeout:  time.Duration(*timeoutSec) * time.Second,
		pause:    time.Duration(*sleepMs) * time.Millisecond,
		now:      time.Now,
	}
	results := r.run(ctx, queries)

	summary := RunSummary{
		RunID:        "replay-" + started.Format("20060102-150405") + "-" + uuid.NewString()[:8],
		StartedAt:    started.UTC().Format(time.RFC3339),
		EndedAt:      time.Now().UTC().Format(time.RFC3339),
		Env:          cfg.AppEnv,
		Provider:     cfg.LLMProvider,
		TotalQueries: len(queries),
		Results:      results,
	}
	for _, it := range results {
		if it.Error != "" {
			summary.Failures++
		}
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("[replay] %v", err)
	}
	base := filepath.Join(*outDir, summary.RunID)
	if err := writeJSON(base+".json", summary); err != nil {
		log.Fatalf("[replay] write json: %v", err)
	}
	if err := writeCSV(base+".csv", results); err != nil {
		log.Fatalf("[replay] write csv: %v", err)
	}
	log.Printf("[replay] %d questions, %d failures, results in %s.{json,csv}", summary.TotalQueries, summary.Failures, base)
}
