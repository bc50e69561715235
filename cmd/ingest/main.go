// Command ingest loads a legal-sections dataset into Weaviate.
//
// The dataset is a JSON array of section records:
//
//	[{"act": "...", "section": "...", "text": "...",
//	  "jurisdiction": "central", "state": "India", "source_link": "..."}]
//
// Each record is embedded via the embedder sidecar and written with an
// explicit vector. Object IDs are derived from the record content, so
// re-running the same dataset is idempotent.
//
// # Usage
//
//	ingest -file data/legal_sections.json
//
// # Environment Variables
//
//   - WEAVIATE_SERVICE_URL: vector DB URL (default: http://localhost:8080)
//   - EMBEDDER_SERVICE_URL: embedder sidecar (default: http://localhost:8001)
package main

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/Dacchu2004/lawGuide/retrieval"
)

// sectionRecord mirrors one dataset entry.
type sectionRecord struct {
	Act          string `json:"act"`
	Section      string `json:"section"`
	Text         string `json:"text"`
	Jurisdiction string `json:"jurisdiction"`
	State        string `json:"state"`
	SourceLink   string `json:"source_link"`
}

const batchSize = 64

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	filePath := flag.String("file", "", "path to the legal sections JSON dataset")
	flag.Parse()
	if *filePath == "" {
		log.Fatal("usage: ingest -file <dataset.json>")
	}

	records, err := loadDataset(*filePath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	slog.Info("Loaded dataset", "file", *filePath, "records", len(records))

	client, err := newWeaviateClient(getEnvString("WEAVIATE_SERVICE_URL", "http://localhost:8080"))
	if err != nil {
		log.Fatalf("Failed to create Weaviate client: %v", err)
	}
	retrieval.EnsureSchema(client)

	embedder := retrieval.NewHTTPEmbedder(getEnvString("EMBEDDER_SERVICE_URL", "http://localhost:8001"))

	ctx := context.Background()
	written, failed := 0, 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		ok, bad := ingestBatch(ctx, client, embedder, records[start:end])
		written += ok
		failed += bad
		slog.Info("Batch complete", "offset", start, "written", written, "failed", failed)
	}

	slog.Info("Ingestion finished", "written", written, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadDataset(path string) ([]sectionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []sectionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("dataset is not a JSON array of section records: %w", err)
	}
	var valid []sectionRecord
	for i, r := range records {
		if strings.TrimSpace(r.Text) == "" {
			slog.Warn("Skipping record with empty text", "index", i, "act", r.Act, "section", r.Section)
			continue
		}
		if r.State == "" {
			r.State = "India"
		}
		valid = append(valid, r)
	}
	return valid, nil
}

// ingestBatch embeds and writes one slice of records. Embedding
// failures skip the record; batch write failures fail the whole slice.
func ingestBatch(ctx context.Context, client *weaviate.Client, embedder retrieval.Embedder, records []sectionRecord) (written, failed int) {
	var objects []*models.Object
	for _, r := range records {
		vector, err := embedder.Embed(ctx, r.Text)
		if err != nil {
			slog.Error("Failed to embed section, skipping", "act", r.Act, "section", r.Section, "error", err)
			failed++
			continue
		}
		objects = append(objects, &models.Object{
			Class:  retrieval.LegalSectionClass,
			ID:     strfmt.UUID(recordID(r)),
			Vector: vector,
			Properties: map[string]interface{}{
				"act":           r.Act,
				"section_label": r.Section,
				"text":          r.Text,
				"jurisdiction":  r.Jurisdiction,
				"state":         r.State,
				"source_link":   r.SourceLink,
			},
		})
	}
	if len(objects) == 0 {
		return 0, failed
	}

	resp, err := client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		slog.Error("Failed to perform batch import to Weaviate", "error", err)
		return 0, failed + len(objects)
	}
	for _, item := range resp {
		if item.Result != nil && item.Result.Status != nil && *item.Result.Status == "SUCCESS" {
			written++
			continue
		}
		failed++
		if item.Result != nil && item.Result.Errors != nil {
			for _, errItem := range item.Result.Errors.Error {
				slog.Warn("Error in Weaviate batch item", "error", errItem.Message)
			}
		}
	}
	return written, failed
}

// recordID derives a stable UUID from the record's identity fields.
func recordID(r sectionRecord) string {
	hash := sha256.Sum256([]byte(r.Act + "|" + r.Section + "|" + r.State + "|" + r.Text))
	id, _ := uuid.FromBytes(hash[:16])
	return id.String()
}

func newWeaviateClient(rawURL string) (*weaviate.Client, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return weaviate.NewClient(weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	})
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
