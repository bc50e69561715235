package retrieval

import (
	"context"
	"log"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// GetLegalSectionSchema returns the class definition for ingested
// statute sections. Vectors come from the embedding sidecar, so no
// server-side vectorizer is configured.
func GetLegalSectionSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       LegalSectionClass,
		Description: "A single section of an Indian act, nationwide or state-specific.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:         "act",
				DataType:     []string{"text"},
				Description:  "Name of the act this section belongs to.",
				Tokenization: "word",
			},
			{
				Name:            "section_label",
				DataType:        []string{"text"},
				Description:     "Section number or label within the act (not unique across states).",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:         "text",
				DataType:     []string{"text"},
				Description:  "Full English text of the section.",
				Tokenization: "word",
			},
			{
				Name:            "jurisdiction",
				DataType:        []string{"text"},
				Description:     "Governmental scope, e.g. 'Central' or a state legislature.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "state",
				DataType:        []string{"text"},
				Description:     "State the section applies to, or 'India' for nationwide law.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:         "source_link",
				DataType:     []string{"text"},
				Description:  "Optional link to the official source of the section.",
				Tokenization: "field",
			},
		},
	}
}

// EnsureSchema creates the LegalSection class if it does not exist.
// Failure to create a missing class is fatal: the service cannot answer
// anything without its retrieval index.
func EnsureSchema(client *weaviate.Client) {
	class := GetLegalSectionSchema()
	slog.Info("Checking schema", "class", class.Class)

	_, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(context.Background())
	if err != nil {
		slog.Info("Schema not found, creating it...", "class", class.Class)
		if err := client.Schema().ClassCreator().WithClass(class).Do(context.Background()); err != nil {
			log.Fatalf("Failed to create schema for class %s: %v", class.Class, err)
		}
		slog.Info("Successfully created schema", "class", class.Class)
		return
	}
	slog.Info("Schema already exists", "class", class.Class)
}
