package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Dacchu2004/lawGuide/datatypes"
)

// LegalSectionClass is the Weaviate class holding ingested statute
// sections. See EnsureSchema for its properties.
const LegalSectionClass = "LegalSection"

// SectionRetriever is the contract the pipeline consumes: candidate
// sections for a normalized English query, biased to the caller's
// jurisdiction. An empty result is a valid outcome, not an error.
type SectionRetriever interface {
	Search(ctx context.Context, query, state string, topK int) ([]datatypes.RetrievedSection, error)
}

// WeaviateRetriever implements SectionRetriever over a Weaviate
// nearVector query with a state-or-nationwide filter.
type WeaviateRetriever struct {
	client   *weaviate.Client
	embedder Embedder
}

func NewWeaviateRetriever(client *weaviate.Client, embedder Embedder) *WeaviateRetriever {
	return &WeaviateRetriever{client: client, embedder: embedder}
}

// legalSectionQueryResponse mirrors the GraphQL Get response shape for
// the LegalSection class.
type legalSectionQueryResponse struct {
	Get struct {
		LegalSection []legalSectionResult `json:"LegalSection"`
	} `json:"Get"`
}

type legalSectionResult struct {
	Act          string `json:"act"`
	SectionLabel string `json:"section_label"`
	Text         string `json:"text"`
	Jurisdiction string `json:"jurisdiction"`
	State        string `json:"state"`
	SourceLink   string `json:"source_link"`
	Additional   struct {
		Certainty *float32 `json:"certainty"`
	} `json:"_additional"`
}

// parseGraphQLResponse converts Weaviate's dynamic response payload into
// the target type via a marshal/unmarshal round trip.
func parseGraphQLResponse[T any](resp *models.GraphQLResponse) (*T, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil GraphQL response")
	}
	respBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL response data: %w", err)
	}
	var result T
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into target type: %w", err)
	}
	return &result, nil
}

// Search implements SectionRetriever.
//
// The where filter keeps sections tagged with the caller's state or the
// nationwide sentinel, so state-specific law outranks general law only
// through vector similarity, never by excluding nationwide sections.
func (r *WeaviateRetriever) Search(ctx context.Context, query, state string, topK int) ([]datatypes.RetrievedSection, error) {
	ctx, span := tracer.Start(ctx, "WeaviateRetriever.Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("retrieval.state", state),
		attribute.Int("retrieval.top_k", topK),
	)

	if query == "" {
		return nil, nil
	}
	if state == "" {
		state = datatypes.DefaultUserState
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embedding failed")
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	stateFilter := filters.Where().
		WithPath([]string{"state"}).
		WithOperator(filters.Equal).
		WithValueString(state)
	nationwideFilter := filters.Where().
		WithPath([]string{"state"}).
		WithOperator(filters.Equal).
		WithValueString(datatypes.DefaultUserState)
	where := filters.Where().
		WithOperator(filters.Or).
		WithOperands([]*filters.WhereBuilder{stateFilter, nationwideFilter})

	nearVector := r.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	fields := []graphql.Field{
		{Name: "act"},
		{Name: "section_label"},
		{Name: "text"},
		{Name: "jurisdiction"},
		{Name: "state"},
		{Name: "source_link"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}

	resp, err := r.client.GraphQL().Get().
		WithClassName(LegalSectionClass).
		WithFields(fields...).
		WithWhere(where).
		WithNearVector(nearVector).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "weaviate query failed")
		return nil, fmt.Errorf("weaviate search failed: %w", err)
	}

	parsed, err := parseGraphQLResponse[legalSectionQueryResponse](resp)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	sections := make([]datatypes.RetrievedSection, 0, len(parsed.Get.LegalSection))
	for _, row := range parsed.Get.LegalSection {
		sections = append(sections, datatypes.RetrievedSection{
			Act:          row.Act,
			Section:      row.SectionLabel,
			Text:         row.Text,
			Jurisdiction: row.Jurisdiction,
			State:        row.State,
			SourceLink:   row.SourceLink,
		})
	}
	span.SetAttributes(attribute.Int("retrieval.sections", len(sections)))
	slog.Debug("Retrieved legal sections", "query_chars", len(query), "state", state, "count", len(sections))
	return sections, nil
}
