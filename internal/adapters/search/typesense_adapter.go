package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/repositories"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
	tsclient "github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/typesense"
)

// CollectionName is the Typesense collection holding every record title.
const CollectionName = "tour_records"

// TypesenseAdapter implements the record title index on Typesense.
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.RecordSearchIndex = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	if _, err := a.client.Client().Collection(CollectionName).Retrieve(ctx); err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: CollectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "contentid", Type: "string", Optional: pointer.True()},
			{Name: "kind", Type: "string", Facet: pointer.True()},
			{Name: "title", Type: "string", Locale: pointer.String("ko")},
			{Name: "addr1", Type: "string", Optional: pointer.True(), Locale: pointer.String("ko")},
			{Name: "overview", Type: "string", Optional: pointer.True()},
			{Name: "location", Type: "geopoint", Optional: pointer.True()},
			{Name: "has_image", Type: "bool"},
		},
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}
	observability.LoggerFromContext(ctx).Info().Str("collection", CollectionName).Msg("created typesense collection")
	return nil
}

// Index upserts the documents one by one and reports how many failed.
func (a *TypesenseAdapter) Index(ctx context.Context, docs []entities.RecordDocument) error {
	failed := 0
	var lastErr error
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := a.client.Client().Collection(CollectionName).Documents().Upsert(ctx, toDocument(doc)); err != nil {
			failed++
			lastErr = err
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to index %d of %d records: %w", failed, len(docs), lastErr)
	}
	return nil
}

// Search matches titles and addresses, optionally restricted to one kind.
func (a *TypesenseAdapter) Search(ctx context.Context, query string, kind entities.CandidateKind, limit int) ([]entities.RecordHit, error) {
	params := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("title,addr1"),
		PerPage: pointer.Int(limit),
	}
	if kind != "" {
		params.FilterBy = pointer.String(kindFilter(kind))
	}

	result, err := a.client.Client().Collection(CollectionName).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}

	hits := []entities.RecordHit{}
	if result.Hits == nil {
		return hits, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		h := hitFromDocument(*hit.Document)
		if hit.TextMatch != nil {
			h.Score = float64(*hit.TextMatch)
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func kindFilter(kind entities.CandidateKind) string {
	return fmt.Sprintf("kind:=%s", kind)
}

func toDocument(doc entities.RecordDocument) map[string]interface{} {
	m := map[string]interface{}{
		"id":        doc.ID,
		"contentid": doc.ContentID,
		"kind":      string(doc.Kind),
		"title":     doc.Title,
		"has_image": doc.HasImage,
	}
	if doc.Addr1 != "" {
		m["addr1"] = doc.Addr1
	}
	if doc.Overview != "" {
		m["overview"] = doc.Overview
	}
	if len(doc.Location) == 2 {
		m["location"] = doc.Location
	}
	return m
}

func hitFromDocument(doc map[string]interface{}) entities.RecordHit {
	str := func(k string) string {
		s, _ := doc[k].(string)
		return s
	}
	return entities.RecordHit{
		ContentID: str("contentid"),
		Kind:      entities.CandidateKind(str("kind")),
		Title:     str("title"),
		Addr1:     str("addr1"),
	}
}
