package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	tsclient "github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/typesense"
	"github.com/ericyum/tour-agent-backend/pkg/config"
)

func TestToDocument(t *testing.T) {
	doc := toDocument(entities.RecordDocument{
		ID: "x", ContentID: "1", Kind: entities.KindCourse, Title: "코스",
		Location: []float64{37.5, 127.0},
	})

	assert.Equal(t, "course", doc["kind"])
	assert.Equal(t, []float64{37.5, 127.0}, doc["location"])
	_, hasAddr := doc["addr1"]
	assert.False(t, hasAddr)

	noLoc := toDocument(entities.RecordDocument{ID: "y", Title: "t"})
	_, hasLoc := noLoc["location"]
	assert.False(t, hasLoc)
}

func TestKindFilter(t *testing.T) {
	assert.Equal(t, "kind:=festival", kindFilter(entities.KindFestival))
}

func TestHitFromDocumentToleratesMissingFields(t *testing.T) {
	h := hitFromDocument(map[string]interface{}{"title": "축제", "kind": "festival", "contentid": 12})
	assert.Equal(t, "축제", h.Title)
	assert.Equal(t, entities.KindFestival, h.Kind)
	assert.Empty(t, h.ContentID)
}

func TestSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/collections/tour_records/documents/search"))
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"found": 1,
			"hits": []map[string]interface{}{{
				"document":   map[string]interface{}{"contentid": "1", "kind": "festival", "title": "서울 불꽃축제"},
				"text_match": 578730123365187705,
			}},
		})
	}))
	defer srv.Close()

	adapter := NewTypesenseAdapter(tsclient.New(&config.TypesenseConfig{URL: srv.URL, APIKey: "k"}))

	hits, err := adapter.Search(context.Background(), "불꽃", entities.KindFestival, 5)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "서울 불꽃축제", hits[0].Title)
	assert.Positive(t, hits[0].Score)
	assert.Contains(t, gotQuery, "filter_by=kind")
	assert.Contains(t, gotQuery, "per_page=5")
}
