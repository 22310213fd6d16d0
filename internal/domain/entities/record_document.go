package entities

import (
	"github.com/google/uuid"

	"github.com/ericyum/tour-agent-backend/pkg/geo"
)

var documentNamespace = uuid.MustParse("6f1c2a7e-3d4b-4c8a-9e21-5b7d0c9a4f13")

// RecordDocument is the search-index view of a record.
type RecordDocument struct {
	ID        string        `json:"id"`
	ContentID string        `json:"contentid"`
	Kind      CandidateKind `json:"kind"`
	Title     string        `json:"title"`
	Addr1     string        `json:"addr1,omitempty"`
	Overview  string        `json:"overview,omitempty"`
	Location  []float64     `json:"location,omitempty"` // [lat, lon]
	HasImage  bool          `json:"has_image"`
}

// NewRecordDocument builds the index document of a record. The ID is stable
// for a given kind and title so re-indexing upserts.
func NewRecordDocument(kind CandidateKind, r *LocatedRecord) RecordDocument {
	doc := RecordDocument{
		ID:        uuid.NewSHA1(documentNamespace, []byte(string(kind)+"/"+r.Title)).String(),
		ContentID: r.ContentID,
		Kind:      kind,
		Title:     r.Title,
		Addr1:     r.Addr1,
		Overview:  r.Overview,
		HasImage:  r.FirstImage != "",
	}
	if p, ok := geo.ParsePoint(r.MapX, r.MapY); ok {
		doc.Location = []float64{p.Lat, p.Lon}
	}
	return doc
}

// RecordHit is one search-index match.
type RecordHit struct {
	ContentID string        `json:"contentid"`
	Kind      CandidateKind `json:"kind"`
	Title     string        `json:"title"`
	Addr1     string        `json:"addr1,omitempty"`
	Score     float64       `json:"score"`
}
