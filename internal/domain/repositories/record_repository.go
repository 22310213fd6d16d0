package repositories

import (
	"context"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
)

// RecordRepository is the read-only store of tourism records. Lookups by
// title return a NOT_FOUND AppError when no row matches.
type RecordRepository interface {
	// FestivalByTitle retrieves a festival by exact title
	FestivalByTitle(ctx context.Context, title string) (*entities.Festival, error)

	// FestivalsByTitles retrieves festivals for a batch of titles. Missing
	// titles are simply absent from the result.
	FestivalsByTitles(ctx context.Context, titles []string) ([]*entities.Festival, error)

	// FacilityByTitle retrieves a facility by exact title
	FacilityByTitle(ctx context.Context, title string) (*entities.Facility, error)

	// CourseByTitle retrieves a course with its sub-points ordered by sequence
	CourseByTitle(ctx context.Context, title string) (*entities.Course, error)

	ListLocatedFestivals(ctx context.Context) ([]*entities.Festival, error)
	ListLocatedFacilities(ctx context.Context) ([]*entities.Facility, error)
	ListLocatedCourseRows(ctx context.Context) ([]*entities.CourseRow, error)
}

// RecordSearchIndex is the full-text title index over all records.
type RecordSearchIndex interface {
	InitSchema(ctx context.Context) error
	Index(ctx context.Context, docs []entities.RecordDocument) error
	Search(ctx context.Context, query string, kind entities.CandidateKind, limit int) ([]entities.RecordHit, error)
}
