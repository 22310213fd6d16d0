package services

import (
	"context"
	"strings"

	"github.com/ericyum/tour-agent-backend/internal/application/loaders"
	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/repositories"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
	apperrors "github.com/ericyum/tour-agent-backend/pkg/errors"
)

const defaultSearchLimit = 10

// PlaceRef names a facility or course to rank, optionally with the distance
// already measured from the user.
type PlaceRef struct {
	Title    string   `json:"title"`
	Distance *float64 `json:"distance,omitempty"`
}

// CandidateService resolves titles into rankable candidates and serves the
// single-record lookups.
type CandidateService struct {
	repo  repositories.RecordRepository
	index repositories.RecordSearchIndex
}

// NewCandidateService creates a new candidate service. index may be nil when
// no search backend is configured.
func NewCandidateService(repo repositories.RecordRepository, index repositories.RecordSearchIndex) *CandidateService {
	return &CandidateService{repo: repo, index: index}
}

// FestivalsByTitles resolves festival titles in one batch. Unknown titles are
// dropped; the result keeps the order of the first occurrence of each title.
func (s *CandidateService) FestivalsByTitles(ctx context.Context, titles []string) ([]*entities.Festival, error) {
	keys := uniqueTitles(titles)
	if len(keys) == 0 {
		return nil, nil
	}

	l := loaders.For(ctx)
	if l == nil {
		l = loaders.NewLoaders(s.repo)
	}
	festivals, errs := l.FestivalByTitle.LoadMany(ctx, keys)()

	logger := observability.LoggerFromContext(ctx)
	out := make([]*entities.Festival, 0, len(keys))
	for i, f := range festivals {
		if errs != nil && errs[i] != nil {
			if apperrors.IsType(errs[i], apperrors.ErrorTypeNotFound) {
				logger.Debug().Str("title", keys[i]).Msg("festival not found, skipping")
				continue
			}
			return nil, apperrors.NewInternalError("failed to load festivals", errs[i])
		}
		if f != nil {
			out = append(out, f)
		}
	}
	return out, nil
}

// Places resolves place references into facilities or courses and attaches
// the supplied distance to a copy of each record. Unknown titles are dropped.
func (s *CandidateService) Places(ctx context.Context, refs []PlaceRef, isCourse bool) ([]entities.Candidate, error) {
	logger := observability.LoggerFromContext(ctx)
	out := make([]entities.Candidate, 0, len(refs))
	for _, ref := range refs {
		title := strings.TrimSpace(ref.Title)
		if title == "" {
			continue
		}

		var c entities.Candidate
		var err error
		if isCourse {
			var course *entities.Course
			course, err = s.repo.CourseByTitle(ctx, title)
			if err == nil {
				copied := *course
				c = &copied
			}
		} else {
			var facility *entities.Facility
			facility, err = s.repo.FacilityByTitle(ctx, title)
			if err == nil {
				copied := *facility
				c = &copied
			}
		}
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
				logger.Debug().Str("title", title).Bool("is_course", isCourse).Msg("place not found, skipping")
				continue
			}
			return nil, err
		}

		if ref.Distance != nil {
			d := *ref.Distance
			c.Base().Distance = &d
		}
		out = append(out, c)
	}
	return out, nil
}

// Festival returns one festival by title.
func (s *CandidateService) Festival(ctx context.Context, title string) (*entities.Festival, error) {
	return s.repo.FestivalByTitle(ctx, title)
}

// Facility returns one facility by title.
func (s *CandidateService) Facility(ctx context.Context, title string) (*entities.Facility, error) {
	return s.repo.FacilityByTitle(ctx, title)
}

// Course returns one course with its ordered sub-points.
func (s *CandidateService) Course(ctx context.Context, title string) (*entities.Course, error) {
	return s.repo.CourseByTitle(ctx, title)
}

// Search looks titles up in the search index. An empty kind searches every
// kind.
func (s *CandidateService) Search(ctx context.Context, query string, kind entities.CandidateKind, limit int) ([]entities.RecordHit, error) {
	if s.index == nil {
		return nil, apperrors.NewUnavailableError("search index is not configured")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("query is required")
	}
	switch kind {
	case "", entities.KindFestival, entities.KindFacility, entities.KindCourse:
	default:
		return nil, apperrors.NewValidationError("unknown kind: " + string(kind))
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	hits, err := s.index.Search(ctx, query, kind, limit)
	if err != nil {
		return nil, apperrors.NewExternalError("record search failed", err)
	}
	return hits, nil
}

func uniqueTitles(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
