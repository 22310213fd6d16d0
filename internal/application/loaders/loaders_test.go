package loaders_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericyum/tour-agent-backend/internal/application/loaders"
	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	apperrors "github.com/ericyum/tour-agent-backend/pkg/errors"
)

type batchRepo struct {
	calls [][]string
	err   error
	known map[string]*entities.Festival
}

func (r *batchRepo) FestivalsByTitles(_ context.Context, titles []string) ([]*entities.Festival, error) {
	r.calls = append(r.calls, titles)
	if r.err != nil {
		return nil, r.err
	}
	var out []*entities.Festival
	for _, t := range titles {
		if f, ok := r.known[t]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *batchRepo) FestivalByTitle(context.Context, string) (*entities.Festival, error) {
	return nil, nil
}
func (r *batchRepo) FacilityByTitle(context.Context, string) (*entities.Facility, error) {
	return nil, nil
}
func (r *batchRepo) CourseByTitle(context.Context, string) (*entities.Course, error) { return nil, nil }
func (r *batchRepo) ListLocatedFestivals(context.Context) ([]*entities.Festival, error) {
	return nil, nil
}
func (r *batchRepo) ListLocatedFacilities(context.Context) ([]*entities.Facility, error) {
	return nil, nil
}
func (r *batchRepo) ListLocatedCourseRows(context.Context) ([]*entities.CourseRow, error) {
	return nil, nil
}

func festival(title string) *entities.Festival {
	return &entities.Festival{LocatedRecord: entities.LocatedRecord{ContentID: "id-" + title, Title: title}}
}

func TestFestivalByTitle_BatchesAndReportsMissing(t *testing.T) {
	repo := &batchRepo{known: map[string]*entities.Festival{
		"a": festival("a"),
		"b": festival("b"),
	}}
	l := loaders.NewLoaders(repo)

	got, errs := l.FestivalByTitle.LoadMany(context.Background(), []string{"a", "missing", "b"})()

	require.Len(t, got, 3)
	assert.Equal(t, "id-a", got[0].ContentID)
	assert.Equal(t, "id-b", got[2].ContentID)
	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.True(t, apperrors.IsType(errs[1], apperrors.ErrorTypeNotFound))
	assert.Len(t, repo.calls, 1)
}

func TestFestivalByTitle_RepositoryErrorFailsEveryKey(t *testing.T) {
	repo := &batchRepo{err: errors.New("db down")}
	l := loaders.NewLoaders(repo)

	_, errs := l.FestivalByTitle.LoadMany(context.Background(), []string{"a", "b"})()

	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.EqualError(t, err, "db down")
	}
}

func TestWithLoaders(t *testing.T) {
	assert.Nil(t, loaders.For(context.Background()))

	l := loaders.NewLoaders(&batchRepo{})
	ctx := loaders.WithLoaders(context.Background(), l)
	assert.Same(t, l, loaders.For(ctx))
}
