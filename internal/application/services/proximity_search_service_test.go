package services_test

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ericyum/tour-agent-backend/internal/application/services"
	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/pkg/geo"
)

const originLat, originLon = 37.50, 127.00

// northOf returns a latitude string that lies meters due north of the origin.
func northOf(meters float64) string {
	return strconv.FormatFloat(originLat+meters/(geo.EarthRadiusMeters*math.Pi/180), 'f', -1, 64)
}

var originLonStr = strconv.FormatFloat(originLon, 'f', -1, 64)

func record(id, title, mapx, mapy string) entities.LocatedRecord {
	return entities.LocatedRecord{ContentID: id, Title: title, MapX: mapx, MapY: mapy}
}

func proximityRepo(facilities []*entities.Facility, festivals []*entities.Festival, rows []*entities.CourseRow) *MockRecordRepository {
	repo := new(MockRecordRepository)
	repo.On("ListLocatedFacilities", mock.Anything).Return(facilities, nil)
	repo.On("ListLocatedFestivals", mock.Anything).Return(festivals, nil)
	repo.On("ListLocatedCourseRows", mock.Anything).Return(rows, nil)
	return repo
}

func TestProximitySearch_RadiusScenario(t *testing.T) {
	repo := proximityRepo([]*entities.Facility{
		{LocatedRecord: record("f6", "far", originLonStr, northOf(6000))},
		{LocatedRecord: record("f4", "near", originLonStr, northOf(4000))},
	}, nil, nil)
	svc := services.NewProximitySearchService(repo)

	res, err := svc.Search(context.Background(), entities.NearbyQuery{Latitude: originLat, Longitude: originLon, Radius: 5000})

	require.NoError(t, err)
	require.Len(t, res.Facilities, 1)
	assert.Equal(t, "f4", res.Facilities[0].ContentID)
	assert.InDelta(t, 4000, *res.Facilities[0].Distance, 0.5)
	assert.False(t, res.Empty)
}

func TestProximitySearch_SortsAndCorrectsSwappedAxes(t *testing.T) {
	repo := proximityRepo([]*entities.Facility{
		{LocatedRecord: record("b", "b", originLonStr, northOf(3000))},
		{LocatedRecord: record("swapped", "s", northOf(1000), originLonStr)},
		{LocatedRecord: record("bad", "x", "not-a-number", "37.5")},
		{LocatedRecord: record("empty", "y", "", "")},
	}, nil, nil)
	svc := services.NewProximitySearchService(repo)

	res, err := svc.Search(context.Background(), entities.NearbyQuery{Latitude: originLat, Longitude: originLon, Radius: 5000})

	require.NoError(t, err)
	require.Len(t, res.Facilities, 2)
	assert.Equal(t, "swapped", res.Facilities[0].ContentID)
	assert.Equal(t, "b", res.Facilities[1].ContentID)
}

func TestProximitySearch_ExcludesCurrentFestivalOnly(t *testing.T) {
	repo := proximityRepo(
		[]*entities.Facility{{LocatedRecord: record("cur", "facility same id", originLonStr, northOf(100))}},
		[]*entities.Festival{
			{LocatedRecord: record("cur", "current", originLonStr, northOf(100))},
			{LocatedRecord: record("other", "other", originLonStr, northOf(200))},
		}, nil)
	svc := services.NewProximitySearchService(repo)

	res, err := svc.Search(context.Background(), entities.NearbyQuery{
		Latitude: originLat, Longitude: originLon, Radius: 1000, CurrentFestivalID: "cur",
	})

	require.NoError(t, err)
	require.Len(t, res.Festivals, 1)
	assert.Equal(t, "other", res.Festivals[0].ContentID)
	assert.Len(t, res.Facilities, 1)
}

func TestProximitySearch_GroupsCourses(t *testing.T) {
	c1 := record("c1", "course one", "", "")
	c2 := record("c2", "course two", "", "")
	rows := []*entities.CourseRow{
		{Course: c1, SubPoint: entities.SubPoint{Seq: 3, Name: "c1-3", MapX: originLonStr, MapY: northOf(2500)}},
		{Course: c1, SubPoint: entities.SubPoint{Seq: 1, Name: "c1-1", MapX: originLonStr, MapY: northOf(1500)}},
		{Course: c1, SubPoint: entities.SubPoint{Seq: 2, Name: "c1-2", MapX: originLonStr, MapY: northOf(9000)}},
		{Course: c2, SubPoint: entities.SubPoint{Seq: 1, Name: "c2-1", MapX: originLonStr, MapY: northOf(800)}},
		{Course: record("c3", "out of range", "", ""), SubPoint: entities.SubPoint{Seq: 1, MapX: originLonStr, MapY: northOf(7000)}},
	}
	svc := services.NewProximitySearchService(proximityRepo(nil, nil, rows))

	res, err := svc.Search(context.Background(), entities.NearbyQuery{Latitude: originLat, Longitude: originLon, Radius: 3000})

	require.NoError(t, err)
	require.Len(t, res.Courses, 2)
	assert.Equal(t, "c2", res.Courses[0].ContentID)
	assert.Equal(t, "c1", res.Courses[1].ContentID)
	assert.InDelta(t, 1500, *res.Courses[1].Distance, 0.5)
	require.Len(t, res.Courses[1].SubPoints, 2)
	assert.Equal(t, "c1-1", res.Courses[1].SubPoints[0].Name)
	assert.Equal(t, "c1-3", res.Courses[1].SubPoints[1].Name)
}

func TestProximitySearch_InvalidQueryIsEmpty(t *testing.T) {
	repo := new(MockRecordRepository)
	svc := services.NewProximitySearchService(repo)

	for _, q := range []entities.NearbyQuery{
		{Latitude: originLat, Longitude: originLon},
		{Latitude: math.NaN(), Longitude: originLon, Radius: 100},
		{Radius: 100},
	} {
		res, err := svc.Search(context.Background(), q)
		require.NoError(t, err)
		assert.True(t, res.Empty)
		assert.Empty(t, res.Facilities)
	}
	repo.AssertNotCalled(t, "ListLocatedFacilities", mock.Anything)
}

func TestProximitySearch_RepositoryError(t *testing.T) {
	repo := new(MockRecordRepository)
	repo.On("ListLocatedFacilities", mock.Anything).Return(nil, errors.New("db down"))
	repo.On("ListLocatedFestivals", mock.Anything).Return([]*entities.Festival{}, nil).Maybe()
	repo.On("ListLocatedCourseRows", mock.Anything).Return([]*entities.CourseRow{}, nil).Maybe()
	svc := services.NewProximitySearchService(repo)

	_, err := svc.Search(context.Background(), entities.NearbyQuery{Latitude: originLat, Longitude: originLon, Radius: 100})

	assert.Error(t, err)
}
