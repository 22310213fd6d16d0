package services

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/repositories"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
	"github.com/ericyum/tour-agent-backend/pkg/geo"
)

// ProximitySearchService finds facilities, courses and festivals around a
// point.
type ProximitySearchService struct {
	repo repositories.RecordRepository
}

// NewProximitySearchService creates a new proximity search service
func NewProximitySearchService(repo repositories.RecordRepository) *ProximitySearchService {
	return &ProximitySearchService{repo: repo}
}

// ValidQuery reports whether a query has a usable origin and radius.
func ValidQuery(q entities.NearbyQuery) bool {
	for _, v := range [...]float64{q.Latitude, q.Longitude, q.Radius} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if q.Latitude == 0 && q.Longitude == 0 {
		return false
	}
	return q.Radius > 0
}

// Search returns the records within q.Radius meters of the origin, each list
// sorted ascending by distance. An invalid query yields an empty result.
func (s *ProximitySearchService) Search(ctx context.Context, q entities.NearbyQuery) (*entities.NearbyResult, error) {
	ctx, span := observability.StartSpan(ctx, "ProximitySearchService.Search")
	defer span.End()

	result := &entities.NearbyResult{
		Facilities: []*entities.Facility{},
		Courses:    []*entities.Course{},
		Festivals:  []*entities.Festival{},
	}
	if !ValidQuery(q) {
		result.Empty = true
		return result, nil
	}
	origin := geo.Point{Lon: q.Longitude, Lat: q.Latitude}

	var (
		facilities []*entities.Facility
		festivals  []*entities.Festival
		courseRows []*entities.CourseRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		facilities, err = s.repo.ListLocatedFacilities(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		festivals, err = s.repo.ListLocatedFestivals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		courseRows, err = s.repo.ListLocatedCourseRows(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	result.Facilities = nearbyFacilities(origin, q.Radius, facilities)
	result.Festivals = nearbyFestivals(origin, q.Radius, q.CurrentFestivalID, festivals)
	result.Courses = nearbyCourses(origin, q.Radius, courseRows)
	result.Empty = len(result.Facilities) == 0 && len(result.Courses) == 0 && len(result.Festivals) == 0

	observability.LoggerFromContext(ctx).Debug().
		Int("facilities", len(result.Facilities)).
		Int("courses", len(result.Courses)).
		Int("festivals", len(result.Festivals)).
		Float64("radius", q.Radius).
		Msg("nearby search completed")

	return result, nil
}

// distanceTo returns the corrected distance from origin, or false when the
// stored coordinates cannot be parsed.
func distanceTo(origin geo.Point, mapx, mapy string) (float64, bool) {
	p, ok := geo.ParsePoint(mapx, mapy)
	if !ok {
		return 0, false
	}
	d := geo.Distance(origin, p)
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return 0, false
	}
	return d, true
}

func nearbyFacilities(origin geo.Point, radius float64, in []*entities.Facility) []*entities.Facility {
	out := make([]*entities.Facility, 0)
	for _, f := range in {
		d, ok := distanceTo(origin, f.MapX, f.MapY)
		if !ok || d > radius {
			continue
		}
		cp := *f
		cp.Distance = &d
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	return out
}

func nearbyFestivals(origin geo.Point, radius float64, excludeID string, in []*entities.Festival) []*entities.Festival {
	out := make([]*entities.Festival, 0)
	for _, f := range in {
		if excludeID != "" && f.ContentID == excludeID {
			continue
		}
		d, ok := distanceTo(origin, f.MapX, f.MapY)
		if !ok || d > radius {
			continue
		}
		cp := *f
		cp.Distance = &d
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	return out
}

// nearbyCourses groups sub-point rows by parent course. A course is kept
// when any of its sub-points is in range; its distance is the nearest
// in-range sub-point and only in-range sub-points are attached.
func nearbyCourses(origin geo.Point, radius float64, rows []*entities.CourseRow) []*entities.Course {
	groups := make(map[string]*entities.Course)
	order := make([]string, 0)

	for _, row := range rows {
		d, ok := distanceTo(origin, row.SubPoint.MapX, row.SubPoint.MapY)
		if !ok || d > radius {
			continue
		}
		id := row.Course.ContentID
		course, seen := groups[id]
		if !seen {
			course = &entities.Course{LocatedRecord: row.Course}
			course.Distance = nil
			groups[id] = course
			order = append(order, id)
		}
		sp := row.SubPoint
		sp.Distance = &d
		course.SubPoints = append(course.SubPoints, sp)
		if course.Distance == nil || d < *course.Distance {
			dist := d
			course.Distance = &dist
		}
	}

	out := make([]*entities.Course, 0, len(order))
	for _, id := range order {
		course := groups[id]
		sort.SliceStable(course.SubPoints, func(i, j int) bool {
			return course.SubPoints[i].Seq < course.SubPoints[j].Seq
		})
		out = append(out, course)
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	return out
}
