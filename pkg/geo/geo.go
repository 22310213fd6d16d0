package geo

import (
	"math"
	"strconv"
	"strings"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

// Korea bounding box used to detect transposed coordinates.
const (
	koreaMinLon = 124.0
	koreaMaxLon = 132.0
	koreaMinLat = 33.0
	koreaMaxLat = 39.0
)

// Point is a WGS84 coordinate.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Haversine returns the great-circle distance in meters between two points.
// It returns +Inf when any coordinate is NaN or infinite.
func Haversine(lonA, latA, lonB, latB float64) float64 {
	for _, v := range [...]float64{lonA, latA, lonB, latB} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return math.Inf(1)
		}
	}

	lonA, latA, lonB, latB = toRadians(lonA), toRadians(latA), toRadians(lonB), toRadians(latB)
	dLon := lonB - lonA
	dLat := latB - latA

	a := math.Pow(math.Sin(dLat/2), 2) + math.Cos(latA)*math.Cos(latB)*math.Pow(math.Sin(dLon/2), 2)
	// rounding can push a marginally above 1 for antipodal points
	a = math.Min(1, a)
	return 2 * math.Asin(math.Sqrt(a)) * EarthRadiusMeters
}

// HaversineStrings parses the four coordinates and returns the distance in
// meters, or +Inf if any of them is not a real number.
func HaversineStrings(lonA, latA, lonB, latB string) float64 {
	values := make([]float64, 0, 4)
	for _, raw := range [...]string{lonA, latA, lonB, latB} {
		v, ok := ParseCoordinate(raw)
		if !ok {
			return math.Inf(1)
		}
		values = append(values, v)
	}
	return Haversine(values[0], values[1], values[2], values[3])
}

// Distance returns the distance in meters between two points.
func Distance(a, b Point) float64 {
	return Haversine(a.Lon, a.Lat, b.Lon, b.Lat)
}

// ParseCoordinate parses a single stored coordinate value.
func ParseCoordinate(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// InKorea reports whether lon/lat fall strictly inside the Korea bounding box.
func InKorea(lon, lat float64) bool {
	return lon > koreaMinLon && lon < koreaMaxLon && lat > koreaMinLat && lat < koreaMaxLat
}

// CorrectAxes swaps lon and lat when the pair lies outside Korea but the
// swapped pair lies inside it. Applying it twice is the same as applying it once.
func CorrectAxes(lon, lat float64) (float64, float64) {
	if !InKorea(lon, lat) && InKorea(lat, lon) {
		return lat, lon
	}
	return lon, lat
}

// ParsePoint parses stored mapx (longitude) and mapy (latitude) values and
// applies axis correction.
func ParsePoint(mapx, mapy string) (Point, bool) {
	lon, ok := ParseCoordinate(mapx)
	if !ok {
		return Point{}, false
	}
	lat, ok := ParseCoordinate(mapy)
	if !ok {
		return Point{}, false
	}
	lon, lat = CorrectAxes(lon, lat)
	return Point{Lon: lon, Lat: lat}, true
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
