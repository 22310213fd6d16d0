package entities

// NearbyQuery is a proximity search around an origin point.
type NearbyQuery struct {
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Radius            float64 `json:"radius"`
	CurrentFestivalID string  `json:"current_festival_id,omitempty"`
}

// NearbyResult holds recommendations sorted ascending by distance.
type NearbyResult struct {
	Facilities []*Facility `json:"recommended_facilities"`
	Courses    []*Course   `json:"recommended_courses"`
	Festivals  []*Festival `json:"recommended_festivals"`
	Empty      bool        `json:"empty"`
}
