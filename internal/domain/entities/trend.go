package entities

// TrendPoint is one day of a search-trend series.
type TrendPoint struct {
	Period string  `json:"period"`
	Ratio  float64 `json:"ratio"`
}
