package entities

// CandidateKind tags the variant carried by a Candidate.
type CandidateKind string

const (
	KindFestival CandidateKind = "festival"
	KindFacility CandidateKind = "facility"
	KindCourse   CandidateKind = "course"
)

// LocatedRecord is a read-only snapshot of a tourism record. MapX holds the
// longitude and MapY the latitude exactly as stored; either may be empty or
// axis-swapped. Distance is only set on copies produced by a search.
type LocatedRecord struct {
	ContentID  string   `json:"contentid" db:"contentid"`
	Title      string   `json:"title" db:"title"`
	MapX       string   `json:"mapx" db:"mapx"`
	MapY       string   `json:"mapy" db:"mapy"`
	Addr1      string   `json:"addr1,omitempty" db:"addr1"`
	Addr2      string   `json:"addr2,omitempty" db:"addr2"`
	Tel        string   `json:"tel,omitempty" db:"tel"`
	Homepage   string   `json:"homepage,omitempty" db:"homepage"`
	FirstImage string   `json:"firstimage,omitempty" db:"firstimage"`
	Overview   string   `json:"overview,omitempty" db:"overview"`
	Distance   *float64 `json:"distance,omitempty" db:"-"`
}

// Period is an event period as YYYYMMDD strings.
type Period struct {
	Start string `json:"eventstartdate" db:"eventstartdate"`
	End   string `json:"eventenddate" db:"eventenddate"`
}

// Candidate is any record that can be ranked. The set of implementations is
// closed: *Festival, *Facility and *Course.
type Candidate interface {
	Kind() CandidateKind
	Base() *LocatedRecord
	sealed()
}

// Festival is a time-bounded event.
type Festival struct {
	LocatedRecord
	Period     Period `json:"period"`
	EventPlace string `json:"eventplace,omitempty" db:"eventplace"`
	PlayTime   string `json:"playtime,omitempty" db:"playtime"`
}

func (f *Festival) Kind() CandidateKind  { return KindFestival }
func (f *Festival) Base() *LocatedRecord { return &f.LocatedRecord }
func (f *Festival) sealed()              {}

// Facility is a cultural facility with operating hours.
type Facility struct {
	LocatedRecord
	UseTime  string `json:"usetimeculture,omitempty" db:"usetimeculture"`
	RestDate string `json:"restdateculture,omitempty" db:"restdateculture"`
	UseFee   string `json:"usefee,omitempty" db:"usefee"`
}

func (f *Facility) Kind() CandidateKind  { return KindFacility }
func (f *Facility) Base() *LocatedRecord { return &f.LocatedRecord }
func (f *Facility) sealed()              {}

// Course is a multi-stop travel course. SubPoints are ordered by Seq.
type Course struct {
	LocatedRecord
	TakeTime  string     `json:"taketime,omitempty" db:"taketime"`
	Theme     string     `json:"theme,omitempty" db:"theme"`
	SubPoints []SubPoint `json:"sub_points"`
}

func (c *Course) Kind() CandidateKind  { return KindCourse }
func (c *Course) Base() *LocatedRecord { return &c.LocatedRecord }
func (c *Course) sealed()              {}

// SubPointNames returns the non-empty sub-point names in order.
func (c *Course) SubPointNames() []string {
	names := make([]string, 0, len(c.SubPoints))
	for _, sp := range c.SubPoints {
		if sp.Name != "" {
			names = append(names, sp.Name)
		}
	}
	return names
}

// SubPoint is one stop of a course.
type SubPoint struct {
	Seq       int      `json:"subnum" db:"subnum"`
	ContentID string   `json:"subcontentid" db:"subcontentid"`
	Name      string   `json:"subname" db:"subname"`
	Overview  string   `json:"subdetailoverview,omitempty" db:"subdetailoverview"`
	Image     string   `json:"subdetailimg,omitempty" db:"subdetailimg"`
	MapX      string   `json:"mapx" db:"mapx"`
	MapY      string   `json:"mapy" db:"mapy"`
	Distance  *float64 `json:"distance,omitempty" db:"-"`
}

// CourseRow is one row of the courses table: the parent course columns plus
// the sub-point it describes. The row's coordinates are the sub-point's.
type CourseRow struct {
	Course   LocatedRecord
	SubPoint SubPoint
}
