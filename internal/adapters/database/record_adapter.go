package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/repositories"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/ericyum/tour-agent-backend/pkg/errors"
)

var (
	baseColumns     = []string{"contentid", "title", "mapx", "mapy", "addr1", "addr2", "homepage", "firstimage", "overview"}
	festivalColumns = append(append([]string{}, baseColumns...), "tel", "eventstartdate", "eventenddate", "eventplace", "playtime")
	facilityColumns = append(append([]string{}, baseColumns...), "tel", "usetimeculture", "restdateculture", "usefee")
	courseColumns   = append(append([]string{}, baseColumns...), "taketime", "theme", "subcontentid", "subname", "subdetailoverview", "subdetailimg")
)

// RecordAdapter implements RecordRepository on Postgres.
type RecordAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRecordAdapter creates a new record adapter
func NewRecordAdapter(client *postgres.Client) *RecordAdapter {
	return &RecordAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var _ repositories.RecordRepository = (*RecordAdapter)(nil)

// text selects a nullable text column as an empty string.
func text(cols []string) []interface{} {
	out := make([]interface{}, len(cols))
	for i, c := range cols {
		out[i] = goqu.COALESCE(goqu.C(c), "").As(c)
	}
	return out
}

func located() exp.ExpressionList {
	return goqu.And(
		goqu.C("mapx").IsNotNull(),
		goqu.C("mapx").Neq(""),
		goqu.C("mapy").IsNotNull(),
		goqu.C("mapy").Neq(""),
	)
}

// FestivalByTitle retrieves a festival by exact title
func (a *RecordAdapter) FestivalByTitle(ctx context.Context, title string) (*entities.Festival, error) {
	festivals, err := a.queryFestivals(ctx, goqu.Ex{"title": title}, 1)
	if err != nil {
		return nil, err
	}
	if len(festivals) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("festival %q not found", title))
	}
	return festivals[0], nil
}

// FestivalsByTitles retrieves festivals for a batch of titles
func (a *RecordAdapter) FestivalsByTitles(ctx context.Context, titles []string) ([]*entities.Festival, error) {
	if len(titles) == 0 {
		return []*entities.Festival{}, nil
	}
	return a.queryFestivals(ctx, goqu.Ex{"title": titles}, 0)
}

// ListLocatedFestivals returns every festival with both coordinates set
func (a *RecordAdapter) ListLocatedFestivals(ctx context.Context) ([]*entities.Festival, error) {
	return a.queryFestivals(ctx, located(), 0)
}

func (a *RecordAdapter) queryFestivals(ctx context.Context, where exp.Expression, limit uint) ([]*entities.Festival, error) {
	ds := a.db.Select(text(festivalColumns)...).From(FestivalsTable).Where(where).Order(goqu.C("id").Asc())
	if limit > 0 {
		ds = ds.Limit(limit)
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query festivals", err)
	}
	defer rows.Close()

	var festivals []*entities.Festival
	for rows.Next() {
		f := &entities.Festival{}
		if err := rows.Scan(append(scanBase(&f.LocatedRecord),
			&f.Tel, &f.Period.Start, &f.Period.End, &f.EventPlace, &f.PlayTime,
		)...); err != nil {
			return nil, apperrors.NewInternalError("failed to scan festival", err)
		}
		festivals = append(festivals, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate festivals", err)
	}
	return festivals, nil
}

// FacilityByTitle retrieves a facility by exact title
func (a *RecordAdapter) FacilityByTitle(ctx context.Context, title string) (*entities.Facility, error) {
	facilities, err := a.queryFacilities(ctx, goqu.Ex{"title": title}, 1)
	if err != nil {
		return nil, err
	}
	if len(facilities) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility %q not found", title))
	}
	return facilities[0], nil
}

// ListLocatedFacilities returns every facility with both coordinates set
func (a *RecordAdapter) ListLocatedFacilities(ctx context.Context) ([]*entities.Facility, error) {
	return a.queryFacilities(ctx, located(), 0)
}

func (a *RecordAdapter) queryFacilities(ctx context.Context, where exp.Expression, limit uint) ([]*entities.Facility, error) {
	ds := a.db.Select(text(facilityColumns)...).From(FacilitiesTable).Where(where).Order(goqu.C("id").Asc())
	if limit > 0 {
		ds = ds.Limit(limit)
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query facilities", err)
	}
	defer rows.Close()

	var facilities []*entities.Facility
	for rows.Next() {
		f := &entities.Facility{}
		if err := rows.Scan(append(scanBase(&f.LocatedRecord),
			&f.Tel, &f.UseTime, &f.RestDate, &f.UseFee,
		)...); err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility", err)
		}
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate facilities", err)
	}
	return facilities, nil
}

// CourseByTitle retrieves a course with its sub-points ordered by sequence.
// The course takes its header columns and coordinates from its first row.
func (a *RecordAdapter) CourseByTitle(ctx context.Context, title string) (*entities.Course, error) {
	rows, err := a.queryCourseRows(ctx, goqu.Ex{"title": title})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("course %q not found", title))
	}

	course := &entities.Course{
		LocatedRecord: rows[0].row.Course,
		TakeTime:      rows[0].takeTime,
		Theme:         rows[0].theme,
		SubPoints:     make([]entities.SubPoint, 0, len(rows)),
	}
	for _, r := range rows {
		course.SubPoints = append(course.SubPoints, r.row.SubPoint)
	}
	return course, nil
}

// ListLocatedCourseRows returns every located course row ordered by course
// title and sub-point sequence.
func (a *RecordAdapter) ListLocatedCourseRows(ctx context.Context) ([]*entities.CourseRow, error) {
	rows, err := a.queryCourseRows(ctx, located())
	if err != nil {
		return nil, err
	}
	out := make([]*entities.CourseRow, len(rows))
	for i := range rows {
		out[i] = &rows[i].row
	}
	return out, nil
}

type courseRow struct {
	row      entities.CourseRow
	takeTime string
	theme    string
}

func (a *RecordAdapter) queryCourseRows(ctx context.Context, where exp.Expression) ([]courseRow, error) {
	cols := append(text(courseColumns), goqu.COALESCE(goqu.C("subnum"), 0).As("subnum"))
	query, args, err := a.db.Select(cols...).
		From(CoursesTable).
		Where(where).
		Order(goqu.C("title").Asc(), goqu.C("subnum").Asc().NullsLast(), goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query courses", err)
	}
	defer rows.Close()

	var out []courseRow
	for rows.Next() {
		var r courseRow
		base := &r.row.Course
		sp := &r.row.SubPoint
		if err := rows.Scan(append(scanBase(base),
			&r.takeTime, &r.theme, &sp.ContentID, &sp.Name, &sp.Overview, &sp.Image, &sp.Seq,
		)...); err != nil {
			return nil, apperrors.NewInternalError("failed to scan course row", err)
		}
		sp.MapX, sp.MapY = base.MapX, base.MapY
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate courses", err)
	}
	return out, nil
}

// ListDocuments returns a search document for every record. Courses yield
// one document per title.
func (a *RecordAdapter) ListDocuments(ctx context.Context) ([]entities.RecordDocument, error) {
	var docs []entities.RecordDocument

	festivals, err := a.queryFestivals(ctx, goqu.C("title").Neq(""), 0)
	if err != nil {
		return nil, err
	}
	for _, f := range festivals {
		docs = append(docs, entities.NewRecordDocument(entities.KindFestival, &f.LocatedRecord))
	}

	facilities, err := a.queryFacilities(ctx, goqu.C("title").Neq(""), 0)
	if err != nil {
		return nil, err
	}
	for _, f := range facilities {
		docs = append(docs, entities.NewRecordDocument(entities.KindFacility, &f.LocatedRecord))
	}

	rows, err := a.queryCourseRows(ctx, goqu.C("title").Neq(""))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for i := range rows {
		c := &rows[i].row.Course
		if _, ok := seen[c.Title]; ok {
			continue
		}
		seen[c.Title] = struct{}{}
		docs = append(docs, entities.NewRecordDocument(entities.KindCourse, c))
	}
	return docs, nil
}

// ReplaceTable swaps the contents of table for rows inside one transaction.
// Columns not listed in TableColumns are ignored.
func (a *RecordAdapter) ReplaceTable(ctx context.Context, table string, rows []map[string]string, batchSize int) (int, error) {
	cols, ok := TableColumns[table]
	if !ok {
		return 0, apperrors.NewValidationError("unknown table: " + table)
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
		return 0, apperrors.NewInternalError("failed to clear "+table, err)
	}

	inserted := 0
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		records := make([]interface{}, 0, end-start)
		for _, row := range rows[start:end] {
			if row["title"] == "" {
				continue
			}
			records = append(records, toRecord(cols, row))
		}
		if len(records) == 0 {
			continue
		}
		query, args, err := a.db.Insert(table).Rows(records...).ToSQL()
		if err != nil {
			return inserted, apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return inserted, apperrors.NewInternalError("failed to insert into "+table, err)
		}
		inserted += len(records)
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.NewInternalError("failed to commit "+table, err)
	}
	return inserted, nil
}

func toRecord(cols []string, row map[string]string) goqu.Record {
	rec := make(goqu.Record, len(cols))
	for _, c := range cols {
		v, present := row[c]
		switch {
		case c == "subnum":
			rec[c] = parseSeq(v)
		case !present || v == "":
			rec[c] = sql.NullString{}
		default:
			rec[c] = v
		}
	}
	return rec
}

func parseSeq(v string) sql.NullInt64 {
	var n float64
	if _, err := fmt.Sscanf(v, "%g", &n); err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

func scanBase(r *entities.LocatedRecord) []interface{} {
	return []interface{}{
		&r.ContentID, &r.Title, &r.MapX, &r.MapY, &r.Addr1, &r.Addr2,
		&r.Homepage, &r.FirstImage, &r.Overview,
	}
}
