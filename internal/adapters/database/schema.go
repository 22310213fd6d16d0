package database

import (
	"context"
	"fmt"

	"github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/postgres"
)

// Table names.
const (
	FestivalsTable  = "festivals"
	FacilitiesTable = "facilities"
	CoursesTable    = "courses"
)

// Every source column is kept as text; coordinates and dates are parsed on
// read.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS festivals (
		id BIGSERIAL PRIMARY KEY,
		contentid TEXT, title TEXT NOT NULL,
		mapx TEXT, mapy TEXT,
		addr1 TEXT, addr2 TEXT, tel TEXT, homepage TEXT,
		firstimage TEXT, overview TEXT,
		eventstartdate TEXT, eventenddate TEXT,
		eventplace TEXT, playtime TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS festivals_title_idx ON festivals (title)`,
	`CREATE TABLE IF NOT EXISTS facilities (
		id BIGSERIAL PRIMARY KEY,
		contentid TEXT, title TEXT NOT NULL,
		mapx TEXT, mapy TEXT,
		addr1 TEXT, addr2 TEXT, tel TEXT, homepage TEXT,
		firstimage TEXT, overview TEXT,
		usetimeculture TEXT, restdateculture TEXT, usefee TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS facilities_title_idx ON facilities (title)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id BIGSERIAL PRIMARY KEY,
		contentid TEXT, title TEXT NOT NULL,
		mapx TEXT, mapy TEXT,
		addr1 TEXT, addr2 TEXT, homepage TEXT,
		firstimage TEXT, overview TEXT,
		taketime TEXT, theme TEXT,
		subnum INTEGER, subcontentid TEXT, subname TEXT,
		subdetailoverview TEXT, subdetailimg TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS courses_title_idx ON courses (title, subnum)`,
}

// EnsureSchema creates the record tables when they do not exist.
func EnsureSchema(ctx context.Context, client *postgres.Client) error {
	for _, stmt := range schemaStatements {
		if _, err := client.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// TableColumns lists the loadable columns of each table in insert order.
var TableColumns = map[string][]string{
	FestivalsTable: {
		"contentid", "title", "mapx", "mapy", "addr1", "addr2", "tel", "homepage",
		"firstimage", "overview", "eventstartdate", "eventenddate", "eventplace", "playtime",
	},
	FacilitiesTable: {
		"contentid", "title", "mapx", "mapy", "addr1", "addr2", "tel", "homepage",
		"firstimage", "overview", "usetimeculture", "restdateculture", "usefee",
	},
	CoursesTable: {
		"contentid", "title", "mapx", "mapy", "addr1", "addr2", "homepage",
		"firstimage", "overview", "taketime", "theme",
		"subnum", "subcontentid", "subname", "subdetailoverview", "subdetailimg",
	},
}
