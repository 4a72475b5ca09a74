package gazetteer

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agenthands/geoparse/internal/core/model"
	_ "github.com/mattn/go-sqlite3"
	"github.com/xuri/excelize/v2"
)

const DefaultTable = "places"

// columnCandidates lists accepted header names per field, most specific
// first: worldcities.csv carries both "city" and "city_ascii". The native
// spellings, when a separate ASCII column exists, are kept as aliases.
var columnCandidates = []struct {
	field string
	names []string
}{
	{"city", []string{"city_ascii", "city", "town", "municipality"}},
	{"city_native", []string{"city"}},
	{"admin", []string{"admin_name_ascii", "admin_ascii", "admin_name", "state", "region", "province", "admin"}},
	{"admin_native", []string{"admin_name", "admin"}},
	{"country", []string{"country", "country_name"}},
	{"iso2", []string{"iso2"}},
	{"iso3", []string{"iso3"}},
	{"name", []string{"name", "canonical_name", "place"}},
	{"type", []string{"type", "entity_type", "table", "kind"}},
	{"aliases", []string{"aliases", "alt_names", "alternate_names"}},
}

type columns map[string]int

func detectColumns(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(cleanCell(h))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	cols := make(columns)
	for _, c := range columnCandidates {
		for _, name := range c.names {
			if i, ok := pos[name]; ok {
				cols[c.field] = i
				break
			}
		}
	}
	for native, ascii := range map[string]string{"city_native": "city", "admin_native": "admin"} {
		if i, ok := cols[native]; ok && i == cols[ascii] {
			delete(cols, native)
		}
	}

	_, hasName := cols["name"]
	_, hasType := cols["type"]
	if hasName && !hasType {
		delete(cols, "name")
		hasName = false
	}
	_, hasCity := cols["city"]
	_, hasAdmin := cols["admin"]
	_, hasCountry := cols["country"]
	if !hasName && !hasCity && !hasAdmin && !hasCountry {
		return nil, fmt.Errorf("no place columns in header %v", header)
	}
	return cols, nil
}

func (c columns) get(record []string, field string) string {
	i, ok := c[field]
	if !ok || i >= len(record) {
		return ""
	}
	return cleanCell(record[i])
}

func (c columns) row(record []string) Row {
	r := Row{
		City:        c.get(record, "city"),
		Admin:       c.get(record, "admin"),
		Country:     c.get(record, "country"),
		ISO2:        c.get(record, "iso2"),
		ISO3:        c.get(record, "iso3"),
		CityNative:  c.get(record, "city_native"),
		AdminNative: c.get(record, "admin_native"),
		Name:        c.get(record, "name"),
		Type:        c.get(record, "type"),
	}
	if a := c.get(record, "aliases"); a != "" {
		r.Aliases = strings.FieldsFunc(a, func(r rune) bool { return r == ';' || r == '|' })
	}
	return r
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}

func rowError(i int, err error) error {
	return fmt.Errorf("row %d: %w", i+1, err)
}

func rowsFromRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, ErrNoEntries
	}
	cols, err := detectColumns(records[0])
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, cols.row(rec))
	}
	return rows, nil
}

// LoadFile builds an index from a tabular file chosen by extension:
// .csv, .tsv, .xlsx, or a SQLite database (.db, .sqlite, .sqlite3) read
// from DefaultTable.
func LoadFile(path string) (*Index, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &model.DataLoadError{Source: path, Err: errors.New("empty path")}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(path, DefaultTable)
	}

	var (
		rows []Row
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt", "":
		rows, err = readDelimited(path, ',')
	case ".tsv":
		rows, err = readDelimited(path, '\t')
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path)
	default:
		err = fmt.Errorf("unsupported gazetteer format %q", ext)
	}
	if err != nil {
		return nil, &model.DataLoadError{Source: path, Err: err}
	}
	return build(path, rows)
}

func readDelimited(path string, comma rune) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseDelimited(f, comma)
}

func parseDelimited(r io.Reader, comma rune) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse delimited file: %w", err)
	}
	return rowsFromRecords(records)
}

func readWorkbook(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rowsFromRecords(records)
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadSQLite reads every row of table. Columns are matched by name the same
// way CSV headers are.
func LoadSQLite(path, table string) (*Index, error) {
	if table == "" {
		table = DefaultTable
	}
	rows, err := readSQLite(path, table)
	if err != nil {
		return nil, &model.DataLoadError{Source: path, Err: err}
	}
	return build(path, rows)
}

func readSQLite(path, table string) ([]Row, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	// sql.Open would silently create a missing database file
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	res, err := db.Query(fmt.Sprintf(`SELECT * FROM "%s"`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %q: %w", table, err)
	}
	defer res.Close()

	header, err := res.Columns()
	if err != nil {
		return nil, err
	}
	records := [][]string{header}

	for res.Next() {
		cells := make([]sql.NullString, len(header))
		dest := make([]any, len(header))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := res.Scan(dest...); err != nil {
			return nil, err
		}
		rec := make([]string, len(header))
		for i, c := range cells {
			rec[i] = c.String
		}
		records = append(records, rec)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return rowsFromRecords(records)
}
