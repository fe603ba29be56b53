package keymodel

import (
	"fmt"
	"strconv"

	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

// Row is one row of a key model, column name to raw value
type Row map[string][]byte

// ValueRow creates a row of a list, set or string key
func ValueRow(value string) Row {
	return Row{ColumnValue: []byte(value)}
}

// ScoredRow creates a row of a sorted set key
func ScoredRow(value string, score float64) Row {
	return Row{
		ColumnValue: []byte(value),
		ColumnScore: []byte(strconv.FormatFloat(score, 'g', -1, 64)),
	}
}

// FieldRow creates a row of a hash key
func FieldRow(field, value string) Row {
	return Row{
		ColumnKey:   []byte(field),
		ColumnValue: []byte(value),
	}
}

// Value returns the value column
func (r Row) Value() []byte {
	return r[ColumnValue]
}

// Text returns column as string
func (r Row) Text(column string) string {
	return string(r[column])
}

// Score parses the score column
func (r Row) Score() (float64, error) {
	return strconv.ParseFloat(string(r[ColumnScore]), 64)
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

// validateRow checks that row has exactly the given columns
func validateRow(row Row, columns ...string) error {
	if row == nil {
		return common.NewError(common.RetCInvalidRow, "row is empty")
	}
	if len(row) != len(columns) {
		return common.NewError(common.RetCInvalidRow,
			fmt.Sprintf("row has %d columns, expected %v", len(row), columns))
	}
	for _, column := range columns {
		if _, ok := row[column]; !ok {
			return common.NewError(common.RetCInvalidRow, fmt.Sprintf("row has no %q column", column))
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Row Cache
// --------------------------------------------------------------------------

// rowCache is the locally known contiguous prefix of the rows of a key.
// It is not synchronized, the owning model guards it.
type rowCache struct {
	rows []Row
	// gen changes on clear, loads that started before are discarded
	gen uint64
	// complete is set by loaders that fetched the whole collection
	complete bool
}

func (c *rowCache) len() int {
	return len(c.rows)
}

func (c *rowCache) loaded(i int) bool {
	return i >= 0 && i < len(c.rows)
}

func (c *rowCache) get(i int) (Row, bool) {
	if !c.loaded(i) {
		return nil, false
	}
	return c.rows[i], true
}

// appendAt appends rows if the cache still ends at from and was not cleared since gen
func (c *rowCache) appendAt(gen uint64, from int, rows []Row) bool {
	if gen != c.gen || from != len(c.rows) {
		return false
	}
	c.rows = append(c.rows, rows...)
	return true
}

// fill replaces the cache with all rows of the collection
func (c *rowCache) fill(gen uint64, rows []Row) bool {
	if gen != c.gen {
		return false
	}
	c.rows = rows
	c.complete = true
	return true
}

func (c *rowCache) replace(i int, row Row) {
	if c.loaded(i) {
		c.rows[i] = row
	}
}

// removeAt drops row i, the following rows shift down by one
func (c *rowCache) removeAt(i int) {
	if !c.loaded(i) {
		return
	}
	c.rows = append(c.rows[:i], c.rows[i+1:]...)
}

func (c *rowCache) clear() {
	c.rows = nil
	c.complete = false
	c.gen++
}
