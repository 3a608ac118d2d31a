package materialize

import (
	"strings"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/calendar"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"
)

// column is one destination column of the calendar dimension.
type column struct {
	name  string
	kind  dialect.ColumnKind
	value func(d *calendar.Day) any
}

// columns lists the destination columns in table order.
var columns = []column{
	{"date_key", dialect.KindDate, func(d *calendar.Day) any { return d.DateKey }},
	{"year", dialect.KindInteger, func(d *calendar.Day) any { return d.Year }},
	{"month", dialect.KindInteger, func(d *calendar.Day) any { return d.Month }},
	{"month_name", dialect.KindText, func(d *calendar.Day) any { return d.MonthName }},
	{"quarter", dialect.KindInteger, func(d *calendar.Day) any { return d.Quarter }},
	{"day_of_week", dialect.KindInteger, func(d *calendar.Day) any { return d.DayOfWeek }},
	{"day_name", dialect.KindText, func(d *calendar.Day) any { return d.DayName }},
	{"load_timestamp", dialect.KindTimestamp, func(d *calendar.Day) any { return d.LoadTimestamp }},
}

// ColumnNames returns the destination column names in table order.
func ColumnNames() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

// columnDefs renders the column list of a CREATE TABLE statement.
func columnDefs(d *dialect.Dialect) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = c.name + " " + d.ColumnType(c.kind)
	}
	return strings.Join(defs, ", ")
}
