package calendar

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LabelStyle selects full or abbreviated month and day names.
type LabelStyle string

// Label styles.
const (
	LabelFull  LabelStyle = "full"  // March, Saturday
	LabelShort LabelStyle = "short" // Mar, Sat
)

// LabelCase selects the letter case applied to labels.
type LabelCase string

// Label cases.
const (
	CaseTitle LabelCase = "title"
	CaseUpper LabelCase = "upper"
	CaseLower LabelCase = "lower"
)

// Labels controls how month_name and day_name are rendered. Names are always
// English Gregorian names and do not depend on the host locale.
type Labels struct {
	Style LabelStyle
	Case  LabelCase
}

// Validate checks the style and case values. Empty values select the defaults.
func (l Labels) Validate() error {
	switch l.Style {
	case "", LabelFull, LabelShort:
	default:
		return fmt.Errorf("unknown label style %q (want full or short)", l.Style)
	}
	switch l.Case {
	case "", CaseTitle, CaseUpper, CaseLower:
	default:
		return fmt.Errorf("unknown label case %q (want title, upper or lower)", l.Case)
	}
	return nil
}

// labeler renders names for one generation pass. A cases.Caser keeps state,
// so each pass gets its own.
type labeler struct {
	short bool
	caser cases.Caser
}

func (l Labels) labeler() *labeler {
	var c cases.Caser
	switch l.Case {
	case CaseUpper:
		c = cases.Upper(language.English)
	case CaseLower:
		c = cases.Lower(language.English)
	default:
		c = cases.Title(language.English)
	}
	return &labeler{short: l.Style == LabelShort, caser: c}
}

func (lb *labeler) name(s string) string {
	if lb.short {
		s = s[:3]
	}
	return lb.caser.String(strings.ToLower(s))
}

// MonthName renders the label for m.
func (l Labels) MonthName(m time.Month) string {
	return l.labeler().name(m.String())
}

// DayName renders the label for d.
func (l Labels) DayName(d time.Weekday) string {
	return l.labeler().name(d.String())
}

func (lb *labeler) day(date, loaded time.Time) Day {
	return Day{
		DateKey:       date,
		Year:          date.Year(),
		Month:         int(date.Month()),
		MonthName:     lb.name(date.Month().String()),
		Quarter:       quarterOf(date.Month()),
		DayOfWeek:     int(date.Weekday()),
		DayName:       lb.name(date.Weekday().String()),
		LoadTimestamp: loaded,
	}
}
