package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// IndonesianDate formats t as "2 Januari 2006" in loc.
func IndonesianDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%d %s %d", t.Day(), monthNames[t.Month()-1], t.Year())
}

// IndonesianDateTime appends the wall clock and zone abbreviation.
func IndonesianDateTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	zone, _ := t.Zone()
	return fmt.Sprintf("%s %02d.%02d %s", IndonesianDate(t, nil), t.Hour(), t.Minute(), zone)
}

// Thousands groups the integer part of v with dots, as id-ID does.
func Thousands(v float64) string {
	neg := v < 0
	s := strconv.FormatInt(int64(math.Round(math.Abs(v))), 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func quantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
