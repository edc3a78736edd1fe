package distribution

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"sppg-kitchen-api-server/internal/models"
)

// SerialCode is the fixed issuer segment of every delivery-note number.
const SerialCode = "SJ/MRTJSH"

var romanMonths = [...]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}

// RomanMonth renders 1-12 as a roman numeral and anything else as digits.
func RomanMonth(m int) string {
	if m < 1 || m > 12 {
		return strconv.Itoa(m)
	}
	return romanMonths[m-1]
}

// SerialSuffix returns "/SJ/MRTJSH/<roman month>/<year>" for the civil date
// of t in loc.
func SerialSuffix(t time.Time, loc *time.Location) string {
	local := t.In(loc)
	return fmt.Sprintf("/%s/%s/%d", SerialCode, RomanMonth(int(local.Month())), local.Year())
}

// serialPrefix parses the sequence number in front of the first '/'.
// Anything that is not a plain run of digits is rejected.
func serialPrefix(serial string) (int, bool) {
	head, _, found := strings.Cut(serial, "/")
	if !found || head == "" {
		return 0, false
	}
	for _, r := range head {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextSerials allocates n consecutive serial numbers for records created at
// t, continuing after the highest number already used in the same month.
func NextSerials(existing []models.Distribution, t time.Time, loc *time.Location, n int) []string {
	return NextSerialsAfter(existing, 0, t, loc, n)
}

// NextSerialsAfter is NextSerials with a floor: numbering continues after
// the larger of floor and the highest number still in use, so numbers of
// deleted records are not handed out again.
func NextSerialsAfter(existing []models.Distribution, floor int, t time.Time, loc *time.Location, n int) []string {
	suffix := SerialSuffix(t, loc)
	highest := max(floor, 0)
	for _, d := range existing {
		if !strings.HasSuffix(d.SerialNumber, suffix) {
			continue
		}
		if seq, ok := serialPrefix(d.SerialNumber); ok && seq > highest {
			highest = seq
		}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%03d%s", highest+i+1, suffix)
	}
	return out
}

// splitSerial returns the sequence number and the "/..." suffix of serial.
func splitSerial(serial string) (int, string, bool) {
	seq, ok := serialPrefix(serial)
	if !ok {
		return 0, "", false
	}
	return seq, serial[strings.IndexByte(serial, '/'):], true
}

// BySerial returns ds sorted by serial number, lowest first. Numbers are
// compared by length before text so 10/... follows 9/....
func BySerial(ds []models.Distribution) []models.Distribution {
	out := append([]models.Distribution(nil), ds...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].SerialNumber, out[j].SerialNumber
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return out
}
