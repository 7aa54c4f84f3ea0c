package domain

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// bulletinDays is the number of day columns in a bulletin.
const bulletinDays = 3

// maxKp is the top of the Kp scale.
const maxKp = 9

const halfYear = 183 * 24 * time.Hour

var (
	// issuedRe matches the issue line, e.g. ":Issued: 2026 Oct 19 0030 UTC".
	issuedRe = regexp.MustCompile(`^:Issued:\s+(\d{4})\s+([A-Z][a-z]{2})\s+(\d{1,2})\s+\d{4}\s+UTC$`)

	// columnsRe matches the day column header, e.g. "   Oct 19   Oct 20   Oct 21".
	columnsRe = regexp.MustCompile(`^\s*([A-Z][a-z]{2})\s+(\d{1,2})\s+([A-Z][a-z]{2})\s+(\d{1,2})\s+([A-Z][a-z]{2})\s+(\d{1,2})$`)

	// rowRe matches an hourly row, e.g. "05-06UT   2   3   1".
	rowRe = regexp.MustCompile(`^(\d{2})-(\d{2})UT\s+(.*)$`)

	// stormScaleRe matches NOAA G-scale annotations trailing a value, e.g. "(G1)".
	stormScaleRe = regexp.MustCompile(`\(G\d\)`)
)

// ParseBulletin extracts today's 24 hourly Kp forecasts from bulletin text.
//
// Blank text fails with ErrInvalidArgument. Text that is not a bulletin, a
// bulletin without a column for today, and a table that does not hold exactly
// 24 rows fail with a *ParseError of kind KindMalformed, KindStaleDate and
// KindInvalidSize respectively. Only today's calendar date is used; its clock
// time and location are ignored.
//
// ParseBulletin has no side effects and is safe for concurrent use.
func ParseBulletin(text string, today time.Time) ([]HourlyForecast, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty bulletin", ErrInvalidArgument)
	}

	b, err := scanBulletin(text)
	if err != nil {
		return nil, err
	}

	date := DateOf(today)
	col := b.column(date)
	if col < 0 {
		return nil, &ParseError{
			Kind: KindStaleDate,
			Msg: fmt.Sprintf("bulletin covers %s to %s, not %s",
				b.dates[0].Format(DateLayout), b.dates[bulletinDays-1].Format(DateLayout), date.Format(DateLayout)),
		}
	}

	if len(b.rows) != HoursPerDay {
		return nil, &ParseError{
			Kind: KindInvalidSize,
			Msg:  fmt.Sprintf("got %d hourly rows, want %d", len(b.rows), HoursPerDay),
		}
	}

	out := make([]HourlyForecast, 0, HoursPerDay)
	for _, row := range b.rows {
		out = append(out, HourlyForecast{
			Date:  date,
			Hour:  row.hour,
			Index: row.values[col],
		})
	}
	return out, nil
}

// ParseBulletinReader reads a bulletin from r and parses it like ParseBulletin.
// A nil reader fails with ErrInvalidArgument.
func ParseBulletinReader(r io.Reader, today time.Time) ([]HourlyForecast, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil bulletin", ErrInvalidArgument)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bulletin: %w", err)
	}
	return ParseBulletin(string(data), today)
}

// bulletin is the structural content of a bulletin before date selection.
type bulletin struct {
	issued time.Time
	dates  [bulletinDays]time.Time
	rows   []hourRow
}

type hourRow struct {
	hour   int
	values [bulletinDays]int
}

// column returns the index of the column dated date, or -1.
func (b *bulletin) column(date time.Time) int {
	for i, d := range b.dates {
		if d.Equal(date) {
			return i
		}
	}
	return -1
}

// scanBulletin walks the text once: issue line, then column header, then the
// hourly table. The table ends at the first line after a row that is not a row.
func scanBulletin(text string) (*bulletin, error) {
	var (
		b           bulletin
		haveIssued  bool
		haveColumns bool
		lineNo      int
	)

	scanner := bufio.NewScanner(strings.NewReader(text))
	// A line can be as long as the whole text.
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), len(text)+1)
scan:
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r")

		switch {
		case !haveIssued:
			m := issuedRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			issued, err := time.Parse("2006 Jan 2", m[1]+" "+m[2]+" "+m[3])
			if err != nil {
				return nil, malformed(lineNo, "bad issue date %q", line)
			}
			b.issued = issued
			haveIssued = true

		case !haveColumns:
			m := columnsRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if err := b.parseColumns(lineNo, m[1:]); err != nil {
				return nil, err
			}
			haveColumns = true

		default:
			m := rowRe.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				if len(b.rows) > 0 {
					break scan
				}
				if strings.TrimSpace(line) == "" {
					continue
				}
				return nil, malformed(lineNo, "expected hourly row, got %q", line)
			}
			row, err := parseRow(lineNo, m, len(b.rows)%HoursPerDay)
			if err != nil {
				return nil, err
			}
			b.rows = append(b.rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, malformed(lineNo, "%v", err)
	}

	switch {
	case !haveIssued:
		return nil, malformed(0, "missing :Issued: line")
	case !haveColumns:
		return nil, malformed(0, "missing day column header")
	case len(b.rows) == 0:
		return nil, malformed(0, "no hourly rows")
	}
	return &b, nil
}

// parseColumns resolves the header's "Mon DD" pairs against the issue year.
func (b *bulletin) parseColumns(lineNo int, fields []string) error {
	for i := range bulletinDays {
		mon, day := fields[2*i], fields[2*i+1]
		d, err := time.Parse("Jan 2 2006", fmt.Sprintf("%s %s %d", mon, day, b.issued.Year()))
		if err != nil {
			return malformed(lineNo, "bad column date %q", mon+" "+day)
		}
		// Columns take the year nearest the issue date, so bulletins
		// straddling New Year resolve in both directions.
		switch {
		case d.Sub(b.issued) > halfYear:
			d = d.AddDate(-1, 0, 0)
		case b.issued.Sub(d) > halfYear:
			d = d.AddDate(1, 0, 0)
		}
		if i > 0 && !d.Equal(b.dates[i-1].AddDate(0, 0, 1)) {
			return malformed(lineNo, "column dates are not consecutive")
		}
		b.dates[i] = d
	}
	return nil
}

// parseRow validates the hour label against the expected hour and reads one
// integer Kp value per day column.
func parseRow(lineNo int, m []string, wantHour int) (hourRow, error) {
	start, _ := strconv.Atoi(m[1]) // \d{2} guaranteed by rowRe
	end, _ := strconv.Atoi(m[2])
	if start != wantHour || end != (start+1)%HoursPerDay {
		return hourRow{}, malformed(lineNo, "row %s-%sUT out of sequence, want %02d-%02dUT",
			m[1], m[2], wantHour, (wantHour+1)%HoursPerDay)
	}

	fields := strings.Fields(stormScaleRe.ReplaceAllString(m[3], " "))
	if len(fields) != bulletinDays {
		return hourRow{}, malformed(lineNo, "got %d values, want %d", len(fields), bulletinDays)
	}

	row := hourRow{hour: start}
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return hourRow{}, malformed(lineNo, "index %q is not an integer", f)
		}
		if v < 0 || v > maxKp {
			return hourRow{}, malformed(lineNo, "index %d outside Kp range 0-%d", v, maxKp)
		}
		row.values[i] = v
	}
	return row, nil
}
