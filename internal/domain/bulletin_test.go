package domain

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	yesterday = time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)
	today     = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	tomorrow  = time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)

	// todayColumn is the Oct 19 column of testdata/geomag_forecast.txt.
	todayColumn = []int{1, 1, 2, 2, 2, 3, 3, 4, 4, 5, 5, 5, 4, 4, 3, 3, 2, 2, 2, 1, 1, 1, 2, 2}
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestParseBulletin(t *testing.T) {
	text := loadFixture(t, "geomag_forecast.txt")

	got, err := ParseBulletin(text, today)
	require.NoError(t, err)

	want := make([]HourlyForecast, HoursPerDay)
	for h := range HoursPerDay {
		want[h] = HourlyForecast{Date: today, Hour: h, Index: todayColumn[h]}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseBulletin mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0, got[0].Hour)
	assert.Equal(t, 23, got[23].Hour)
}

func TestParseBulletin_EveryCoveredDay(t *testing.T) {
	text := loadFixture(t, "geomag_forecast.txt")

	for _, day := range []time.Time{yesterday, today, tomorrow} {
		t.Run(day.Format(DateLayout), func(t *testing.T) {
			got, err := ParseBulletin(text, day)
			require.NoError(t, err)
			require.Len(t, got, HoursPerDay)
			for h, rec := range got {
				assert.Equal(t, day, rec.Date)
				assert.Equal(t, h, rec.Hour)
			}
		})
	}
}

func TestParseBulletin_TodayTimeOfDayIgnored(t *testing.T) {
	text := loadFixture(t, "geomag_forecast.txt")
	moscow := time.FixedZone("MSK", 3*60*60)

	cases := []time.Time{
		time.Date(2026, time.October, 19, 23, 59, 0, 0, time.UTC),
		time.Date(2026, time.October, 19, 1, 0, 0, 0, moscow),
	}
	for _, ref := range cases {
		got, err := ParseBulletin(text, ref)
		require.NoError(t, err)
		assert.Equal(t, today, got[0].Date)
	}
}

func TestParseBulletin_YearBoundary(t *testing.T) {
	text := loadFixture(t, "geomag_forecast_year_end.txt")

	got, err := ParseBulletin(text, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, HoursPerDay)
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), got[0].Date)

	_, err = ParseBulletin(text, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, KindStaleDate, KindOf(err))
}

func TestParseBulletin_IssuedAfterFirstColumn(t *testing.T) {
	text := strings.Replace(loadFixture(t, "geomag_forecast_year_end.txt"),
		":Issued: 2026 Dec 31 2205 UTC", ":Issued: 2027 Jan 01 0030 UTC", 1)

	got, err := ParseBulletin(text, time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC), got[0].Date)
}

func TestParseBulletin_InvalidArgument(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\n"} {
		for _, ref := range []time.Time{today, {}} {
			got, err := ParseBulletin(text, ref)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.NotErrorIs(t, err, ErrParse)
			assert.Nil(t, got)
		}
	}
}

func TestParseBulletinReader(t *testing.T) {
	t.Run("nil reader", func(t *testing.T) {
		got, err := ParseBulletinReader(nil, today)
		require.ErrorIs(t, err, ErrInvalidArgument)
		assert.Nil(t, got)
	})

	t.Run("valid", func(t *testing.T) {
		f, err := os.Open(filepath.Join("testdata", "geomag_forecast.txt"))
		require.NoError(t, err)
		defer f.Close()

		got, err := ParseBulletinReader(f, today)
		require.NoError(t, err)
		assert.Len(t, got, HoursPerDay)
	})

	t.Run("read error", func(t *testing.T) {
		_, err := ParseBulletinReader(iotest.ErrReader(errors.New("disk gone")), today)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk gone")
		assert.NotErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestParseBulletin_StaleDate(t *testing.T) {
	text := loadFixture(t, "geomag_forecast.txt")

	for _, ref := range []time.Time{
		yesterday.AddDate(0, 0, -1),
		tomorrow.AddDate(0, 0, 1),
		today.AddDate(1, 0, 0),
	} {
		got, err := ParseBulletin(text, ref)
		require.ErrorIs(t, err, ErrParse)
		assert.Equal(t, KindStaleDate, KindOf(err))
		assert.Contains(t, err.Error(), "2026-10-18 to 2026-10-20")
		assert.Nil(t, got)
	}
}

func TestParseBulletin_StaleDateWinsOverSize(t *testing.T) {
	text := loadFixture(t, "geomag_forecast_truncated.txt")

	_, err := ParseBulletin(text, tomorrow.AddDate(0, 0, 7))
	assert.Equal(t, KindStaleDate, KindOf(err))
}

func TestParseBulletin_InvalidSize(t *testing.T) {
	for _, name := range []string{"geomag_forecast_truncated.txt", "geomag_forecast_extra_row.txt"} {
		t.Run(name, func(t *testing.T) {
			got, err := ParseBulletin(loadFixture(t, name), today)
			require.ErrorIs(t, err, ErrParse)
			assert.Equal(t, KindInvalidSize, KindOf(err))
			assert.Nil(t, got)
		})
	}
}

func TestParseBulletin_Malformed(t *testing.T) {
	valid := loadFixture(t, "geomag_forecast.txt")

	cases := []struct {
		name string
		text string
		msg  string
	}{
		{"hour gap", loadFixture(t, "geomag_forecast_gap.txt"), "out of sequence"},
		{"fractional index", loadFixture(t, "geomag_forecast_fractional.txt"), "not an integer"},
		{"no issue line", strings.Replace(valid, ":Issued: 2026 Oct 18 2205 UTC", "", 1), "missing :Issued:"},
		{"bad issue date", strings.Replace(valid, "2026 Oct 18 2205", "2026 Oct 32 2205", 1), "bad issue date"},
		{"no column header", strings.Replace(valid, "Oct 18       Oct 19       Oct 20", "", 1), "missing day column header"},
		{"bad column date", strings.Replace(valid, "Oct 18       Oct 19", "Oct 18       Oct 39", 1), "bad column date"},
		{"non-consecutive columns", strings.Replace(valid, "Oct 19       Oct 20", "Oct 19       Oct 21", 1), "not consecutive"},
		{"missing value", strings.Replace(valid, "00-01UT        2            1            2", "00-01UT        2            1", 1), "got 2 values"},
		{"extra value", strings.Replace(valid, "00-01UT        2            1            2", "00-01UT        2            1            2    7", 1), "got 4 values"},
		{"out of range", strings.Replace(valid, "00-01UT        2            1", "00-01UT        2            12", 1), "outside Kp range"},
		{"negative", strings.Replace(valid, "00-01UT        2            1", "00-01UT        2            -1", 1), "outside Kp range"},
		{"bad hour label", strings.Replace(valid, "00-01UT", "00-03UT", 1), "out of sequence"},
		{"junk before table", strings.Replace(valid, "00-01UT", "Kp:\n00-01UT", 1), "expected hourly row"},
		{"header only", valid[:strings.Index(valid, "00-01UT")], "no hourly rows"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseBulletin(tc.text, today)
			require.ErrorIs(t, err, ErrParse)
			assert.Equal(t, KindMalformed, KindOf(err))
			assert.Contains(t, err.Error(), tc.msg)
			assert.Nil(t, got)
		})
	}
}

func TestParseBulletin_RandomText(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 \n:-"
	rng := rand.New(rand.NewPCG(1, 2))

	for range 50 {
		b := make([]byte, 1+rng.IntN(512))
		for i := range b {
			b[i] = alphabet[rng.IntN(len(alphabet))]
		}
		text := string(b)
		if strings.TrimSpace(text) == "" {
			continue
		}
		_, err := ParseBulletin(text, today)
		require.ErrorIs(t, err, ErrParse, "input %q", text)
		assert.Equal(t, KindMalformed, KindOf(err))
	}
}

func TestParseBulletin_LongPreambleLine(t *testing.T) {
	text := strings.Repeat("x", 70000) + "\n" + loadFixture(t, "geomag_forecast.txt")

	got, err := ParseBulletin(text, today)
	require.NoError(t, err)
	require.Len(t, got, HoursPerDay)
	assert.Equal(t, todayColumn[0], got[0].Index)
}

func TestParseBulletin_LongLineInTable(t *testing.T) {
	valid := loadFixture(t, "geomag_forecast.txt")
	i := strings.Index(valid, "05-06UT")
	require.Positive(t, i)
	text := valid[:i] + strings.Repeat("9", 70000) + "\n" + valid[i:]

	_, err := ParseBulletin(text, today)
	require.ErrorIs(t, err, ErrParse)
	assert.Equal(t, KindInvalidSize, KindOf(err))
}

func TestParseBulletin_Idempotent(t *testing.T) {
	text := loadFixture(t, "geomag_forecast.txt")

	first, err := ParseBulletin(text, today)
	require.NoError(t, err)
	second, err := ParseBulletin(text, today)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Mutating a returned slice does not leak into later results.
	first[0].Index = 9
	third, err := ParseBulletin(text, today)
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestParseBulletin_Concurrent(t *testing.T) {
	text := loadFixture(t, "geomag_forecast.txt")
	want, err := ParseBulletin(text, today)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]HourlyForecast, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = ParseBulletin(text, today)
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestParseError(t *testing.T) {
	err := malformed(7, "bad %s", "row")
	assert.Equal(t, "parse bulletin: malformed: line 7: bad row", err.Error())
	assert.ErrorIs(t, err, ErrParse)

	sized := &ParseError{Kind: KindInvalidSize, Msg: "got 23 hourly rows, want 24"}
	assert.Equal(t, "parse bulletin: invalid_size: got 23 hourly rows, want 24", sized.Error())

	assert.Equal(t, KindInvalidSize, KindOf(fmt.Errorf("wrapped: %w", sized)))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("other")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}
