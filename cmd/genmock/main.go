// Command genmock writes a synthetic, well-formed geomagnetic forecast
// bulletin for fixtures and local runs. The three forecast columns are -date
// and the two following days; Kp follows a smooth diurnal curve with a storm
// peak on the middle day.
//
// Usage:
//
//	go run ./cmd/genmock -date 2026-10-19 -out internal/domain/testdata/geomag_forecast.txt
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/illine/geomagnetic-forecast/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dateFlag := flag.String("date", "", "first forecast day, YYYY-MM-DD (default: today UTC)")
	out := flag.String("out", "", "output path (default: stdout)")
	peak := flag.Int("peak", 6, "maximum Kp on the storm day, 0-9")
	flag.Parse()

	if *peak < 0 || *peak > 9 {
		return fmt.Errorf("-peak must be within 0-9, got %d", *peak)
	}

	start := domain.Today()
	if *dateFlag != "" {
		d, err := time.Parse(domain.DateLayout, *dateFlag)
		if err != nil {
			return fmt.Errorf("parse -date: %w", err)
		}
		start = d
		// Pin the clock so the issue time is reproducible for a given date.
		domain.SetClock(clockwork.NewFakeClockAt(start.Add(-2 * time.Hour)))
		defer domain.SetClock(nil)
	}

	text := domain.RenderBulletin(mockData(start, domain.Now(), *peak))

	if *out == "" {
		_, err := fmt.Print(text)
		return err
	}
	if err := os.WriteFile(*out, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("wrote bulletin %s to %s", start.Format(domain.DateLayout), *out)
	return nil
}

// mockData fills three days of hourly Kp. Quiet days oscillate between 1 and
// 3; the middle day rises to peak around 10 UT.
func mockData(start, issued time.Time, peak int) domain.BulletinData {
	data := domain.BulletinData{Issued: issued, Start: start}
	for d := range data.Kp {
		for h := range data.Kp[d] {
			base := 2 + math.Sin(2*math.Pi*float64(h)/domain.HoursPerDay)
			if d == 1 {
				storm := float64(peak) * math.Exp(-math.Pow(float64(h-10)/5, 2))
				base = math.Max(base, storm)
			}
			data.Kp[d][h] = min(9, max(0, int(math.Round(base))))
		}
	}
	return data
}
