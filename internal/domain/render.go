package domain

import (
	"fmt"
	"strings"
	"time"
)

// BulletinData is the content of a well-formed bulletin: three consecutive
// days of hourly Kp values starting at Start.
type BulletinData struct {
	Issued time.Time
	Start  time.Time
	Kp     [bulletinDays][HoursPerDay]int
}

// RenderBulletin writes data in the bulletin text layout accepted by
// ParseBulletin. Used by the mock generator and tests.
func RenderBulletin(data BulletinData) string {
	var sb strings.Builder
	issued := data.Issued.UTC()
	start := DateOf(data.Start)
	end := start.AddDate(0, 0, bulletinDays-1)

	sb.WriteString(":Product: Geomagnetic Forecast\n")
	fmt.Fprintf(&sb, ":Issued: %s UTC\n", issued.Format("2006 Jan 02 1504"))
	sb.WriteString("# Prepared by the U.S. Dept. of Commerce, NOAA, Space Weather Prediction Center\n")
	sb.WriteString("#\n\n")
	fmt.Fprintf(&sb, "NOAA Kp index breakdown %s-%s\n\n", start.Format("Jan 02"), end.Format("Jan 02"))

	sb.WriteString("            ")
	for d := range bulletinDays {
		fmt.Fprintf(&sb, " %-12s", start.AddDate(0, 0, d).Format("Jan 02"))
	}
	sb.WriteString("\n")

	for h := range HoursPerDay {
		line := fmt.Sprintf("%02d-%02dUT      ", h, (h+1)%HoursPerDay)
		for d := range bulletinDays {
			line += fmt.Sprintf("  %-11s", kpCell(data.Kp[d][h]))
		}
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// kpCell formats a Kp value with its NOAA G-scale annotation (Kp 5 is G1).
func kpCell(kp int) string {
	if kp >= 5 {
		return fmt.Sprintf("%d (G%d)", kp, kp-4)
	}
	return fmt.Sprintf("%d", kp)
}
