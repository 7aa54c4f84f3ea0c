// Package domain models geomagnetic forecast bulletins and the hourly Kp
// index records parsed from them.
//
// # Data Source
//
// Bulletins follow the layout of the NOAA Space Weather Prediction Center
// (SWPC) 3-day geomagnetic forecast text product, with one row per hour
// instead of one per three-hour synoptic period. The collector fetches the
// text file and publishes it verbatim to the Kafka source topic; this package
// turns it into records.
//
// # Bulletin Layout
//
//	:Product: Geomagnetic Forecast
//	:Issued: 2026 Oct 19 0030 UTC
//	# Prepared by the U.S. Dept. of Commerce, NOAA, Space Weather Prediction Center
//	#
//	NOAA Kp index breakdown Oct 19-Oct 21
//
//	             Oct 19       Oct 20       Oct 21
//	00-01UT        2            3            1
//	01-02UT        2            3            1
//	...
//	23-00UT        3            5 (G1)       1
//
// The ":Issued:" line is the only place the year appears. Column headers carry
// month and day only; each column takes the year that puts it nearest the issue
// date, so a bulletin issued Dec 31 covering Jan 1 and one issued Jan 1 that
// still lists Dec 31 both resolve correctly. Columns must be consecutive days.
//
// Each row label "HH-HHUT" names a one-hour window starting at HH UTC. Rows
// start at 00 and run contiguously. Values are integer Kp indices; NOAA G-scale
// storm annotations such as "(G1)" trail the value and are ignored.
//
// # Freshness
//
// A bulletin is only usable on a day it covers: [ParseBulletin] selects the
// column dated "today" and rejects the bulletin if there is none. The caller
// supplies "today" explicitly; only the pipeline edge reads the clock (see
// [Today]).
//
// # Timestamps
//
// A record's instant is its calendar date plus its hour, taken as UTC with no
// offset conversion. [HourlyForecast.Time] and [ToDTO] apply this rule; the DTO
// carries it as Unix seconds.
package domain
