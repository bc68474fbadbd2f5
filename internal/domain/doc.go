// Package domain models LAPD crime incident data and the summaries derived from it.
//
// # Data Source
//
// Incidents come from the City of Los Angeles "Crime Data from 2020 to Present"
// export, either downloaded from https://data.lacity.org as CSV or read from a
// local copy of the same file. The local copy is ISO-8859-1 encoded; the
// encoding is always declared by the caller (see the csvsource adapter).
//
// # Column Conventions
//
// Date format:
//
//	"DATE OCC" is MM/DD/YYYY, usually followed by a constant time-of-day
//	suffix: "01/08/2020 12:00:00 AM". The suffix is discarded; the date is
//	interpreted as a calendar day in UTC.
//
// Time format:
//
//	"TIME OCC" is HHMM in 24-hour notation stored as an integer, so leading
//	zeros are lost: "2215" = 22:15, "930" = 09:30, "5" = 05:00.
//	One- and two-digit values are treated as whole hours (see [NormalizeTime]).
//
// Coordinates:
//
//	"LAT"/"LON" are WGS-84 decimal degrees. Records with a withheld location
//	carry the sentinel (0, 0) and are excluded from map aggregation.
//
// # Seasons
//
// Meteorological seasons by month: Spring 3–5, Summer 6–8, Fall 9–11,
// Winter 12–2 (wrapping across the year boundary).
//
// # Prediction Features
//
// The external classifier was fit on the columns DayOfWeek (0=Monday),
// HourOfDay, Month, IsWeekend and one AREA_NAME_<area> indicator per training
// area. [Encode] adapts a request to that schema.
package domain
