// Package german provides German display names for dates. The report
// headings and day columns are German-language output; relying on the host
// locale (the way LC_TIME-based tooling does) is not portable, so the small
// set of names needed is carried here.
package german

import "time"

var monthNames = [...]string{
	time.January:   "Januar",
	time.February:  "Februar",
	time.March:     "März",
	time.April:     "April",
	time.May:       "Mai",
	time.June:      "Juni",
	time.July:      "Juli",
	time.August:    "August",
	time.September: "September",
	time.October:   "Oktober",
	time.November:  "November",
	time.December:  "Dezember",
}

var weekdayAbbrs = [...]string{
	time.Sunday:    "So",
	time.Monday:    "Mo",
	time.Tuesday:   "Di",
	time.Wednesday: "Mi",
	time.Thursday:  "Do",
	time.Friday:    "Fr",
	time.Saturday:  "Sa",
}

var weekdayNames = [...]string{
	time.Sunday:    "Sonntag",
	time.Monday:    "Montag",
	time.Tuesday:   "Dienstag",
	time.Wednesday: "Mittwoch",
	time.Thursday:  "Donnerstag",
	time.Friday:    "Freitag",
	time.Saturday:  "Samstag",
}

// MonthName returns the German name of the month, e.g. "Dezember".
func MonthName(m time.Month) string {
	return monthNames[m]
}

// MonthYear formats a date as "Dezember 2024".
func MonthYear(t time.Time) string {
	return MonthName(t.Month()) + " " + t.Format("2006")
}

// WeekdayAbbr returns the two-letter German weekday abbreviation, e.g. "Mo".
func WeekdayAbbr(d time.Weekday) string {
	return weekdayAbbrs[d]
}

// WeekdayName returns the full German weekday name, e.g. "Montag".
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// ShortDay formats a date as weekday abbreviation plus day.month, e.g.
// "Mi 25.12". This is the day label used in the plan table and exports.
func ShortDay(t time.Time) string {
	return WeekdayAbbr(t.Weekday()) + " " + t.Format("02.01")
}

// LongDay formats a date as "Mittwoch 25.12.2024".
func LongDay(t time.Time) string {
	return WeekdayName(t.Weekday()) + " " + t.Format("02.01.2006")
}
