package core

import "time"

// DisplayDateLayout renders dates as "15 October 2026, Thursday".
const DisplayDateLayout = "2 January 2006, Monday"

var ptMonths = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// MonthRange returns the [start, end) instants of a calendar month in loc.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// LastDayOfMonth returns the number of days in t's month.
func LastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// DaysRemainingInMonth counts today plus every day left in t's month.
func DaysRemainingInMonth(t time.Time) int {
	return LastDayOfMonth(t) - t.Day() + 1
}

// DailyAllowance spreads balance across the remaining days of now's month.
func DailyAllowance(balance Money, now time.Time) Money {
	days := DaysRemainingInMonth(now)
	if days <= 0 {
		return Money{}
	}
	return balance.DivideEvenly(days)
}

// MonthNamePT returns the lowercase Portuguese month name.
func MonthNamePT(m time.Month) string {
	if m < time.January || m > time.December {
		return m.String()
	}
	return ptMonths[m-1]
}
