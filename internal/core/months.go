package core

import "strings"

// MonthInfo describes one calendar month.
type MonthInfo struct {
	Order int
	Code  string
	Label string
}

// Months lists the calendar months in order. Codes are the lower-case
// three-letter abbreviations.
var Months = [12]MonthInfo{
	{1, "jan", "January"},
	{2, "feb", "February"},
	{3, "mar", "March"},
	{4, "apr", "April"},
	{5, "may", "May"},
	{6, "jun", "June"},
	{7, "jul", "July"},
	{8, "aug", "August"},
	{9, "sep", "September"},
	{10, "oct", "October"},
	{11, "nov", "November"},
	{12, "dec", "December"},
}

// MonthByOrder returns the month numbered order (1-12).
func MonthByOrder(order int) (MonthInfo, bool) {
	if order < 1 || order > 12 {
		return MonthInfo{}, false
	}
	return Months[order-1], true
}

// MonthByCode returns the month with the given code, ignoring case.
func MonthByCode(code string) (MonthInfo, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, m := range Months {
		if m.Code == code {
			return m, true
		}
	}
	return MonthInfo{}, false
}
