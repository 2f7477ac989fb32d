// Package validate holds the pure input predicates used before any store
// access. None of them touch I/O.
package validate

import "strings"

// Status codes accepted by Status.
const (
	StatusPlaced     = "PA"
	StatusActive     = "AC"
	StatusAvailable  = "AV"
	StatusWaitlisted = "WL"
)

const (
	MinAge = 0
	MaxAge = 150
)

// daysInMonth is deliberately not leap-year aware: February is always 28.
var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Name accepts non-empty strings made only of ASCII letters and spaces.
func Name(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		return false
	}
	return true
}

// Date accepts YYYY-MM-DD with a month in 1-12 and a day inside the fixed
// day table.
func Date(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	if _, ok := digits(s[0:4]); !ok {
		return false
	}
	month, ok := digits(s[5:7])
	if !ok || month < 1 || month > 12 {
		return false
	}
	day, ok := digits(s[8:10])
	if !ok || day < 1 || day > daysInMonth[month-1] {
		return false
	}
	return true
}

// Timeslot accepts the three fixed-width hour range layouts:
//
//	len 9:  H:MM-H:MM
//	len 10: H:MM-HH:MM or HH:MM-H:MM
//	len 11: HH:MM-HH:MM
//
// Every other position must hold a digit.
func Timeslot(s string) bool {
	switch len(s) {
	case 9:
		seps := 0
		for i := 0; i < len(s); i++ {
			switch {
			case isDigit(s[i]):
			case s[i] == '-' && i == 4, s[i] == ':' && (i == 1 || i == 6):
				seps++
			default:
				return false
			}
		}
		return seps == 3
	case 10:
		dashes, colons := 0, 0
		for i := 0; i < len(s); i++ {
			switch {
			case isDigit(s[i]):
			case s[i] == '-' && (i == 4 || i == 5):
				dashes++
			case s[i] == ':' && (i == 1 || i == 2 || i == 6 || i == 7):
				colons++
			default:
				return false
			}
		}
		return dashes == 1 && colons == 2
	case 11:
		seps := 0
		for i := 0; i < len(s); i++ {
			switch {
			case isDigit(s[i]):
			case s[i] == ':' && (i == 2 || i == 8), s[i] == '-' && i == 5:
				seps++
			default:
				return false
			}
		}
		return seps == 3
	default:
		return false
	}
}

// Status accepts exactly PA, AC, AV or WL. Matching is case-sensitive.
func Status(s string) bool {
	switch s {
	case StatusPlaced, StatusActive, StatusAvailable, StatusWaitlisted:
		return true
	}
	return false
}

// Gender normalizes f/F/m/M to the upper-case code.
func Gender(s string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "F":
		return "F", true
	case "M":
		return "M", true
	}
	return "", false
}

func Age(n int) bool {
	return n >= MinAge && n <= MaxAge
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func digits(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}
