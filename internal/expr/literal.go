package expr

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// validateUUID enforces the RFC-4122 hex grouping 8-4-4-4-12
// (case-insensitive) named in spec §4.D. uuid.Parse is reused here rather
// than a hand-rolled regex — it is the same validation graphjin's own
// dependency tree already carries (google/uuid is a direct require in the
// teacher's go.mod) and it rejects non-hex characters and wrong segment
// lengths. uuid.Parse also accepts the unhyphenated, braced and "urn:uuid:"
// forms, so the length check first pins the 36-character hyphenated form.
func validateUUID(s string) error {
	if len(s) != 36 {
		return fmt.Errorf("Invalid UUID format")
	}
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("Invalid UUID format")
	}
	return nil
}

var daysInMonth = [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func isLeapYear(y int) bool {
	return (y%4 == 0 && y%100 != 0) || y%400 == 0
}

// validateDate enforces "YYYY-MM-DD" with calendar correctness (leap
// years, month lengths), per §4.D.
func validateDate(s string) error {
	y, m, d, err := parseDateParts(s)
	if err != nil {
		return fmt.Errorf("Invalid date format")
	}
	if !calendarOK(y, m, d) {
		return fmt.Errorf("Invalid date format")
	}
	return nil
}

func parseDateParts(s string) (year, month, day int, err error) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return 0, 0, 0, fmt.Errorf("bad shape")
	}
	for i := 0; i < len(s); i++ {
		if i != 4 && i != 7 && (s[i] < '0' || s[i] > '9') {
			return 0, 0, 0, fmt.Errorf("bad shape")
		}
	}
	year, err = strconv.Atoi(s[0:4])
	if err != nil {
		return 0, 0, 0, err
	}
	month, err = strconv.Atoi(s[5:7])
	if err != nil {
		return 0, 0, 0, err
	}
	day, err = strconv.Atoi(s[8:10])
	if err != nil {
		return 0, 0, 0, err
	}
	return year, month, day, nil
}

func calendarOK(y, m, d int) bool {
	if m < 1 || m > 12 || d < 1 {
		return false
	}
	max := daysInMonth[m-1]
	if m == 2 && isLeapYear(y) {
		max = 29
	}
	return d <= max
}

// validateTimestamp enforces "YYYY-MM-DD[T ]HH:MM:SS[.fraction]" with
// 1-6 fraction digits, per §4.D. Returns the value with 'T' normalized to
// a space, as the spec requires for emission.
func validateTimestamp(s string) (string, error) {
	if len(s) < 19 {
		return "", fmt.Errorf("Invalid timestamp format")
	}
	datePart := s[0:10]
	sep := s[10]
	if sep != 'T' && sep != ' ' {
		return "", fmt.Errorf("Invalid timestamp format")
	}
	timePart := s[11:19]

	y, m, d, err := parseDateParts(datePart)
	if err != nil || !calendarOK(y, m, d) {
		return "", fmt.Errorf("Invalid timestamp format")
	}

	if timePart[2] != ':' || timePart[5] != ':' {
		return "", fmt.Errorf("Invalid timestamp format")
	}
	for i := 0; i < len(timePart); i++ {
		if i != 2 && i != 5 && (timePart[i] < '0' || timePart[i] > '9') {
			return "", fmt.Errorf("Invalid timestamp format")
		}
	}
	hh, err := strconv.Atoi(timePart[0:2])
	if err != nil || hh > 23 {
		return "", fmt.Errorf("Invalid timestamp format")
	}
	mm, err := strconv.Atoi(timePart[3:5])
	if err != nil || mm > 59 {
		return "", fmt.Errorf("Invalid timestamp format")
	}
	ss, err := strconv.Atoi(timePart[6:8])
	if err != nil || ss > 59 {
		return "", fmt.Errorf("Invalid timestamp format")
	}

	rest := s[19:]
	if rest != "" {
		if rest[0] != '.' {
			return "", fmt.Errorf("Invalid timestamp format")
		}
		frac := rest[1:]
		if len(frac) < 1 || len(frac) > 6 {
			return "", fmt.Errorf("Invalid timestamp format")
		}
		for _, c := range frac {
			if c < '0' || c > '9' {
				return "", fmt.Errorf("Invalid timestamp format")
			}
		}
	}

	normalized := datePart + " " + timePart + rest
	return normalized, nil
}
