package models

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// MonthDay returns the month and day parsed from a "YYYY/MM/DD" date.
// ok is false when the value does not have three numeric parts.
func MonthDay(dob string) (month, day int, ok bool) {
	parts := strings.Split(dob, "/")
	if len(parts) != 3 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	day, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, false
	}
	return month, day, true
}

// Birthday returns the "MM/DD" label shown next to a person's name.
// A malformed DOB is returned unchanged.
func (p Person) Birthday() string {
	parts := strings.Split(p.DOB, "/")
	if len(parts) != 3 {
		return p.DOB
	}
	return parts[1] + "/" + parts[2]
}

// SortByBirthday returns a copy of people ordered by (month, day) ascending.
// The year is ignored and ties keep their insertion order. People whose DOB
// cannot be parsed are placed after everyone else.
func SortByBirthday(people []Person) []Person {
	sorted := slices.Clone(people)
	slices.SortStableFunc(sorted, func(a, b Person) int {
		am, ad, aok := MonthDay(a.DOB)
		bm, bd, bok := MonthDay(b.DOB)
		switch {
		case aok && !bok:
			return -1
		case !aok && bok:
			return 1
		case !aok && !bok:
			return 0
		}
		if c := cmp.Compare(am, bm); c != 0 {
			return c
		}
		return cmp.Compare(ad, bd)
	})
	return sorted
}
