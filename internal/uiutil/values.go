package uiutil

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var numberRun = regexp.MustCompile(`[\d.]+`)

// ExtractNumber parses the first run of digits and dots in text, keeping
// everything up to a second dot. It returns 0 when there is no number.
//
//	ExtractNumber("Total: $32.39") // 32.39
func ExtractNumber(text string) float64 {
	run := numberRun.FindString(text)
	if run == "" {
		return 0
	}

	if first := strings.IndexByte(run, '.'); first >= 0 {
		if second := strings.IndexByte(run[first+1:], '.'); second >= 0 {
			run = run[:first+1+second]
		}
	}

	n, err := strconv.ParseFloat(run, 64)
	if err != nil {
		return 0
	}
	return n
}

// AreSlicesEqual reports whether a and b hold equal elements in the same
// order. Nil and empty slices are equal.
func AreSlicesEqual[T any](a, b []T) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}
