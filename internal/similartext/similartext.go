package similartext

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// DistanceForStrings returns the edit distance between source and target.
// It has a runtime proportional to len(source) * len(target) and memory use
// proportional to len(target).
func DistanceForStrings(source, target []rune) int {
	height := len(source) + 1
	width := len(target) + 1

	// Only two rows of the matrix are needed at any time.
	prevRow := make([]int, width)
	row := make([]int, width)
	for i := 0; i < width; i++ {
		prevRow[i] = i
	}

	for i := 1; i < height; i++ {
		row[0] = i
		for j := 1; j < width; j++ {
			cost := 1
			if source[i-1] == target[j-1] {
				cost = 0
			}
			row[j] = min3(row[j-1]+1, prevRow[j]+1, prevRow[j-1]+cost)
		}
		prevRow, row = row, prevRow
	}

	return prevRow[width-1]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// maxDistanceIgnored is the maximum Levenshtein distance up to which a name
// is still considered "similar enough" to suggest.
const maxDistanceIgnored = 3

// Find returns a string with suggestions for name(s) in `names`
// similar to the string `src` until a max distance of `maxDistanceIgnored`.
func Find(names []string, src string) string {
	if len(src) == 0 {
		return ""
	}

	minDistance := -1
	var matches []string

	for _, name := range names {
		dist := DistanceForStrings([]rune(name), []rune(src))
		if dist > maxDistanceIgnored {
			continue
		}

		if minDistance == -1 || dist < minDistance {
			minDistance = dist
			matches = []string{name}
		} else if dist == minDistance {
			matches = append(matches, name)
		}
	}

	if len(matches) == 0 {
		return ""
	}

	sort.Strings(matches)

	return fmt.Sprintf(", maybe you mean %s?", strings.Join(matches, " or "))
}

// FindFromMap does the same as Find but taking a map instead
// of a string array as first argument.
func FindFromMap(names interface{}, src string) string {
	rnames := reflect.ValueOf(names)
	if rnames.Kind() != reflect.Map {
		panic("Implementation error: non map used as first argument " +
			"to FindFromMap")
	}

	t := rnames.Type()
	if t.Key().Kind() != reflect.String {
		panic("Implementation error: non string key for map used as " +
			"first argument to FindFromMap")
	}

	var namesList []string
	for _, v := range rnames.MapKeys() {
		namesList = append(namesList, v.String())
	}

	return Find(namesList, src)
}
