package utils

import "strings"

// IndexOfFold returns the index of the first entry of list equal to a
// under case folding, or -1.
func IndexOfFold(a string, list []string) int {
	for i, b := range list {
		if strings.EqualFold(strings.TrimSpace(b), a) {
			return i
		}
	}
	return -1
}
