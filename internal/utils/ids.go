package utils

import "strconv"

// FormatID renders a numeric ticket id in its wire form. Ids travel as
// strings so JavaScript clients never lose precision on large values.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
