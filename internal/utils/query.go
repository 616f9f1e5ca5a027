// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// PositiveAtoi parses s as a positive count capped at max. Missing,
// malformed, or non-positive input yields def.
//
// Example:
//
//	utils.PositiveAtoi("", 50, 200)    // 50
//	utils.PositiveAtoi("0", 50, 200)   // 50
//	utils.PositiveAtoi("999", 50, 200) // 200
func PositiveAtoi(s string, def, max int) int {
	n := AtoiDefault(s, def)
	if n < 1 {
		n = def
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
