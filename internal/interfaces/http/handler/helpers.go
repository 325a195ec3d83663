package handler

import (
	"errors"
	"strconv"
)

// parsePositiveInt parses a query parameter that must be a positive integer
func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be positive")
	}
	return n, nil
}
