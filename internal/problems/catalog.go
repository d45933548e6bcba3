package problems

import (
	"fmt"
	"strconv"
	"strings"
)

// Catalog decides which problem statement codes a team may pitch. A code is
// the event prefix followed by five digits; the numeric part must sit in the
// contiguous published range or match one of the carried-over legacy codes.
type Catalog struct {
	Prefix      string `toml:"prefix"`
	RangeStart  int    `toml:"range_start"`
	RangeEnd    int    `toml:"range_end"`
	LegacyCodes []int  `toml:"legacy_codes"`
}

func DefaultCatalog() *Catalog {
	return &Catalog{
		Prefix:      "SIH",
		RangeStart:  25001,
		RangeEnd:    25142,
		LegacyCodes: []int{12507, 12508},
	}
}

// NumericID parses the numeric part of a code, without checking the
// allow-list. Returns an error for anything that is not prefix+5 digits.
func (c *Catalog) NumericID(code string) (int, error) {
	if !strings.HasPrefix(code, c.Prefix) {
		return 0, fmt.Errorf("code %q does not start with %s", code, c.Prefix)
	}
	digits := strings.TrimPrefix(code, c.Prefix)
	if len(digits) != 5 {
		return 0, fmt.Errorf("code %q must have exactly 5 digits after %s", code, c.Prefix)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("code %q has a non-numeric suffix", code)
	}
	return n, nil
}

func (c *Catalog) IsAllowedCode(code string) bool {
	n, err := c.NumericID(code)
	if err != nil {
		return false
	}
	if n >= c.RangeStart && n <= c.RangeEnd {
		return true
	}
	for _, legacy := range c.LegacyCodes {
		if n == legacy {
			return true
		}
	}
	return false
}

// Codes lists every allowed code, range first, then legacy codes.
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, c.RangeEnd-c.RangeStart+1+len(c.LegacyCodes))
	for n := c.RangeStart; n <= c.RangeEnd; n++ {
		codes = append(codes, fmt.Sprintf("%s%05d", c.Prefix, n))
	}
	for _, legacy := range c.LegacyCodes {
		codes = append(codes, fmt.Sprintf("%s%05d", c.Prefix, legacy))
	}
	return codes
}
