package codegen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidColor is returned for strings that are not "#RGB" or "#RRGGBB".
var ErrInvalidColor = errors.New("invalid hex color format: expected #RGB or #RRGGBB")

// ParseHexColor parses "#RGB" or "#RRGGBB" (the leading '#' is optional).
// Three-digit colors expand each nibble, so "#f80" equals "#ff8800".
func ParseHexColor(s string) (r, g, b uint8, err error) {
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 6:
		if r, err = parseHexByte(hex[0:2]); err != nil {
			return 0, 0, 0, err
		}
		if g, err = parseHexByte(hex[2:4]); err != nil {
			return 0, 0, 0, err
		}
		if b, err = parseHexByte(hex[4:6]); err != nil {
			return 0, 0, 0, err
		}
		return r, g, b, nil
	case 3:
		var n [3]uint8
		for i := range n {
			if n[i], err = parseHexNibble(hex[i]); err != nil {
				return 0, 0, 0, err
			}
		}
		// Expand nibble to byte: 0xF -> 0xFF
		return n[0]<<4 | n[0], n[1]<<4 | n[1], n[2]<<4 | n[2], nil
	}
	return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

func parseHexByte(s string) (uint8, error) {
	hi, err := parseHexNibble(s[0])
	if err != nil {
		return 0, err
	}
	lo, err := parseHexNibble(s[1])
	if err != nil {
		return 0, err
	}
	return hi<<4 | lo, nil
}

func parseHexNibble(c byte) (uint8, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, fmt.Errorf("%w: bad digit %q", ErrInvalidColor, c)
}

// colorExpr renders a hex color as a ratatui Color, or def when hex is empty
// or malformed.
func colorExpr(hex, def string) string {
	if hex == "" {
		return def
	}
	r, g, b, err := ParseHexColor(hex)
	if err != nil {
		return def
	}
	return fmt.Sprintf("Color::Rgb(%d, %d, %d)", r, g, b)
}
