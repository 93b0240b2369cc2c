package chart

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupportedColor is returned by Darken for anything that is not a hex color.
var ErrUnsupportedColor = errors.New("unsupported color format")

// DarkenFactor is the per-channel multiplier applied to hovered donut slices.
const DarkenFactor = 0.75

var (
	hexColor   = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	rgbColor   = regexp.MustCompile(`^rgba?\(\s*[0-9.%]+\s*,\s*[0-9.%]+\s*,\s*[0-9.%]+\s*(,\s*[0-9.%]+\s*)?\)$`)
	namedColor = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// ValidColor reports whether s looks like a CSS color: hex, rgb()/rgba() or a name.
func ValidColor(s string) bool {
	s = strings.TrimSpace(s)
	return hexColor.MatchString(s) || rgbColor.MatchString(s) || namedColor.MatchString(s)
}

// Darken multiplies each channel of a hex color by factor, truncating, and
// returns it as rgb(r, g, b). Short (#rgb) and alpha (#rrggbbaa) forms are
// accepted; the alpha channel is dropped. Any other input yields
// ErrUnsupportedColor.
func Darken(color string, factor float64) (string, error) {
	r, g, b, err := parseHex(color)
	if err != nil {
		return "", err
	}
	scale := func(c uint8) int {
		return int(math.Floor(float64(c) * factor))
	}
	return fmt.Sprintf("rgb(%d, %d, %d)", scale(r), scale(g), scale(b)), nil
}

func parseHex(color string) (r, g, b uint8, err error) {
	if !hexColor.MatchString(color) {
		return 0, 0, 0, errors.Wrapf(ErrUnsupportedColor, "%q", color)
	}
	hex := color[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	channel := func(s string) uint8 {
		v, _ := strconv.ParseUint(s, 16, 8)
		return uint8(v)
	}
	return channel(hex[0:2]), channel(hex[2:4]), channel(hex[4:6]), nil
}
