// Package chart computes the geometry and hover behaviour of the hand-drawn
// SVG charts (the sorted bar chart and the donut chart) and emits them through
// a scene-graph builder, so layout can be tested without any host document.
package chart

import (
	"fmt"
	"math"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/pkg/errors"
)

// DataPoint is a single labeled value with its resting fill color.
type DataPoint struct {
	Label string  `json:"label" mapstructure:"label"`
	Value float64 `json:"value" mapstructure:"value"`
	Color string  `json:"color" mapstructure:"color"`
}

// Validate checks the invariants of a single point.
func (d DataPoint) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Label, validation.Required),
		validation.Field(&d.Value, validation.Min(0.0), validation.By(finite)),
		validation.Field(&d.Color, validation.Required, validation.By(colorRule)),
	)
}

// Input is the explicit dataset handed to a renderer.
type Input struct {
	Title  string      `json:"title"`
	Points []DataPoint `json:"points"`
}

// Validate checks every point and label uniqueness.
func (in Input) Validate() error {
	seen := make(map[string]bool, len(in.Points))
	for i, p := range in.Points {
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "point %d (%q)", i, p.Label)
		}
		if seen[p.Label] {
			return errors.Errorf("duplicate label %q", p.Label)
		}
		seen[p.Label] = true
	}
	return nil
}

// Total sums the values of all points.
func Total(points []DataPoint) float64 {
	var total float64
	for _, p := range points {
		total += p.Value
	}
	return total
}

// MaxValue returns the largest value, or 0 for an empty list.
func MaxValue(points []DataPoint) float64 {
	var max float64
	for _, p := range points {
		if p.Value > max {
			max = p.Value
		}
	}
	return max
}

// Percent returns value/total as a whole percentage rounded half up.
// A non-positive total yields 0.
func Percent(value, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(value/total*100 + 0.5))
}

// SortDescending returns a copy of points ordered by value, largest first.
// Equal values keep their original relative order.
func SortDescending(points []DataPoint) []DataPoint {
	out := make([]DataPoint, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	return out
}

// LifeBalance is the built-in bar chart dataset.
func LifeBalance() Input {
	return Input{
		Title: "How I spend my life",
		Points: []DataPoint{
			{Label: "Music 🎵", Value: 20, Color: "#111111"},
			{Label: "Art 🎨", Value: 25, Color: "#111111"},
			{Label: "School 🏫", Value: 35, Color: "#dc2626"},
			{Label: "Sleep 🛏️", Value: 15, Color: "#111111"},
			{Label: "Shopping 🛍️", Value: 5, Color: "#111111"},
		},
	}
}

// LearningPositions is the built-in donut chart dataset.
func LearningPositions() Input {
	return Input{
		Title: "Preferred learning positions",
		Points: []DataPoint{
			{Label: "Sitting", Value: 60, Color: "#3b82f6"},
			{Label: "Lying down", Value: 30, Color: "#f59e0b"},
			{Label: "Standing", Value: 10, Color: "#10b981"},
		},
	}
}

func finite(value interface{}) error {
	v, _ := value.(float64)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("must be a finite number")
	}
	return nil
}

func colorRule(value interface{}) error {
	s, _ := value.(string)
	if !ValidColor(s) {
		return errors.Errorf("%q is not a valid color", s)
	}
	return nil
}

// shapeID builds a stable id for the i-th shape of a chart.
func shapeID(prefix string, i int) string {
	return fmt.Sprintf("%s-%d", prefix, i)
}
