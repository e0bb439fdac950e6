package model

import (
	"time"

	"MathUtils/internal/calculator"
)

// Operation names one of the numeric utilities.
type Operation string

const (
	OpAverage  Operation = "average"
	OpMax      Operation = "max"
	OpDiscount Operation = "discount"
)

// Job is a single evaluation request read from a job file.
type Job struct {
	Name    string    `yaml:"name" json:"name,omitempty"`
	Op      Operation `yaml:"op" json:"op"`
	Values  []float64 `yaml:"values,omitempty" json:"values,omitempty"`   // average
	Ints    []int     `yaml:"ints,omitempty" json:"ints,omitempty"`       // max, exactly 3
	Price   float64   `yaml:"price,omitempty" json:"price,omitempty"`     // discount
	Percent float64   `yaml:"percent,omitempty" json:"percent,omitempty"` // discount
}

// Result is the outcome of evaluating a Job.
type Result struct {
	Job         Job
	Value       float64
	Rounding    calculator.RoundingMode
	Err         string // empty on success
	EvaluatedAt time.Time
}

// OK reports whether the job evaluated without error.
func (r *Result) OK() bool {
	return r.Err == ""
}
