package recorder

import (
	"math"
	"strconv"

	"MathUtils/internal/model"
)

// jsonFloat encodes NaN and ±Inf as the strings "NaN", "+Inf" and "-Inf",
// which encoding/json rejects as numbers. Finite values stay JSON numbers.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.AppendQuote(nil, strconv.FormatFloat(v, 'g', -1, 64)), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		var err error
		if s, err = strconv.Unquote(s); err != nil {
			return err
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

// jobInputs is the stored form of a model.Job in the inputs column.
type jobInputs struct {
	Name    string          `json:"name,omitempty"`
	Op      model.Operation `json:"op"`
	Values  []jsonFloat     `json:"values,omitempty"`
	Ints    []int           `json:"ints,omitempty"`
	Price   jsonFloat       `json:"price,omitempty"`
	Percent jsonFloat       `json:"percent,omitempty"`
}

func toInputs(job model.Job) jobInputs {
	in := jobInputs{
		Name:    job.Name,
		Op:      job.Op,
		Ints:    job.Ints,
		Price:   jsonFloat(job.Price),
		Percent: jsonFloat(job.Percent),
	}
	if job.Values != nil {
		in.Values = make([]jsonFloat, len(job.Values))
		for i, v := range job.Values {
			in.Values[i] = jsonFloat(v)
		}
	}
	return in
}

func (in jobInputs) job() model.Job {
	job := model.Job{
		Name:    in.Name,
		Op:      in.Op,
		Ints:    in.Ints,
		Price:   float64(in.Price),
		Percent: float64(in.Percent),
	}
	if in.Values != nil {
		job.Values = make([]float64, len(in.Values))
		for i, v := range in.Values {
			job.Values[i] = float64(v)
		}
	}
	return job
}
