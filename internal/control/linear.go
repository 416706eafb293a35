package control

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// linearMap maps [x0,x1] onto [y0,y1] and clamps outside the input range.
type linearMap struct {
	pl interp.PiecewiseLinear
}

func newLinearMap(x0, x1, y0, y1 float64) (*linearMap, error) {
	m := &linearMap{}
	if err := m.pl.Fit([]float64{x0, x1}, []float64{y0, y1}); err != nil {
		return nil, fmt.Errorf("fit [%g,%g]->[%g,%g]: %w", x0, x1, y0, y1, err)
	}
	return m, nil
}

func (m *linearMap) At(x float64) float64 {
	return m.pl.Predict(x)
}
