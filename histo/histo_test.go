package histo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rawdata = []float64{1, 6, 3, 2, 4, 5, 7, 6, 3.5, 3, 5, 1, 1, 0, 0, 5, 8, 1, 2, 3, 44, 3, 7, 3, 1, 3, 5, 32, 1}

func TestHistoIO(Te *testing.T) {
	M := NewMatrix(3, 3, []float64{0, 1, 2, 3, 4, 8})
	M.Fill()
	raw := make([]float64, len(rawdata))
	copy(raw, rawdata)
	M.NewHisto(0, 1, nil, raw)
	j, err := json.Marshal(M)
	require.NoError(Te, err)
	M2 := new(Matrix)
	require.NoError(Te, json.Unmarshal(j, M2))
	assert.Equal(Te, M.View(0, 1).View(), M2.View(0, 1).View())
	assert.Equal(Te, M.View(2, 2).ID(), M2.View(2, 2).ID())
	r, c := M2.Dims()
	assert.Equal(Te, 3, r)
	assert.Equal(Te, 3, c)
}

func TestAddDataMatchesReHisto(Te *testing.T) {
	div := []float64{0, 1, 2, 3, 4, 8}
	a := NewData(div, nil)
	a.AddData(rawdata...)
	raw := make([]float64, len(rawdata))
	copy(raw, rawdata)
	b := NewData(div, raw)
	assert.Equal(Te, b.View(), a.View())
	assert.Equal(Te, []float64{2, 6, 2, 7, 9}, a.View())
	assert.Equal(Te, len(rawdata), a.Total())
	a.Normalize()
	assert.InDelta(Te, 26.0/29.0, a.Sum(), 1e-12)
	a.AddData(0.5)
	a.UnNormalize()
	assert.InDelta(Te, 3, a.View()[0], 1e-12)
}

func TestUniformAndCenters(Te *testing.T) {
	d := NewData(Uniform(0, 2, 4), nil)
	assert.InDeltaSlice(Te, []float64{0.25, 0.75, 1.25, 1.75}, d.Centers(), 1e-12)
	d.AddWeighted(1.0, 2.5)
	assert.Equal(Te, []float64{0, 0, 2.5, 0}, d.View())
	assert.Panics(Te, func() { NewData([]float64{1, 0}, nil) })
}

func TestAddSub(Te *testing.T) {
	div := Uniform(0, 3, 3)
	a := NewData(div, []float64{0.5, 1.5, 1.5})
	b := NewData(div, []float64{2.5, 1.5})
	s := NewData(div, nil)
	s.Add(a, b)
	assert.Equal(Te, []float64{1, 3, 1}, s.View())
	s.Sub(b, a, true)
	assert.Equal(Te, []float64{1, 1, 1}, s.View())
}
