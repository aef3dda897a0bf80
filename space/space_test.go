package space

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestVecOps(Te *testing.T) {
	a := Vec{1, 2, 3}
	b := Vec{0.5, -1, 2}
	c := NewVec(3)
	c.Ev1Mv2(a, b)
	assert.Equal(Te, Vec{0.5, 3, 1}, c)
	c.PEa1Tv1(2, b)
	assert.Equal(Te, Vec{1.5, 1, 5}, c)
	assert.InDelta(Te, 14.0, a.Squared(), 1e-12)
	assert.InDelta(Te, 0.5-2+6, a.Dot(b), 1e-12)
	x := NewVec(3)
	Cross(x, Vec{1, 0, 0}, Vec{0, 1, 0})
	assert.Equal(Te, Vec{0, 0, 1}, x)
	assert.Panics(Te, func() { Cross(NewVec(2), Vec{1, 0}, Vec{0, 1}) })
}

func TestAngleClamp(Te *testing.T) {
	a := Vec{1e-8, 1, 0}
	b := Vec{2e-8, 2, 0}
	ang := Angle(a, b)
	assert.False(Te, math.IsNaN(ang))
	assert.InDelta(Te, 0, ang, 1e-6)
	assert.InDelta(Te, math.Pi, Angle(Vec{1, 1, 1}, Vec{-3, -3, -3}), 1e-6)
}

func TestMatrixSwapRemove(Te *testing.T) {
	m, err := NewMatrix([]float64{0, 0, 1, 1, 2, 2}, 2)
	require.NoError(Te, err)
	require.Equal(Te, 3, m.NVecs())
	moved := m.SwapRemove(0)
	assert.Equal(Te, 2, moved)
	assert.Equal(Te, 2, m.NVecs())
	assert.Equal(Te, Vec{2, 2}, m.VecView(0))
	m.SwapRemove(1)
	m.SwapRemove(0)
	assert.Equal(Te, 0, m.NVecs())
	assert.Nil(Te, m.Dense())
	i := m.Append(Vec{3, 4})
	assert.Equal(Te, 0, i)
	_, err = NewMatrix([]float64{1, 2, 3}, 2)
	assert.Error(Te, err)
}

func TestRectangularImages(Te *testing.T) {
	b, err := NewRectangular(10, 5, 4)
	require.NoError(Te, err)
	dr := Vec{6, -3, 1.5}
	b.NearestImage(dr)
	assert.InDeltaSlice(Te, []float64{-4, 2, 1.5}, []float64(dr), 1e-12)
	r := Vec{14.5, 2.6, -2.1}
	b.CentralImage(r)
	assert.InDeltaSlice(Te, []float64{4.5, -2.4, 1.9}, []float64(r), 1e-12)
	assert.InDelta(Te, 200.0, b.Volume(), 1e-12)
	assert.InDelta(Te, 4.0, MinWidth(b), 1e-12)
	_, err = NewRectangular(1, -1)
	assert.Error(Te, err)
}

//brute-force minimum image over many images
func bruteNearest(h *mat.Dense, dr Vec) float64 {
	best := math.Inf(1)
	d := len(dr)
	for i := -3; i <= 3; i++ {
		for j := -3; j <= 3; j++ {
			for k := -3; k <= 3; k++ {
				o := []float64{float64(i), float64(j), float64(k)}
				v := dr.Copy()
				for a := 0; a < d; a++ {
					for c := 0; c < d; c++ {
						v[a] += h.At(a, c) * o[c]
					}
				}
				best = math.Min(best, v.Squared())
			}
		}
	}
	return best
}

func TestDeformableNearestImage(Te *testing.T) {
	h := mat.NewDense(3, 3, []float64{
		10, 4, 3,
		0, 9, 2.5,
		0, 0, 8,
	})
	b, err := NewDeformable(h)
	require.NoError(Te, err)
	assert.InDelta(Te, 720.0, b.Volume(), 1e-9)
	tests := []Vec{{4.9, 4.4, 3.9}, {-7, 3, 2}, {0.1, 0.2, 0.3}, {12, -13, 9}}
	for _, dr := range tests {
		want := bruteNearest(h, dr)
		got := dr.Copy()
		b.NearestImage(got)
		assert.InDelta(Te, want, got.Squared(), 1e-9, "dr=%v", dr)
	}
	for _, w := range b.Widths() {
		assert.True(Te, w <= 10 && w > 0)
	}
	r := Vec{25, -30, 17}
	b.CentralImage(r)
	s := NewVec(3)
	b.Fractional(s, r)
	for _, v := range s {
		assert.True(Te, v >= -0.5 && v < 0.5)
	}
	b.Scale(2)
	assert.InDelta(Te, 720.0*8, b.Volume(), 1e-6)
	_, err = NewDeformable(mat.NewDense(2, 2, []float64{1, 2, 2, 4}))
	assert.Error(Te, err)
}
