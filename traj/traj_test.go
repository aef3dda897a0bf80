package traj

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/gomolsim/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func frames(n, dim, nframes int) []*space.Matrix {
	ret := make([]*space.Matrix, nframes)
	for f := range ret {
		ret[f] = space.Zeros(n, dim)
		for i := 0; i < n; i++ {
			for j := 0; j < dim; j++ {
				ret[f].VecView(i)[j] = float64(f) + 0.1234*float64(i) - 0.5678*float64(j)
			}
		}
	}
	return ret
}

func TestRoundTrip(Te *testing.T) {
	for _, name := range []string{"t.stf", "t.gz", "t.txt"} {
		Te.Run(name, func(Te *testing.T) {
			file := filepath.Join(Te.TempDir(), name)
			in := frames(5, 2, 3)
			box, err := space.NewRectangular(4, 6)
			require.NoError(Te, err)
			w, err := NewWriter(file, 5, 2, map[string]string{"prec": "4", "model": "lj"})
			require.NoError(Te, err)
			for k, f := range in {
				var b space.Boundary
				if k != 1 {
					b = box
				}
				require.NoError(Te, w.WNext(f, b))
			}
			require.NoError(Te, w.Close())
			r, header, err := New(file)
			require.NoError(Te, err)
			assert.Equal(Te, map[string]string{"prec": "4", "model": "lj"}, header)
			assert.Equal(Te, 5, r.Len())
			assert.Equal(Te, 2, r.Dim())
			c := space.Zeros(5, 2)
			for k, f := range in {
				b, err := r.Next(c)
				require.NoError(Te, err)
				assert.InDeltaSlice(Te, f.RawData(), c.RawData(), 1e-4)
				if k == 1 {
					assert.Nil(Te, b)
				} else {
					require.NotNil(Te, b)
					assert.Equal(Te, []float64{4, 6}, []float64(b.Widths()))
				}
			}
			_, err = r.Next(c)
			assert.True(Te, IsLastFrame(err))
			assert.False(Te, r.Readable())
		})
	}
}

func TestDeformableBox(Te *testing.T) {
	file := filepath.Join(Te.TempDir(), "d.stf")
	h := mat.NewDense(3, 3, []float64{5, 1, 0, 0, 5, 0.5, 0, 0, 5})
	box, err := space.NewDeformable(h)
	require.NoError(Te, err)
	w, err := NewWriter(file, 4, 3, nil)
	require.NoError(Te, err)
	require.NoError(Te, w.WNext(frames(4, 3, 1)[0], box))
	require.NoError(Te, w.Close())
	c, b, header, err := ReadConfiguration(file)
	require.NoError(Te, err)
	assert.Equal(Te, "3", header["prec"])
	assert.InDeltaSlice(Te, frames(4, 3, 1)[0].RawData(), c.RawData(), 1e-3)
	_, ok := b.(*space.Deformable)
	require.True(Te, ok)
	assert.True(Te, mat.EqualApprox(h, b.Edges(), 1e-12))
}

func TestErrors(Te *testing.T) {
	dir := Te.TempDir()
	w, err := NewWriter(filepath.Join(dir, "e.stf"), 3, 2, nil)
	require.NoError(Te, err)
	assert.Error(Te, w.WNext(space.Zeros(2, 2), nil))
	assert.Error(Te, w.WNext(nil, nil))
	require.NoError(Te, w.Close())
	assert.Error(Te, w.WNext(space.Zeros(3, 2), nil))

	_, _, _, err = ReadConfiguration(filepath.Join(dir, "e.stf"))
	assert.Error(Te, err)
	assert.False(Te, IsLastFrame(err))

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(Te, os.WriteFile(bad, []byte("prec=2\nnot a pair\n** 1 2\n"), 0644))
	_, _, err = New(bad)
	assert.Error(Te, err)

	short := filepath.Join(dir, "short.txt")
	require.NoError(Te, os.WriteFile(short, []byte("prec=2\n** 2 2\n10 20\n*\n"), 0644))
	r, _, err := New(short)
	require.NoError(Te, err)
	_, err = r.Next(space.Zeros(2, 2))
	assert.Error(Te, err)
	assert.False(Te, IsLastFrame(err))
}
