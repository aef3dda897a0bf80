package harmonic

import (
	"math"
	"testing"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/compute"
	"github.com/rmera/gomolsim/potential"
	"github.com/rmera/gomolsim/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

//a diatomic with masses 1 and 2 and a bond of stiffness 3 at its equilibrium length.
func diatomic(Te *testing.T) (*molsim.Box, compute.Compute) {
	b, err := space.NewCube(3, 10)
	require.NoError(Te, err)
	box := molsim.NewBox(b)
	conf, err := space.NewMatrix([]float64{-0.5, 0, 0, 0.5, 0, 0}, 3)
	require.NoError(Te, err)
	types := []*molsim.AtomType{molsim.NewAtomType("A", 1, 0), molsim.NewAtomType("B", 2, 0)}
	s, err := molsim.NewSpecies("AB", types, conf, molsim.Bond{I: 0, J: 1, Potential: potential.NewHarmonic(3, 1)})
	require.NoError(Te, err)
	box.AddMolecule(s, space.Vec{1, 2, 3})
	return box, compute.NewSum(box, compute.NewBonding(box))
}

func TestDiatomicModes(Te *testing.T) {
	box, c := diatomic(Te)
	before := box.Positions().Clone()
	H, err := Hessian(box, c, 1e-4)
	require.NoError(Te, err)
	assert.Equal(Te, before.RawData(), box.Positions().RawData())
	assert.InDelta(Te, 3, H.At(0, 0), 1e-6)
	assert.InDelta(Te, -3, H.At(0, 3), 1e-6)
	assert.InDelta(Te, 0, H.At(1, 1), 1e-6)
	ev, vecs, err := Modes(H, MassWeights(box))
	require.NoError(Te, err)
	require.Len(Te, ev, 6)
	for _, v := range ev[:5] {
		assert.GreaterOrEqual(Te, v, 0.0)
		assert.InDelta(Te, 0, v, 1e-6)
	}
	//k/mu, mu the reduced mass
	assert.InDelta(Te, 4.5, ev[5], 1e-6)
	w := Frequencies(ev)
	assert.InDelta(Te, math.Sqrt(4.5), w[5], 1e-6)
	//the stretching mode moves both atoms along the bond, in opposite senses.
	assert.InDelta(Te, 0, vecs.At(1, 5), 1e-6)
	assert.Less(Te, vecs.At(0, 5)*vecs.At(3, 5), 0.0)
	assert.InDelta(Te, 2*math.Log(math.Sqrt(4.5)/2), FreeEnergy(w[5:], 2), 1e-6)
}

func TestClampEigenvalues(Te *testing.T) {
	ev := []float64{-1e-12, -0.5, 2, math.NaN()}
	ClampEigenvalues(ev)
	assert.Equal(Te, []float64{0, 0, 2, 0}, ev)

	H := mat.NewSymDense(2, []float64{0, 1, 1, 0})
	vals, _, err := Modes(H, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 0.0, vals[0])
	assert.InDelta(Te, 1, vals[1], 1e-12)
	_, _, err = Modes(H, []float64{1})
	assert.True(Te, molsim.IsConfigError(err))
}

func TestHessianErrors(Te *testing.T) {
	b, err := space.NewCube(2, 4)
	require.NoError(Te, err)
	_, err = Hessian(molsim.NewBox(b), compute.NewSum(molsim.NewBox(b)), 0)
	assert.True(Te, molsim.IsConfigError(err))
	box := molsim.NewBox(b)
	box.AddMolecule(molsim.NewMonatomic(molsim.NewAtomType("A", 1, 0), 2), nil)
	_, err = Hessian(box, compute.NewLRC(box), 0)
	assert.True(Te, molsim.IsConfigError(err))
}
