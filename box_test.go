package molsim

import (
	"testing"

	"github.com/rmera/gomolsim/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harmonicBond struct{}

func (h harmonicBond) U(r2 float64) float64   { return r2 }
func (h harmonicBond) DU(r2 float64) float64  { return 2 * r2 }
func (h harmonicBond) D2U(r2 float64) float64 { return 2 * r2 }

func testBox(Te *testing.T) (*Box, *Species, *Species) {
	b, err := space.NewCube(3, 10)
	require.NoError(Te, err)
	box := NewBox(b, true)
	ar := NewAtomType("Ar", 1, 0)
	o := NewAtomType("O", 16, 0)
	mono := NewMonatomic(ar, 3)
	conf, err := space.NewMatrix([]float64{-0.5, 0, 0, 0.5, 0, 0}, 3)
	require.NoError(Te, err)
	di, err := NewSpecies("O2", []*AtomType{o, o}, conf, Bond{0, 1, harmonicBond{}})
	require.NoError(Te, err)
	return box, mono, di
}

func TestAddRemove(Te *testing.T) {
	box, mono, di := testBox(Te)
	box.SetNMolecules(mono, 3)
	m := box.AddMolecule(di, space.Vec{4.8, 0, 0})
	box.AddMolecule(mono, space.Vec{1, 1, 1})
	require.Equal(Te, 6, box.NAtoms())
	require.Equal(Te, 2, box.NTypes())
	assert.Equal(Te, 4, box.CountType(0))
	//the second atom of the diatomic was wrapped
	assert.InDelta(Te, -4.7, box.Position(m.Atoms()[1])[0], 1e-12)
	com := space.NewVec(3)
	m.CenterOfMass(box, com)
	assert.InDelta(Te, 4.8, com[0], 1e-12)

	var notified []int
	box.RemoveMolecule(m, func(i int) { notified = append(notified, i) })
	assert.Equal(Te, []int{4, 3}, notified)
	require.Equal(Te, 4, box.NAtoms())
	assert.Equal(Te, 0, box.NMolecules(di))
	//the last monatomic molecule was moved into index 3
	last := box.Molecules(mono)[3]
	assert.Equal(Te, []int{3}, last.Atoms())
	assert.Equal(Te, space.Vec{1, 1, 1}, box.Position(3))
	assert.Equal(Te, 4, box.CountType(0))
	assert.Equal(Te, 0, box.CountType(1))
	for i := 0; i < box.NAtoms(); i++ {
		mol := box.MoleculeOf(i)
		assert.Equal(Te, i, mol.Atoms()[0])
	}
	box.RemoveMolecule(box.Molecules(mono)[0], nil)
	assert.Equal(Te, 3, box.NMolecules(mono))
	assert.Equal(Te, 0, box.Molecules(mono)[0].Index())
	assert.Panics(Te, func() { box.RemoveMolecule(m, nil) })
}

func TestScale(Te *testing.T) {
	box, mono, di := testBox(Te)
	a := box.AddMolecule(mono, space.Vec{2, 0, 0})
	m := box.AddMolecule(di, space.Vec{-2, 2, 0})
	box.Scale(2)
	assert.InDelta(Te, 8000.0, box.Boundary().Volume(), 1e-9)
	assert.InDelta(Te, 4.0, box.Position(a.Atoms()[0])[0], 1e-12)
	d := space.NewVec(3)
	d.Ev1Mv2(box.Position(m.Atoms()[1]), box.Position(m.Atoms()[0]))
	assert.InDelta(Te, 1.0, d.Norm(), 1e-12)
}

func TestConfigErrors(Te *testing.T) {
	o := NewAtomType("O", 16, 0)
	conf := space.Zeros(2, 3)
	_, err := NewSpecies("bad", []*AtomType{o, o}, conf, Bond{0, 0, harmonicBond{}})
	require.Error(Te, err)
	assert.True(Te, IsConfigError(err))
	assert.True(Te, IsConfigError(ErrDecorate(err, "TestConfigErrors")))
	err = NewError("No such atom", "TestConfigErrors")
	assert.Error(Te, err)
	assert.False(Te, IsConfigError(err))
}
