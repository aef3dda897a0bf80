package compute

import (
	"math"
	"testing"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/nbr"
	"github.com/rmera/gomolsim/potential"
	"github.com/rmera/gomolsim/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

//jitteredBox returns a box with n^3 atoms on a cubic grid of spacing a, each
//displaced randomly by up to jitter in each direction.
func jitteredBox(Te *testing.T, n int, a, jitter float64, seed uint64) (*molsim.Box, *molsim.Species) {
	b, err := space.NewCube(3, float64(n)*a)
	require.NoError(Te, err)
	box := molsim.NewBox(b, true)
	s := molsim.NewMonatomic(molsim.NewAtomType("A", 1, 0), 3)
	rng := rand.New(rand.NewSource(seed))
	r := space.NewVec(3)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				r[0], r[1], r[2] = float64(i)*a, float64(j)*a, float64(k)*a
				for d := range r {
					r[d] += jitter * (2*rng.Float64() - 1)
				}
				box.AddMolecule(s, r)
			}
		}
	}
	return box, s
}

func ljPair(Te *testing.T, box *molsim.Box, rc float64, cpus int) (*PairCompute, potential.Soft) {
	cells, err := nbr.NewCellManager(box, rc, 2)
	require.NoError(Te, err)
	o := DefaultOptions()
	o.Cpus(cpus)
	pc := NewPairCompute(cells, o)
	p := potential.NewTruncated(potential.NewLennardJones(1, 1), rc)
	require.NoError(Te, pc.SetPotential(box.TypeByIndex(0), box.TypeByIndex(0), p))
	return pc, p
}

func assertMatrixInDelta(Te *testing.T, want, got *space.Matrix, delta float64) {
	require.Equal(Te, want.NVecs(), got.NVecs())
	for k, v := range want.RawData() {
		if math.Abs(v-got.RawData()[k]) > delta {
			Te.Fatalf("element %d differs: want %g, got %g", k, v, got.RawData()[k])
		}
	}
}

func TestPairMatchesBruteForce(Te *testing.T) {
	box, _ := jitteredBox(Te, 6, 1.2, 0.15, 1)
	for _, cpus := range []int{1, 3, 8} {
		pc, p := ljPair(Te, box, 2.5, cpus)
		u := pc.ComputeAll(true)
		bu, bw, bf := BruteForce(box, p)
		assert.InDelta(Te, bu, u, 1e-9*math.Abs(bu), "cpus=%d", cpus)
		assert.InDelta(Te, bw, pc.Virial(), 1e-9*math.Abs(bw), "cpus=%d", cpus)
		assertMatrixInDelta(Te, bf, pc.Forces(), 1e-8)
	}
}

func TestAtomsEnergyCountsOnce(Te *testing.T) {
	box, _ := jitteredBox(Te, 5, 1.2, 0.2, 2)
	pc, p := ljPair(Te, box, 2.5, 1)
	total := pc.ComputeAll(false)
	sum := 0.0
	for i := 0; i < box.NAtoms(); i++ {
		sum += pc.ComputeAtoms([]int{i})
	}
	assert.InDelta(Te, 2*total, sum, 1e-9*math.Abs(total))
	i, j := 0, 1
	dr := space.NewVec(3)
	dr.Ev1Mv2(box.Position(j), box.Position(i))
	box.Boundary().NearestImage(dr)
	uij := p.U(dr.Squared())
	want := pc.ComputeAtoms([]int{i}) + pc.ComputeAtoms([]int{j}) - uij
	assert.InDelta(Te, want, pc.ComputeAtoms([]int{i, j}), 1e-10)
}

func TestIncrementalMatchesFull(Te *testing.T) {
	box, _ := jitteredBox(Te, 6, 1.15, 0.1, 3)
	pc, _ := ljPair(Te, box, 3, 1)
	sum := NewSum(box, pc)
	u := sum.ComputeAll(false)
	rng := rand.New(rand.NewSource(4))
	for k := 0; k < 200; k++ {
		i := rng.Intn(box.NAtoms())
		old := sum.ComputeAtoms([]int{i})
		r := box.Position(i)
		for d := range r {
			r[d] += 0.15 * (2*rng.Float64() - 1)
		}
		box.Boundary().CentralImage(r)
		sum.UpdateAtom(i)
		u += sum.ComputeAtoms([]int{i}) - old
	}
	assert.InDelta(Te, sum.ComputeAll(false), u, 1e-8)
	fresh, _ := ljPair(Te, box, 3, 1)
	assert.InDelta(Te, fresh.ComputeAll(false), u, 1e-8)
}

func TestForcesAreGradient(Te *testing.T) {
	box, _ := jitteredBox(Te, 4, 1.3, 0.2, 5)
	pot := potential.NewForceShifted(potential.NewLennardJones(1, 1), 2.5)
	cells, err := nbr.NewCellManager(box, 2.5, 1)
	require.NoError(Te, err)
	pc := NewPairCompute(cells)
	require.NoError(Te, pc.SetPotential(box.TypeByIndex(0), box.TypeByIndex(0), pot))
	pc.ComputeAll(true)
	f := pc.Forces().Clone()
	h := 1e-5
	for _, i := range []int{0, 7, 33} {
		for d := 0; d < 3; d++ {
			r := box.Position(i)
			r[d] += h
			up := pc.ComputeAll(false)
			r[d] -= 2 * h
			down := pc.ComputeAll(false)
			r[d] += h
			assert.InDelta(Te, -(up-down)/(2*h), f.At(i, d), 1e-4)
		}
	}
}

func TestOverlap(Te *testing.T) {
	box, _ := jitteredBox(Te, 4, 1.5, 0, 6)
	cells, err := nbr.NewCellManager(box, 1.5, 1)
	require.NoError(Te, err)
	pc := NewPairCompute(cells)
	require.NoError(Te, pc.SetPotential(box.TypeByIndex(0), box.TypeByIndex(0), potential.NewHardSphere(1)))
	assert.Equal(Te, 0.0, pc.ComputeAll(false))
	box.Position(1).E(box.Position(0))
	box.Position(1)[0] += 0.5
	pc.AtomMoved(1)
	u := pc.ComputeAll(false)
	assert.True(Te, IsOverlap(u))
	assert.True(Te, math.IsInf(u, 1))
	assert.True(Te, IsOverlap(pc.ComputeAtoms([]int{1})))
	assert.False(Te, IsOverlap(pc.ComputeAtoms([]int{5})))
	assert.True(Te, IsOverlap(math.NaN()))
}

func TestLRC(Te *testing.T) {
	box, _ := jitteredBox(Te, 5, 1.2, 0.1, 7)
	pc, _ := ljPair(Te, box, 2.5, 1)
	lrc := NewLRCFor(pc)
	n := float64(box.NAtoms())
	v := box.Boundary().Volume()
	rc := 2.5
	uTail := 16 * math.Pi * (1/(9*math.Pow(rc, 9)) - 1/(3*math.Pow(rc, 3)))
	want := n * (n - 1) / 2 / v * uTail
	assert.InDelta(Te, want, lrc.ComputeAll(false), 1e-12)
	assert.Greater(Te, lrc.Virial(), 0.0)
	assert.Nil(Te, lrc.Forces())
	removing := lrc.ComputeAtoms([]int{3})
	wantLess := (n - 1) * (n - 2) / 2 / v * uTail
	assert.InDelta(Te, want-wantLess, removing, 1e-12)

	shifted := NewLRC(box)
	assert.False(Te, shifted.Add(box.TypeByIndex(0), box.TypeByIndex(0), potential.NewForceShifted(potential.NewLennardJones(1, 1), 2.5)))
	assert.Equal(Te, 0.0, shifted.ComputeAll(false))
}

func TestMixtureMatchesBruteForce(Te *testing.T) {
	box, _ := jitteredBox(Te, 5, 1.3, 0.1, 8)
	b := molsim.NewMonatomic(molsim.NewAtomType("B", 2, 0), 3)
	//turn 40 of the A atoms into B atoms
	a := box.Species()[0]
	for k := 0; k < 40; k++ {
		m := box.Molecules(a)[k]
		r := box.Position(m.Atoms()[0]).Copy()
		box.RemoveMolecule(m, nil)
		box.AddMolecule(b, r)
	}
	ta, tb := box.TypeByIndex(0), box.TypeByIndex(1)
	ljA := potential.NewLennardJones(1, 1)
	ljB := potential.NewLennardJones(1.2, 0.5)
	rc := 3.0
	pots := map[[2]int]potential.Soft{
		{0, 0}: potential.NewTruncated(ljA, rc),
		{1, 1}: potential.NewTruncated(ljB, rc),
		{0, 1}: potential.NewTruncated(potential.LorentzBerthelot(ljA, ljB), rc),
	}
	cells, err := nbr.NewCellManager(box, rc, 2)
	require.NoError(Te, err)
	pc := NewPairCompute(cells)
	require.NoError(Te, pc.SetPotential(ta, ta, pots[[2]int{0, 0}]))
	require.NoError(Te, pc.SetPotential(tb, tb, pots[[2]int{1, 1}]))
	require.NoError(Te, pc.SetPotential(tb, ta, pots[[2]int{0, 1}]))
	want := 0.0
	dr := space.NewVec(3)
	for i := 0; i < box.NAtoms(); i++ {
		for j := i + 1; j < box.NAtoms(); j++ {
			dr.Ev1Mv2(box.Position(j), box.Position(i))
			box.Boundary().NearestImage(dr)
			ti, tj := box.TypeIndex(i), box.TypeIndex(j)
			if ti > tj {
				ti, tj = tj, ti
			}
			want += pots[[2]int{ti, tj}].U(dr.Squared())
		}
	}
	assert.InDelta(Te, want, pc.ComputeAll(false), 1e-9*math.Abs(want))
	assert.Equal(Te, pots[[2]int{0, 1}], pc.Potential(ta, tb))
}

func TestTooLongPotential(Te *testing.T) {
	box, _ := jitteredBox(Te, 4, 1.2, 0, 9)
	cells, err := nbr.NewCellManager(box, 2, 1)
	require.NoError(Te, err)
	pc := NewPairCompute(cells)
	err = pc.SetPotential(box.TypeByIndex(0), box.TypeByIndex(0), potential.NewTruncated(potential.NewLennardJones(1, 1), 2.2))
	require.Error(Te, err)
	assert.True(Te, molsim.IsConfigError(err))
}

func diatomicBox(Te *testing.T, nmol int, seed uint64) (*molsim.Box, *molsim.Species) {
	b, err := space.NewCube(3, 9)
	require.NoError(Te, err)
	box := molsim.NewBox(b)
	t := molsim.NewAtomType("O", 1, 0)
	conf, err := space.NewMatrix([]float64{-0.5, 0, 0, 0.5, 0, 0}, 3)
	require.NoError(Te, err)
	di, err := molsim.NewSpecies("O2", []*molsim.AtomType{t, t}, conf, molsim.Bond{I: 0, J: 1, Potential: potential.NewHarmonic(50, 1)})
	require.NoError(Te, err)
	rng := rand.New(rand.NewSource(seed))
	c := space.NewVec(3)
	for k := 0; k < nmol; k++ {
		for d := range c {
			c[d] = 9 * (rng.Float64() - 0.5)
		}
		m := box.AddMolecule(di, c)
		//stretch the bond a bit
		box.Position(m.Atoms()[1])[1] += 0.1 * rng.Float64()
	}
	return box, di
}

func TestMolecularSum(Te *testing.T) {
	box, di := diatomicBox(Te, 40, 10)
	t := box.TypeByIndex(0)
	soft := potential.NewTruncated(potential.NewSoftSphere(0.5, 1, 12), 3)
	cells, err := nbr.NewCellManager(box, 3, 1)
	require.NoError(Te, err)
	pc := NewPairCompute(cells)
	require.NoError(Te, pc.SetPotential(t, t, soft))
	bonds := NewBonding(box)
	sum := NewSum(box, pc, bonds, NewLRCFor(pc))
	u := sum.ComputeAll(true)

	//reference: all non-bonded pairs between different molecules plus the bonds
	want := 0.0
	dr := space.NewVec(3)
	for i := 0; i < box.NAtoms(); i++ {
		for j := i + 1; j < box.NAtoms(); j++ {
			dr.Ev1Mv2(box.Position(j), box.Position(i))
			box.Boundary().NearestImage(dr)
			if box.MoleculeOf(i) == box.MoleculeOf(j) {
				want += potential.NewHarmonic(50, 1).U(dr.Squared())
				continue
			}
			want += soft.U(dr.Squared())
		}
	}
	want += sum.Parts()[2].ComputeAll(false)
	assert.InDelta(Te, want, u, 1e-9*math.Abs(want))

	//forces of the sum are the gradient of the energy
	f := sum.Forces().Clone()
	h := 1e-5
	r := box.Position(5)
	r[2] += h
	up := sum.ComputeAll(false)
	r[2] -= 2 * h
	down := sum.ComputeAll(false)
	r[2] += h
	assert.InDelta(Te, -(up-down)/(2*h), f.At(5, 2), 1e-4*math.Max(1, math.Abs(f.At(5, 2))))

	//the energy of a molecule, from the atoms, is what is lost when deleting it
	m := box.Molecules(di)[3]
	um := sum.ComputeAtoms(m.Atoms())
	sum.DeleteMolecule(m)
	after := sum.ComputeAll(false)
	assert.InDelta(Te, u-um, after, 1e-8)
	m2 := sum.InsertMolecule(di, space.Vec{0.3, -4.4, 4.4})
	assert.InDelta(Te, after+sum.ComputeAtoms(m2.Atoms()), sum.ComputeAll(false), 1e-8)
}

func TestListMatchesCells(Te *testing.T) {
	box, _ := jitteredBox(Te, 6, 1.2, 0.15, 11)
	pc, p := ljPair(Te, box, 2.5, 1)
	list, err := nbr.NewList(box, 2.5, 1.2, 1)
	require.NoError(Te, err)
	o := DefaultOptions()
	o.Cpus(2)
	lc := NewListCompute(list, o)
	require.NoError(Te, lc.SetPotential(box.TypeByIndex(0), box.TypeByIndex(0), p))
	assert.InDelta(Te, pc.ComputeAll(true), lc.ComputeAll(true), 1e-9)
	assertMatrixInDelta(Te, pc.Forces(), lc.Forces(), 1e-9)
	rng := rand.New(rand.NewSource(12))
	for step := 0; step < 5; step++ {
		pos := box.Positions()
		for i := 0; i < pos.NVecs(); i++ {
			r := pos.VecView(i)
			for d := range r {
				r[d] += 0.08 * (2*rng.Float64() - 1)
			}
			box.Boundary().CentralImage(r)
		}
		pc.Cells().AssignAll()
		assert.InDelta(Te, pc.ComputeAll(false), lc.ComputeAll(false), 1e-9)
		assert.InDelta(Te, pc.ComputeAtoms([]int{4}), lc.ComputeAtoms([]int{4}), 1e-9)
	}
	assert.Greater(Te, list.NumUpdates(), 1)
}

//randomBox returns a box of side l with n atoms placed at random, no two of
//them closer than dmin.
func randomBox(Te *testing.T, n int, l, dmin float64, seed uint64) *molsim.Box {
	b, err := space.NewCube(3, l)
	require.NoError(Te, err)
	box := molsim.NewBox(b)
	s := molsim.NewMonatomic(molsim.NewAtomType("A", 1, 0), 3)
	rng := rand.New(rand.NewSource(seed))
	r := space.NewVec(3)
	dr := space.NewVec(3)
	for box.NAtoms() < n {
		for d := range r {
			r[d] = l * (rng.Float64() - 0.5)
		}
		ok := true
		for j := 0; j < box.NAtoms() && ok; j++ {
			dr.Ev1Mv2(box.Position(j), r)
			box.Boundary().NearestImage(dr)
			ok = dr.Squared() >= dmin*dmin
		}
		if ok {
			box.AddMolecule(s, r)
		}
	}
	return box
}

func TestBruteForceSizes(Te *testing.T) {
	cases := []struct {
		n int
		l float64
	}{{4, 6}, {50, 6}, {500, 10}}
	for _, c := range cases {
		box := randomBox(Te, c.n, c.l, 0.8, uint64(c.n))
		for _, cpus := range []int{1, 4} {
			pc, p := ljPair(Te, box, 2.5, cpus)
			u := pc.ComputeAll(true)
			bu, bw, bf := BruteForce(box, p)
			assert.InDelta(Te, bu, u, 1e-9*math.Max(1, math.Abs(bu)), "n=%d cpus=%d", c.n, cpus)
			assert.InDelta(Te, bw, pc.Virial(), 1e-9*math.Max(1, math.Abs(bw)), "n=%d cpus=%d", c.n, cpus)
			assertMatrixInDelta(Te, bf, pc.Forces(), 1e-7)
		}
	}
}

func TestComputeAllReassignsCells(Te *testing.T) {
	box, _ := jitteredBox(Te, 8, 1.2, 0.1, 13)
	pc, p := ljPair(Te, box, 2.5, 1)
	for _, n := range pc.Cells().Dims() {
		require.Greater(Te, n, 5)
	}
	pc.ComputeAll(false)
	//move every atom about a cell without telling the compute
	rng := rand.New(rand.NewSource(14))
	pos := box.Positions()
	for i := 0; i < pos.NVecs(); i++ {
		r := pos.VecView(i)
		for d := range r {
			r[d] += 1.0 * (2*rng.Float64() - 1)
		}
		box.Boundary().CentralImage(r)
	}
	bu, _, bf := BruteForce(box, p)
	assert.InDelta(Te, bu, pc.ComputeAll(true), 1e-9*math.Max(1, math.Abs(bu)))
	assertMatrixInDelta(Te, bf, pc.Forces(), 1e-7)
}

func TestListComputeMonteCarlo(Te *testing.T) {
	box, _ := jitteredBox(Te, 6, 1.2, 0.1, 15)
	list, err := nbr.NewList(box, 2.5, 1.2, 1)
	require.NoError(Te, err)
	lc := NewListCompute(list)
	p := potential.NewTruncated(potential.NewLennardJones(1, 1), 2.5)
	require.NoError(Te, lc.SetPotential(box.TypeByIndex(0), box.TypeByIndex(0), p))
	sum := NewSum(box, lc)
	u := sum.ComputeAll(false)
	builds := list.NumUpdates()
	rng := rand.New(rand.NewSource(16))
	old := space.NewVec(3)
	for k := 0; k < 4000; k++ {
		i := rng.Intn(box.NAtoms())
		uOld := sum.ComputeAtoms([]int{i})
		r := box.Position(i)
		old.E(r)
		for d := range r {
			r[d] += 0.2 * (2*rng.Float64() - 1)
		}
		box.Boundary().CentralImage(r)
		sum.UpdateAtom(i)
		uNew := sum.ComputeAtoms([]int{i})
		if uNew-uOld > 1 {
			r.E(old)
			sum.UpdateAtom(i)
			continue
		}
		u += uNew - uOld
	}
	assert.Greater(Te, list.NumUpdates(), builds)
	bu, _, _ := BruteForce(box, p)
	assert.InDelta(Te, bu, u, 1e-7*math.Abs(bu))
}
