package integrator_test

import (
	"math"
	"testing"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/compute"
	"github.com/rmera/gomolsim/integrator"
	"github.com/rmera/gomolsim/lattice"
	"github.com/rmera/gomolsim/nbr"
	"github.com/rmera/gomolsim/potential"
	"github.com/rmera/gomolsim/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

//oscillator is a one-dimensional particle in a harmonic well, u=x^2/2.
type oscillator struct {
	x, xOld float64
	rng     *rand.Rand
	tracker *integrator.StepTracker
}

func (O *oscillator) DoTrial() bool {
	O.xOld = O.x
	O.x += O.tracker.Step() * (2*O.rng.Float64() - 1)
	return true
}

func (O *oscillator) EnergyChange() float64 { return 0.5 * (O.x*O.x - O.xOld*O.xOld) }

func (O *oscillator) Chi(T float64) float64 { return math.Exp(-O.EnergyChange() / T) }

func (O *oscillator) Accept()                           {}
func (O *oscillator) Reject()                           { O.x = O.xOld }
func (O *oscillator) Tracker() *integrator.StepTracker { return O.tracker }
func (O *oscillator) Name() string                      { return "oscillator" }

//fixedChi is a move with a constant acceptance probability.
type fixedChi struct {
	chi               float64
	accepted, rejects int
}

func (F *fixedChi) DoTrial() bool                    { return true }
func (F *fixedChi) Chi(T float64) float64            { return F.chi }
func (F *fixedChi) EnergyChange() float64            { return 1 }
func (F *fixedChi) Accept()                          { F.accepted++ }
func (F *fixedChi) Reject()                          { F.rejects++ }
func (F *fixedChi) Tracker() *integrator.StepTracker { return nil }
func (F *fixedChi) Name() string                     { return "fixed" }

func TestMetropolisOscillator(Te *testing.T) {
	rng := rand.New(rand.NewSource(11))
	o := &oscillator{rng: rng, tracker: integrator.NewStepTracker(1, 0.01, 10)}
	mc := integrator.NewMC(compute.NewSum(molsim.NewBox(mustCube(Te, 1, 1))), 2, rng)
	require.NoError(Te, mc.AddMove(o, 1))
	mc.Run(20000)
	mc.SetAdjustStepSize(false)
	x2, n := 0.0, 0
	mc.Listeners().Add(1, func(int64) {
		x2 += o.x * o.x
		n++
	})
	assert.EqualValues(Te, 300000, mc.Run(300000))
	//<x^2> = T for a harmonic well.
	assert.InDelta(Te, 2.0, x2/float64(n), 0.1)
	assert.InDelta(Te, 0.5, o.tracker.AcceptanceRatio(), 0.1)
}

func TestAcceptanceLimits(Te *testing.T) {
	rng := rand.New(rand.NewSource(1))
	mc := integrator.NewMC(compute.NewSum(molsim.NewBox(mustCube(Te, 1, 1))), 1, rng)
	never := &fixedChi{chi: 0}
	always := &fixedChi{chi: 3}
	require.NoError(Te, mc.AddMove(never, 1))
	require.NoError(Te, mc.AddMove(always, 1))
	require.Error(Te, mc.AddMove(&fixedChi{}, 0))
	trials := map[integrator.Move]int{}
	mc.OnTrial(func(m integrator.Move, acc bool) { trials[m]++ })
	mc.Run(2000)
	assert.Equal(Te, 0, never.accepted)
	assert.Equal(Te, trials[never], never.rejects)
	assert.Equal(Te, 0, always.rejects)
	assert.Equal(Te, trials[always], always.accepted)
	assert.InDelta(Te, 1000, trials[always], 150)
	assert.InDelta(Te, float64(always.accepted), mc.Energy(), 1e-12)
	assert.EqualValues(Te, 2000, mc.StepCount())
}

func TestHalt(Te *testing.T) {
	mc := integrator.NewMC(compute.NewSum(molsim.NewBox(mustCube(Te, 1, 1))), 1, rand.New(rand.NewSource(1)))
	require.NoError(Te, mc.AddMove(&fixedChi{chi: 1}, 1))
	mc.Listeners().Add(10, func(step int64) {
		if step == 30 {
			mc.Halt()
		}
	})
	assert.EqualValues(Te, 30, mc.Run(100))
	assert.EqualValues(Te, 0, mc.Run(100))
}

func TestStepTracker(Te *testing.T) {
	S := integrator.NewStepTracker(1, 0.1, 2)
	S.SetInterval(10)
	for i := 0; i < 9; i++ {
		S.Update(true)
	}
	assert.Equal(Te, 1.0, S.Step(), "no adjustment inside a block")
	S.Update(true)
	assert.InDelta(Te, 1.05, S.Step(), 1e-12)
	for i := 0; i < 10; i++ {
		S.Update(false)
	}
	//direction flipped: the factor is now sqrt(1.05) and the blocks twice as long.
	assert.InDelta(Te, 1.05/math.Sqrt(1.05), S.Step(), 1e-12)
	assert.Equal(Te, 20, S.Interval())
	S.SetAdjusting(false)
	for i := 0; i < 100; i++ {
		S.Update(true)
	}
	assert.InDelta(Te, math.Sqrt(1.05), S.Step(), 1e-12)
	S.SetAdjusting(true)
	for i := 0; i < 5000; i++ {
		S.Update(true)
	}
	assert.Equal(Te, 2.0, S.Step(), "step is clamped")
	assert.InDelta(Te, 5110.0/5120.0, S.AcceptanceRatio(), 1e-12)
}

func mustCube(Te *testing.T, dim int, l float64) space.Boundary {
	b, err := space.NewCube(dim, l)
	require.NoError(Te, err)
	return b
}

//ljCrystal returns a dynamic FCC box of n^3*4 LJ atoms at density rho, with a
//force-shifted potential truncated at rc.
func ljCrystal(Te *testing.T, n int, rho, rc float64) (*molsim.Box, compute.Compute) {
	box := molsim.NewBox(mustCube(Te, 3, 1), true)
	box.SetNMolecules(molsim.NewMonatomic(molsim.NewAtomType("Ar", 1, 0), 3), 4*n*n*n)
	require.NoError(Te, lattice.Inflate(box, rho))
	require.NoError(Te, lattice.Fill(box, lattice.FCC()))
	cells, err := nbr.NewCellManager(box, rc, 2)
	require.NoError(Te, err)
	pc := compute.NewPairCompute(cells)
	t := box.TypeByIndex(0)
	require.NoError(Te, pc.SetPotential(t, t, potential.NewForceShifted(potential.NewLennardJones(1, 1), rc)))
	return box, pc
}

func TestVerletEnergyConservation(Te *testing.T) {
	box, pc := ljCrystal(Te, 3, 0.65, 2.5)
	md, err := integrator.NewVelocityVerlet(pc, box, 0.004, 1.0, rand.New(rand.NewSource(5)))
	require.NoError(Te, err)
	require.NoError(Te, md.Reset())
	md.RandomizeVelocities()
	assert.InDelta(Te, 1.0, md.CurrentTemperature(), 1e-9)
	p := space.NewVec(3)
	for i := 0; i < box.NAtoms(); i++ {
		p.PE(box.Velocity(i))
	}
	assert.InDelta(Te, 0, p.Norm(), 1e-9)
	e0 := md.KineticEnergy() + md.PotentialEnergy()
	maxDrift := 0.0
	md.Listeners().Add(10, func(int64) {
		e := md.KineticEnergy() + md.PotentialEnergy()
		maxDrift = math.Max(maxDrift, math.Abs(e-e0))
	})
	md.Run(2000)
	assert.Less(Te, maxDrift/math.Abs(e0), 5e-3)
	assert.InDelta(Te, 8.0, md.CurrentTime(), 1e-9)
	//the momentum is conserved too.
	p.Zero()
	for i := 0; i < box.NAtoms(); i++ {
		p.PE(box.Velocity(i))
	}
	assert.InDelta(Te, 0, p.Norm(), 1e-8)
}

func TestThermostats(Te *testing.T) {
	for _, th := range []integrator.Thermostat{integrator.VelocityScaling, integrator.Andersen, integrator.AndersenSingle} {
		box, pc := ljCrystal(Te, 3, 0.65, 2.5)
		md, err := integrator.NewVelocityVerlet(pc, box, 0.004, 1.2, rand.New(rand.NewSource(8)))
		require.NoError(Te, err)
		interval := int64(10)
		if th == integrator.AndersenSingle {
			interval = 1
		}
		require.NoError(Te, md.SetThermostat(th, interval))
		md.SetIsothermal(true)
		require.NoError(Te, md.Reset())
		md.RandomizeVelocities()
		md.Run(2000)
		sum, n := 0.0, 0
		md.Listeners().Add(interval, func(int64) {
			sum += md.CurrentTemperature()
			n++
			if th == integrator.VelocityScaling {
				assert.InDelta(Te, 1.2, md.CurrentTemperature(), 1e-9)
			}
		})
		md.Run(4000)
		assert.InDelta(Te, 1.2, sum/float64(n), 0.15, th.String())
	}
	_, err := integrator.ParseThermostat("nose-hoover")
	assert.True(Te, molsim.IsConfigError(err))
}

//ljLarge returns a dynamic FCC box of 500 LJ atoms at density 0.65 with a
//force-shifted potential truncated at rc, computed with cells or, if factor
//is larger than 1, with a Verlet list of that range factor.
func ljLarge(Te *testing.T, rc, factor float64) (*molsim.Box, compute.Compute, potential.Soft, *nbr.List) {
	box := molsim.NewBox(mustCube(Te, 3, 1), true)
	box.SetNMolecules(molsim.NewMonatomic(molsim.NewAtomType("Ar", 1, 0), 3), 500)
	require.NoError(Te, lattice.Inflate(box, 0.65))
	require.NoError(Te, lattice.Fill(box, lattice.FCC()))
	t := box.TypeByIndex(0)
	p := potential.NewForceShifted(potential.NewLennardJones(1, 1), rc)
	if factor > 1 {
		list, err := nbr.NewList(box, rc, factor, 2)
		require.NoError(Te, err)
		lc := compute.NewListCompute(list)
		require.NoError(Te, lc.SetPotential(t, t, p))
		return box, lc, p, list
	}
	cells, err := nbr.NewCellManager(box, rc, 2)
	require.NoError(Te, err)
	for _, n := range cells.Dims() {
		require.Greater(Te, n, 5)
	}
	pc := compute.NewPairCompute(cells)
	require.NoError(Te, pc.SetPotential(t, t, p))
	return box, pc, p, nil
}

func TestVerletMatchesBruteForce(Te *testing.T) {
	for _, factor := range []float64{0, 1.2} {
		box, c, p, list := ljLarge(Te, 2.5, factor)
		md, err := integrator.NewVelocityVerlet(c, box, 0.004, 1.2, rand.New(rand.NewSource(21)))
		require.NoError(Te, err)
		require.NoError(Te, md.Reset())
		md.RandomizeVelocities()
		checks := 0
		md.Listeners().Add(100, func(int64) {
			u, _, _ := compute.BruteForce(box, p)
			assert.InDelta(Te, u, md.PotentialEnergy(), 1e-9*math.Abs(u), "factor %g", factor)
			checks++
		})
		md.Run(1000)
		assert.Equal(Te, 10, checks)
		if list != nil {
			assert.Greater(Te, list.NumUpdates(), 3)
			assert.Equal(Te, 0, list.NumUnsafe())
		}
	}
}

func TestLJEnergyDrift(Te *testing.T) {
	box, c, _, _ := ljLarge(Te, 3, 0)
	md, err := integrator.NewVelocityVerlet(c, box, 0.003, 1.2, rand.New(rand.NewSource(22)))
	require.NoError(Te, err)
	require.NoError(Te, md.Reset())
	md.RandomizeVelocities()
	e0 := md.KineticEnergy() + md.PotentialEnergy()
	maxDrift := 0.0
	md.Listeners().Add(10, func(int64) {
		e := md.KineticEnergy() + md.PotentialEnergy()
		maxDrift = math.Max(maxDrift, math.Abs(e-e0))
	})
	md.Run(3000)
	assert.Less(Te, maxDrift/math.Abs(e0), 1e-3)
}

func TestStepBeforeReset(Te *testing.T) {
	box, pc := ljCrystal(Te, 2, 0.65, 1.5)
	md, err := integrator.NewVelocityVerlet(pc, box, 0.004, 1.0, rand.New(rand.NewSource(23)))
	require.NoError(Te, err)
	assert.PanicsWithValue(Te, integrator.ErrNotReset, func() { md.DoStep() })
	require.NoError(Te, md.Reset())
	assert.NotPanics(Te, func() { md.DoStep() })
}

func TestVerletNeedsDynamicBox(Te *testing.T) {
	box := molsim.NewBox(mustCube(Te, 3, 5))
	_, err := integrator.NewVelocityVerlet(compute.NewSum(box), box, 0.01, 1, rand.New(rand.NewSource(1)))
	assert.True(Te, molsim.IsConfigError(err))
}
