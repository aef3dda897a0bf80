package simulation

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/rmera/gomolsim/compute"
	"github.com/rmera/gomolsim/params"
	"github.com/rmera/gomolsim/potential"
	"github.com/rmera/gomolsim/traj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func small(mode string) *params.Params {
	P := params.Default()
	P.Mode = mode
	P.NumAtoms = 108
	P.Cutoff = 2.5
	P.Steps = 500
	P.Equilibration = 200
	P.SampleInterval = 5
	P.BlockSize = 10
	return P
}

func TestLJMD(Te *testing.T) {
	P := small("md")
	P.Trajectory = filepath.Join(Te.TempDir(), "md.stf")
	P.TrajectoryPeriod = 50
	S, err := New(P)
	require.NoError(Te, err)
	require.NotNil(Te, S.MD)
	R, err := S.Run()
	require.NoError(Te, err)
	assert.EqualValues(Te, 500, R.Steps)
	assert.Len(Te, R.EnergyTrace, 100)
	assert.InDelta(Te, 1.2, R.Temperature, 0.3)
	assert.True(Te, R.Energy > -5 && R.Energy < -2.5, "U/N %g", R.Energy)
	assert.False(Te, math.IsNaN(R.Pressure))
	assert.Greater(Te, R.Cv, 0.0)

	r, _, err := traj.New(P.Trajectory)
	require.NoError(Te, err)
	frames := 0
	for {
		_, err := r.Next(nil)
		if traj.IsLastFrame(err) {
			break
		}
		require.NoError(Te, err)
		frames++
	}
	assert.Equal(Te, 10, frames)

	//a frame of the run is a valid starting point.
	Q := small("mc")
	Q.Initial = P.Trajectory
	Q.Steps = 20
	Q.Equilibration = 0
	S2, err := New(Q)
	require.NoError(Te, err)
	assert.InDelta(Te, S.Box.Boundary().Volume(), S2.Box.Boundary().Volume(), 1e-9)
}

func TestLJMC(Te *testing.T) {
	P := small("mc")
	P.Steps = 200
	P.Equilibration = 50
	P.SampleInterval = 1
	S, err := New(P)
	require.NoError(Te, err)
	require.NotNil(Te, S.MC)
	R, err := S.Run()
	require.NoError(Te, err)
	assert.EqualValues(Te, 200*108, R.Steps)
	assert.Len(Te, R.EnergyTrace, 200)
	assert.Equal(Te, 1.2, R.Temperature)
	assert.True(Te, R.Energy > -5 && R.Energy < -2.5, "U/N %g", R.Energy)
	//the energy tracked by the moves matches a fresh computation.
	assert.InDelta(Te, S.Compute.ComputeAll(false), S.MC.Energy(), 1e-6)
	assert.Greater(Te, R.Cv, 0.0)
}

func TestLJMCWithList(Te *testing.T) {
	P := small("mc")
	P.NeighborList = 1.2
	P.Steps = 100
	P.Equilibration = 20
	S, err := New(P)
	require.NoError(Te, err)
	_, ok := S.Compute.Parts()[0].(*compute.ListCompute)
	require.True(Te, ok)
	_, err = S.Run()
	require.NoError(Te, err)
	lj := potential.NewTruncation(potential.NewLennardJones(1, 1), P.Cutoff, potential.Hard)
	u, _, _ := compute.BruteForce(S.Box, lj)
	assert.InDelta(Te, u, S.MC.Energy(), 1e-6*math.Abs(u))
}

//The default system, 500 atoms with a cutoff of 3, has more cells than one
//atom can reach. Without a thermostat the energy is conserved and the pair
//energy matches the double loop.
func TestDefaultSizeMD(Te *testing.T) {
	P := params.Default()
	P.Thermostat = ""
	P.Truncation = "force-shifted"
	P.TimeStep = 0.003
	P.Steps = 400
	P.Equilibration = 0
	S, err := New(P)
	require.NoError(Te, err)
	e0 := S.MD.KineticEnergy() + S.MD.PotentialEnergy()
	maxDrift := 0.0
	S.MD.Listeners().Add(10, func(int64) {
		e := S.MD.KineticEnergy() + S.MD.PotentialEnergy()
		maxDrift = math.Max(maxDrift, math.Abs(e-e0))
	})
	_, err = S.Run()
	require.NoError(Te, err)
	assert.Less(Te, maxDrift/math.Abs(e0), 1e-3)
	lj := potential.NewTruncation(potential.NewLennardJones(1, 1), P.Cutoff, potential.ForceShifted)
	u, _, _ := compute.BruteForce(S.Box, lj)
	assert.InDelta(Te, u, S.Compute.Parts()[0].ComputeAll(false), 1e-9*math.Abs(u))
}

func TestNPTRuns(Te *testing.T) {
	P := small("mc")
	P.Pressure = 1
	P.Steps = 20
	P.Equilibration = 0
	S, err := New(P)
	require.NoError(Te, err)
	R, err := S.Run()
	require.NoError(Te, err)
	assert.EqualValues(Te, 20*108, R.Steps)
	assert.InDelta(Te, S.Compute.ComputeAll(false), S.MC.Energy(), 1e-6)
}

func TestHalt(Te *testing.T) {
	S, err := New(small("md"))
	require.NoError(Te, err)
	S.Halt()
	R, err := S.Run()
	require.NoError(Te, err)
	assert.EqualValues(Te, 0, R.Steps)
	assert.Equal(Te, ExitPressure, R.Check(S.P))
}

func TestCheck(Te *testing.T) {
	P := params.Default()
	good := Results{Pressure: 0.47, PressureErr: 0.01, Energy: -3.81, EnergyErr: 0.005, Cv: 0.9}
	assert.Equal(Te, ExitOK, good.Check(P))
	cases := []struct {
		name string
		mod  func(R *Results)
		code int
	}{
		{"pressure", func(R *Results) { R.Pressure = 0.6 }, ExitPressure},
		{"pressure NaN", func(R *Results) { R.Pressure = math.NaN() }, ExitPressure},
		{"energy", func(R *Results) { R.Energy = -3.7 }, ExitEnergy},
		{"cv", func(R *Results) { R.Cv = 5 }, ExitCv},
		//a large error widens the band
		{"wide band", func(R *Results) { R.Pressure = 0.6; R.PressureErr = 0.05 }, ExitOK},
	}
	for _, c := range cases {
		R := good
		c.mod(&R)
		assert.Equal(Te, c.code, R.Check(P), c.name)
	}
}

func TestBadParams(Te *testing.T) {
	P := small("md")
	P.Cutoff = 4 //larger than half the box
	_, err := New(P)
	assert.Error(Te, err)
	P = small("mc")
	P.Initial = filepath.Join(Te.TempDir(), "missing.stf")
	_, err = New(P)
	assert.Error(Te, err)
}
