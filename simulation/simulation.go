/*
 * simulation.go, part of gomolsim.
 *
 * Copyright 2024 The gomolsim authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package simulation assembles complete Lennard-Jones simulations, molecular
//dynamics or Monte Carlo, from a params.Params, runs them and checks the
//averages against reference values.
package simulation

import (
	"fmt"
	"log"
	"math"
	"strings"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/compute"
	"github.com/rmera/gomolsim/integrator"
	"github.com/rmera/gomolsim/lattice"
	"github.com/rmera/gomolsim/mcmove"
	"github.com/rmera/gomolsim/meter"
	"github.com/rmera/gomolsim/nbr"
	"github.com/rmera/gomolsim/params"
	"github.com/rmera/gomolsim/potential"
	"github.com/rmera/gomolsim/space"
	"github.com/rmera/gomolsim/traj"
	"golang.org/x/exp/rand"
)

//Exit codes returned by Check.
const (
	ExitOK       = 0
	ExitPressure = 1
	ExitEnergy   = 2
	ExitCv       = 3
)

//stepper is what the two integrators have in common.
type stepper interface {
	Reset() error
	Run(steps int64) int64
	Halt()
	Halted() bool
	Listeners() *integrator.Listeners
}

//Sim is a Lennard-Jones simulation.
type Sim struct {
	P       *params.Params
	Box     *molsim.Box
	Compute *compute.Sum
	MD      *integrator.VelocityVerlet //nil for Monte Carlo
	MC      *integrator.MC             //nil for molecular dynamics
	rng     *rand.Rand

	integ    stepper
	pe       *meter.Accumulator //total potential energy
	pressure *meter.Accumulator
	temp     *meter.Accumulator
	peMeter  meter.Meter
	pMeter   meter.Meter
	tMeter   meter.Meter
	sampling bool
	writer   *traj.Writer
}

//Results are the averages of a run.
type Results struct {
	Steps             int64
	Pressure          float64
	PressureErr       float64
	Energy            float64 //potential energy per atom
	EnergyErr         float64
	Cv                float64 //configurational heat capacity per atom
	CvErr             float64
	Temperature       float64
	EnergyCorrelation float64
	//PressureTrace and EnergyTrace are the sampled values, kept for plots.
	PressureTrace []float64
	EnergyTrace   []float64
}

//New builds the simulation given by P.Mode.
func New(P *params.Params) (*Sim, error) {
	if strings.ToLower(P.Mode) == "mc" {
		return NewLJMC(P)
	}
	return NewLJMD(P)
}

//setup builds the box, the initial configuration and the energy.
func setup(P *params.Params, dynamic bool) (*Sim, error) {
	if err := P.Check(); err != nil {
		return nil, molsim.ErrDecorate(err, "setup")
	}
	S := &Sim{P: P, rng: rand.New(rand.NewSource(P.Seed))}
	b, err := space.NewCube(P.Dim, 1)
	if err != nil {
		return nil, molsim.ErrDecorate(err, "setup")
	}
	S.Box = molsim.NewBox(b, dynamic)
	ar := molsim.NewAtomType("LJ", 1, 0)
	S.Box.SetNMolecules(molsim.NewMonatomic(ar, P.Dim), P.NumAtoms)
	if err := S.initialConfiguration(); err != nil {
		return nil, molsim.ErrDecorate(err, "setup")
	}
	mode, _ := potential.ParseTruncation(P.Truncation)
	lj := potential.NewTruncation(potential.NewLennardJones(1, 1), P.Cutoff, mode)
	opts := compute.DefaultOptions()
	opts.Cpus(P.Cpus)
	var pair compute.Compute
	if P.NeighborList > 1 {
		list, err := nbr.NewList(S.Box, P.Cutoff, P.NeighborList, P.CellRange)
		if err != nil {
			return nil, molsim.ErrDecorate(err, "setup")
		}
		lc := compute.NewListCompute(list, opts)
		if err := lc.SetPotential(ar, ar, lj); err != nil {
			return nil, molsim.ErrDecorate(err, "setup")
		}
		pair = lc
	} else {
		cells, err := nbr.NewCellManager(S.Box, P.Cutoff, P.CellRange)
		if err != nil {
			return nil, molsim.ErrDecorate(err, "setup")
		}
		pc := compute.NewPairCompute(cells, opts)
		if err := pc.SetPotential(ar, ar, lj); err != nil {
			return nil, molsim.ErrDecorate(err, "setup")
		}
		pair = pc
	}
	S.Compute = compute.NewSum(S.Box, pair)
	if P.Tail {
		lrc := compute.NewLRC(S.Box)
		if lrc.Add(ar, ar, lj) {
			S.Compute.Add(lrc)
		} else {
			log.Printf("simulation: the %s truncation has no tail correction", P.Truncation)
		}
	}
	return S, nil
}

func (S *Sim) initialConfiguration() error {
	P := S.P
	if P.Initial != "" {
		c, b, _, err := traj.ReadConfiguration(P.Initial)
		if err != nil {
			return molsim.ErrDecorate(err, "initialConfiguration")
		}
		if c.NVecs() != S.Box.NAtoms() || c.Dim() != S.Box.Dim() {
			return molsim.ConfigError(fmt.Sprintf("%s: %s has %d atoms in %d dimensions", molsim.ErrDimensionMismatch, P.Initial, c.NVecs(), c.Dim()), "initialConfiguration")
		}
		if b == nil {
			if err := lattice.Inflate(S.Box, P.Density); err != nil {
				return err
			}
		} else {
			S.Box.SetBoundary(b)
		}
		S.Box.Positions().Copy(c)
		for i := 0; i < S.Box.NAtoms(); i++ {
			S.Box.Boundary().CentralImage(S.Box.Position(i))
		}
		return nil
	}
	var L *lattice.Lattice
	switch strings.ToLower(P.Lattice) {
	case "bcc":
		L = lattice.BCC()
	case "sc":
		L = lattice.SimpleCubic()
	case "square":
		L = lattice.Square()
	case "triangular":
		L = lattice.Triangular()
	default:
		L = lattice.FCC()
	}
	if err := lattice.Inflate(S.Box, P.Density); err != nil {
		return err
	}
	return lattice.Fill(S.Box, L)
}

//NewLJMD returns a velocity-Verlet simulation, with velocities drawn at the
//temperature of P.
func NewLJMD(P *params.Params) (*Sim, error) {
	S, err := setup(P, true)
	if err != nil {
		return nil, molsim.ErrDecorate(err, "NewLJMD")
	}
	S.MD, err = integrator.NewVelocityVerlet(S.Compute, S.Box, P.TimeStep, P.Temperature, S.rng)
	if err != nil {
		return nil, molsim.ErrDecorate(err, "NewLJMD")
	}
	if P.Thermostat != "" {
		t, _ := integrator.ParseThermostat(P.Thermostat)
		if err := S.MD.SetThermostat(t, P.ThermostatInterval); err != nil {
			return nil, molsim.ErrDecorate(err, "NewLJMD")
		}
		S.MD.SetIsothermal(true)
	}
	S.integ = S.MD
	if err := S.MD.Reset(); err != nil {
		return nil, molsim.ErrDecorate(err, "NewLJMD")
	}
	S.MD.RandomizeVelocities()
	S.peMeter = meter.NewFunc("potential energy", S.MD.PotentialEnergy)
	pm := meter.NewPressure(S.Box, S.Compute, S.MD.CurrentTemperature)
	pm.SetRecompute(false)
	S.pMeter = pm
	S.tMeter = meter.NewFunc("temperature", S.MD.CurrentTemperature)
	S.attach()
	return S, nil
}

//NewLJMC returns a Metropolis Monte Carlo simulation with atom displacements
//and, if P.Pressure is positive, volume changes. A step is one trial.
func NewLJMC(P *params.Params) (*Sim, error) {
	S, err := setup(P, false)
	if err != nil {
		return nil, molsim.ErrDecorate(err, "NewLJMC")
	}
	S.MC = integrator.NewMC(S.Compute, P.Temperature, S.rng)
	if err := S.MC.AddMove(mcmove.NewAtomDisplace(S.Compute, S.rng), 1); err != nil {
		return nil, molsim.ErrDecorate(err, "NewLJMC")
	}
	if P.Pressure > 0 {
		//about one volume trial per sweep
		w := 1 / float64(P.NumAtoms)
		if err := S.MC.AddMove(mcmove.NewVolume(S.Compute, P.Pressure, S.rng), w); err != nil {
			return nil, molsim.ErrDecorate(err, "NewLJMC")
		}
	}
	S.integ = S.MC
	if err := S.MC.Reset(); err != nil {
		return nil, molsim.ErrDecorate(err, "NewLJMC")
	}
	T := P.Temperature
	S.peMeter = meter.NewFunc("potential energy", S.MC.Energy)
	S.pMeter = meter.NewPressure(S.Box, S.Compute, func() float64 { return T })
	S.tMeter = meter.NewFunc("temperature", func() float64 { return T })
	S.attach()
	return S, nil
}

func (S *Sim) attach() {
	S.pe = meter.NewAccumulator(S.P.BlockSize)
	S.pressure = meter.NewAccumulator(S.P.BlockSize)
	S.temp = meter.NewAccumulator(S.P.BlockSize)
	S.pe.KeepHistory(true)
	S.pressure.KeepHistory(true)
	S.integ.Listeners().Add(S.steps(S.P.SampleInterval), func(step int64) {
		if !S.sampling {
			return
		}
		S.pe.Add(S.peMeter.Value())
		S.pressure.Add(S.pMeter.Value())
		S.temp.Add(S.tMeter.Value())
	})
	S.integ.Listeners().Add(S.steps(S.P.TrajectoryPeriod), func(step int64) {
		if S.writer == nil || !S.sampling {
			return
		}
		if err := S.writer.WNext(S.Box.Positions(), S.Box.Boundary()); err != nil {
			log.Printf("simulation: can't write frame at step %d: %s. Trajectory closed", step, err.Error())
			S.writer.Close()
			S.writer = nil
		}
	})
}

//Rand returns the random number generator of the simulation.
func (S *Sim) Rand() *rand.Rand { return S.rng }

//Listeners returns the listeners of the integrator, called after each step.
func (S *Sim) Listeners() *integrator.Listeners { return S.integ.Listeners() }

//Halt stops the run after the current step. It can be called from another goroutine.
func (S *Sim) Halt() { S.integ.Halt() }

//steps returns the number of integrator steps in n sweeps for Monte Carlo, or n
//for molecular dynamics.
func (S *Sim) steps(n int64) int64 {
	if S.MC != nil {
		return n * int64(S.Box.NAtoms())
	}
	return n
}

//Run runs the equilibration steps, then the production steps while sampling,
//and returns the averages. In Monte Carlo, a step is a sweep of one trial
//per atom. The trajectory, if P.Trajectory is set, is written during production.
func (S *Sim) Run() (*Results, error) {
	P := S.P
	if P.Equilibration > 0 {
		S.integ.Run(S.steps(P.Equilibration))
		if S.MC != nil {
			//the tracked energy drifts with rounding
			if err := S.MC.Reset(); err != nil {
				return nil, molsim.ErrDecorate(err, "Run")
			}
			S.MC.SetAdjustStepSize(false)
		}
	}
	if P.Trajectory != "" {
		w, err := traj.NewWriter(P.Trajectory, S.Box.NAtoms(), S.Box.Dim(), map[string]string{"mode": P.Mode, "density": fmt.Sprint(P.Density)})
		if err != nil {
			return nil, molsim.ErrDecorate(err, "Run")
		}
		S.writer = w
		defer func() {
			if S.writer != nil {
				if err := S.writer.Close(); err != nil {
					log.Printf("simulation: %s", err.Error())
				}
				S.writer = nil
			}
		}()
	}
	S.sampling = true
	done := S.integ.Run(S.steps(P.Steps))
	S.sampling = false
	R := S.results()
	R.Steps = done
	return R, nil
}

func (S *Sim) results() *Results {
	n := float64(S.Box.NAtoms())
	R := &Results{
		Pressure:          S.pressure.Average(),
		PressureErr:       S.pressure.Error(),
		Energy:            S.pe.Average() / n,
		EnergyErr:         S.pe.Error() / n,
		Temperature:       S.temp.Average(),
		EnergyCorrelation: S.pe.BlockCorrelation(),
		PressureTrace:     S.pressure.History(),
	}
	T := S.P.Temperature
	if S.MD != nil && !S.MD.Isothermal() {
		T = R.Temperature
	}
	R.Cv, R.CvErr = meter.HeatCapacity(S.pe, T, S.Box.NAtoms())
	R.EnergyTrace = make([]float64, len(S.pe.History()))
	for i, v := range S.pe.History() {
		R.EnergyTrace[i] = v / n
	}
	return R
}

//band returns the half width of the acceptance band, the tolerance or four
//standard errors, whichever is larger.
func band(tol, stderr float64) float64 {
	if math.IsNaN(stderr) {
		return tol
	}
	return math.Max(tol, 4*stderr)
}

//Check compares the results with the references in P, and returns ExitOK, or
//the code of the first observable out of its band, checked in the order pressure,
//energy, heat capacity.
func (R *Results) Check(P *params.Params) int {
	if math.IsNaN(R.Pressure) || math.Abs(R.Pressure-P.RefPressure) > band(P.PressureTol, R.PressureErr) {
		return ExitPressure
	}
	if math.IsNaN(R.Energy) || math.Abs(R.Energy-P.RefEnergy) > band(P.EnergyTol, R.EnergyErr) {
		return ExitEnergy
	}
	if math.IsNaN(R.Cv) || R.Cv < P.CvMin || R.Cv > P.CvMax {
		return ExitCv
	}
	return ExitOK
}

func (R *Results) String() string {
	return fmt.Sprintf("steps %d  P %.4f +/- %.4f  U/N %.4f +/- %.4f  Cv %.4f +/- %.4f  T %.4f",
		R.Steps, R.Pressure, R.PressureErr, R.Energy, R.EnergyErr, R.Cv, R.CvErr, R.Temperature)
}
