/*
 * md.go, part of gomolsim.
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

package integrator

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/compute"
	"github.com/rmera/gomolsim/space"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

const ErrNotReset PanicMsg = "integrator: MD step before Reset"

//Thermostat is the way an isothermal MD integrator keeps its temperature.
type Thermostat int

const (
	//VelocityScaling rescales all the velocities to the target temperature.
	VelocityScaling Thermostat = iota
	//Andersen draws new velocities for all the atoms from the Maxwell-Boltzmann distribution.
	Andersen
	//AndersenSingle draws a new velocity for one random atom.
	AndersenSingle
)

func (t Thermostat) String() string {
	switch t {
	case VelocityScaling:
		return "velocity-scaling"
	case Andersen:
		return "andersen"
	case AndersenSingle:
		return "andersen-single"
	}
	return fmt.Sprintf("Thermostat(%d)", int(t))
}

//ParseThermostat returns the thermostat named by s.
func ParseThermostat(s string) (Thermostat, error) {
	switch strings.ToLower(s) {
	case "velocity-scaling", "scaling", "":
		return VelocityScaling, nil
	case "andersen":
		return Andersen, nil
	case "andersen-single", "andersensingle":
		return AndersenSingle, nil
	}
	return 0, molsim.ConfigError(fmt.Sprintf("%s: thermostat %q", molsim.ErrBadParameter, s), "ParseThermostat")
}

//VelocityVerlet integrates the equations of motion of the atoms of a
//dynamic box with the velocity Verlet algorithm. Atoms with infinite mass
//do not move.
type VelocityVerlet struct {
	compute     compute.Compute
	box         *molsim.Box
	dt          float64
	temperature float64
	isothermal  bool
	thermostat  Thermostat
	interval    int64
	rng         *rand.Rand
	pe, ke      float64
	steps       int64
	halt        atomic.Bool
	listeners   Listeners
}

//NewVelocityVerlet returns an integrator for box, with forces from c and the time
//step dt. The temperature T is used to randomize velocities and by the thermostat.
//The integrator is not isothermal until SetIsothermal is called.
func NewVelocityVerlet(c compute.Compute, box *molsim.Box, dt, T float64, rng *rand.Rand) (*VelocityVerlet, error) {
	if !box.Dynamic() {
		return nil, molsim.ConfigError(molsim.ErrBadParameter+": MD needs a dynamic box", "NewVelocityVerlet")
	}
	if dt <= 0 || T < 0 {
		return nil, molsim.ConfigError(fmt.Sprintf("%s: time step %g, temperature %g", molsim.ErrBadParameter, dt, T), "NewVelocityVerlet")
	}
	return &VelocityVerlet{compute: c, box: box, dt: dt, temperature: T, interval: 100, rng: rng}, nil
}

func (V *VelocityVerlet) TimeStep() float64 { return V.dt }

func (V *VelocityVerlet) SetTimeStep(dt float64) {
	if dt > 0 {
		V.dt = dt
	}
}

func (V *VelocityVerlet) Temperature() float64 { return V.temperature }

func (V *VelocityVerlet) SetTemperature(T float64) { V.temperature = T }

//SetIsothermal turns the thermostat on or off.
func (V *VelocityVerlet) SetIsothermal(iso bool) { V.isothermal = iso }

func (V *VelocityVerlet) Isothermal() bool { return V.isothermal }

//SetThermostat sets the thermostat and the number of steps between its applications.
func (V *VelocityVerlet) SetThermostat(t Thermostat, interval int64) error {
	if interval < 1 || t < VelocityScaling || t > AndersenSingle {
		return molsim.ConfigError(fmt.Sprintf("%s: thermostat %s every %d steps", molsim.ErrBadParameter, t, interval), "SetThermostat")
	}
	V.thermostat = t
	V.interval = interval
	return nil
}

//Thermostat returns the thermostat and its interval.
func (V *VelocityVerlet) Thermostat() (Thermostat, int64) { return V.thermostat, V.interval }

//Listeners returns the step listeners of the integrator.
func (V *VelocityVerlet) Listeners() *Listeners { return &V.listeners }

//Box returns the box being integrated.
func (V *VelocityVerlet) Box() *molsim.Box { return V.box }

//Reset computes the forces and energies for the current configuration, and
//sets the step count to zero. It returns a critical error if the atoms overlap.
func (V *VelocityVerlet) Reset() error {
	if V.box.NAtoms() == 0 {
		return molsim.ConfigError(molsim.ErrNoAtoms, "VelocityVerlet.Reset")
	}
	V.pe = V.compute.ComputeAll(true)
	if compute.IsOverlap(V.pe) {
		return molsim.ConfigError(molsim.ErrInitialOverlap, "VelocityVerlet.Reset")
	}
	V.ke = V.kinetic()
	V.steps = 0
	return nil
}

func (V *VelocityVerlet) kinetic() float64 {
	ke := 0.0
	for i := 0; i < V.box.NAtoms(); i++ {
		m := V.box.Mass(i)
		if math.IsInf(m, 1) {
			continue
		}
		ke += 0.5 * m * V.box.Velocity(i).Squared()
	}
	return ke
}

//kick adds to the velocities half a time step of acceleration from the current forces.
//It panics if there are no forces for the current atoms, which means Reset was not called.
func (V *VelocityVerlet) kick() {
	f := V.compute.Forces()
	if f == nil || f.NVecs() != V.box.NAtoms() {
		panic(ErrNotReset)
	}
	for i := 0; i < V.box.NAtoms(); i++ {
		rm := V.box.Type(i).RMass()
		if rm == 0 {
			continue
		}
		V.box.Velocity(i).PEa1Tv1(0.5*V.dt*rm, f.VecView(i))
	}
}

//DoStep advances the system by one time step.
func (V *VelocityVerlet) DoStep() {
	b := V.box.Boundary()
	V.kick()
	for i := 0; i < V.box.NAtoms(); i++ {
		if V.box.Type(i).RMass() == 0 {
			continue
		}
		r := V.box.Position(i)
		r.PEa1Tv1(V.dt, V.box.Velocity(i))
		b.CentralImage(r)
	}
	V.pe = V.compute.ComputeAll(true)
	V.kick()
	V.ke = V.kinetic()
	V.steps++
	if V.isothermal && V.steps%V.interval == 0 {
		V.doThermostat()
	}
	V.listeners.fire(V.steps)
}

func (V *VelocityVerlet) doThermostat() {
	switch V.thermostat {
	case VelocityScaling:
		V.scaleVelocities()
	case Andersen:
		for i := 0; i < V.box.NAtoms(); i++ {
			V.randomizeAtom(i)
		}
	case AndersenSingle:
		V.randomizeAtom(V.rng.Intn(V.box.NAtoms()))
	}
	V.ke = V.kinetic()
}

func (V *VelocityVerlet) scaleVelocities() {
	t := V.CurrentTemperature()
	if t == 0 {
		return
	}
	floats.Scale(math.Sqrt(V.temperature/t), V.box.Velocities().RawData())
}

//randomizeAtom gives atom i a velocity from the Maxwell-Boltzmann distribution.
func (V *VelocityVerlet) randomizeAtom(i int) {
	rm := V.box.Type(i).RMass()
	v := V.box.Velocity(i)
	if rm == 0 {
		v.Zero()
		return
	}
	s := math.Sqrt(V.temperature * rm)
	for d := range v {
		v[d] = s * V.rng.NormFloat64()
	}
}

//RandomizeVelocities draws velocities from the Maxwell-Boltzmann distribution,
//removes the momentum of the center of mass and rescales the velocities so
//the kinetic temperature equals the target temperature.
func (V *VelocityVerlet) RandomizeVelocities() {
	n := V.box.NAtoms()
	if n == 0 {
		return
	}
	p := space.NewVec(V.box.Dim())
	mtot := 0.0
	for i := 0; i < n; i++ {
		V.randomizeAtom(i)
		m := V.box.Mass(i)
		if math.IsInf(m, 1) {
			continue
		}
		p.PEa1Tv1(m, V.box.Velocity(i))
		mtot += m
	}
	if mtot > 0 && n > 1 {
		p.TE(1 / mtot)
		for i := 0; i < n; i++ {
			if V.box.Type(i).RMass() != 0 {
				V.box.Velocity(i).ME(p)
			}
		}
	}
	V.ke = V.kinetic()
	if n > 1 {
		V.scaleVelocities()
		V.ke = V.kinetic()
	}
}

//Run performs up to steps time steps and returns the number of steps done.
//It returns early if Halt is called, but the current step is always completed.
func (V *VelocityVerlet) Run(steps int64) int64 {
	var i int64
	for ; i < steps && !V.halt.Load(); i++ {
		V.DoStep()
	}
	return i
}

//Halt makes the current and every later Run return after the current step.
//It is safe to call from another goroutine.
func (V *VelocityVerlet) Halt() { V.halt.Store(true) }

//Halted returns true if Halt was called.
func (V *VelocityVerlet) Halted() bool { return V.halt.Load() }

//PotentialEnergy returns the potential energy at the current positions.
func (V *VelocityVerlet) PotentialEnergy() float64 { return V.pe }

//KineticEnergy returns the kinetic energy at the current velocities.
func (V *VelocityVerlet) KineticEnergy() float64 { return V.ke }

//CurrentTemperature returns the kinetic temperature, 2KE/(D N).
func (V *VelocityVerlet) CurrentTemperature() float64 {
	n := V.box.NAtoms()
	if n == 0 {
		return 0
	}
	return 2 * V.ke / float64(V.box.Dim()*n)
}

//CurrentTime returns the simulated time since the last Reset.
func (V *VelocityVerlet) CurrentTime() float64 { return float64(V.steps) * V.dt }

//StepCount returns the number of steps done since the last Reset.
func (V *VelocityVerlet) StepCount() int64 { return V.steps }

//Compute returns the energy the integrator uses for its forces.
func (V *VelocityVerlet) Compute() compute.Compute { return V.compute }
