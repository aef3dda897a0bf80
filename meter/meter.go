/*
 * meter.go, part of gomolsim.
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

//Package meter contains the observables of a simulation (energies, pressure,
//temperature, pair-distance histograms), block-averaging accumulators for
//them, and the pumps that feed the accumulators from an integrator.
package meter

import (
	"math"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/compute"
	"github.com/rmera/gomolsim/integrator"
)

//Meter is an instantaneous observable.
type Meter interface {
	Value() float64
	Name() string
}

//Func is a Meter that calls a function.
type Func struct {
	name string
	f    func() float64
}

func NewFunc(name string, f func() float64) *Func { return &Func{name: name, f: f} }

func (F *Func) Value() float64 { return F.f() }
func (F *Func) Name() string   { return F.name }

//PerAtom divides the value of a meter by the number of atoms in a box.
type PerAtom struct {
	m   Meter
	box *molsim.Box
}

func NewPerAtom(m Meter, box *molsim.Box) *PerAtom { return &PerAtom{m: m, box: box} }

func (P *PerAtom) Value() float64 {
	if P.box.NAtoms() == 0 {
		return 0
	}
	return P.m.Value() / float64(P.box.NAtoms())
}

func (P *PerAtom) Name() string { return P.m.Name() + " per atom" }

//PotentialEnergy is the energy of a compute for the current configuration.
type PotentialEnergy struct {
	c compute.Compute
}

func NewPotentialEnergy(c compute.Compute) *PotentialEnergy { return &PotentialEnergy{c: c} }

func (P *PotentialEnergy) Value() float64 { return P.c.ComputeAll(false) }
func (P *PotentialEnergy) Name() string   { return "potential energy" }

//Pressure is the virial pressure, rho*T - W/(D*V), where W is the sum over pairs of
//r*du/dr. The tail corrections are included if the compute has them.
type Pressure struct {
	box         *molsim.Box
	c           compute.Compute
	temperature func() float64
	recompute   bool
}

//NewPressure returns the pressure meter of box, with the virial from c and the
//temperature from T, which can be a fixed value or a kinetic temperature.
func NewPressure(box *molsim.Box, c compute.Compute, T func() float64) *Pressure {
	return &Pressure{box: box, c: c, temperature: T, recompute: true}
}

//SetRecompute sets whether Value calls ComputeAll or uses the virial from the last
//call, which is what an MD integrator leaves after each step.
func (P *Pressure) SetRecompute(r bool) { P.recompute = r }

func (P *Pressure) Value() float64 {
	if P.recompute {
		P.c.ComputeAll(false)
	}
	v := P.box.Boundary().Volume()
	return P.box.Density()*P.temperature() - P.c.Virial()/(float64(P.box.Dim())*v)
}

func (P *Pressure) Name() string { return "pressure" }

//KineticEnergy is the kinetic energy of the atoms of a dynamic box.
type KineticEnergy struct {
	box *molsim.Box
}

func NewKineticEnergy(box *molsim.Box) *KineticEnergy { return &KineticEnergy{box: box} }

func (K *KineticEnergy) Value() float64 {
	if !K.box.Dynamic() {
		return 0
	}
	ke := 0.0
	for i := 0; i < K.box.NAtoms(); i++ {
		m := K.box.Mass(i)
		if math.IsInf(m, 1) {
			continue
		}
		ke += 0.5 * m * K.box.Velocity(i).Squared()
	}
	return ke
}

func (K *KineticEnergy) Name() string { return "kinetic energy" }

//Temperature is the kinetic temperature of a dynamic box, 2KE/(D*N).
type Temperature struct {
	ke *KineticEnergy
}

func NewTemperature(box *molsim.Box) *Temperature {
	return &Temperature{ke: NewKineticEnergy(box)}
}

func (T *Temperature) Value() float64 {
	box := T.ke.box
	if box.NAtoms() == 0 {
		return 0
	}
	return 2 * T.ke.Value() / float64(box.Dim()*box.NAtoms())
}

func (T *Temperature) Name() string { return "temperature" }

//Pump feeds the values of a meter to an accumulator.
type Pump struct {
	m   Meter
	acc *Accumulator
}

func NewPump(m Meter, acc *Accumulator) *Pump { return &Pump{m: m, acc: acc} }

//Sample adds the current value of the meter to the accumulator. It has the
//signature of an integrator listener.
func (P *Pump) Sample(step int64) { P.acc.Add(P.m.Value()) }

//Attach registers the pump with l, to sample every interval steps.
func (P *Pump) Attach(l *integrator.Listeners, interval int64) {
	l.Add(interval, P.Sample)
}

func (P *Pump) Meter() Meter { return P.m }

func (P *Pump) Accumulator() *Accumulator { return P.acc }
