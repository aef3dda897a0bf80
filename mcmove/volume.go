/*
 * volume.go, part of gomolsim.
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

package mcmove

import (
	"math"

	"github.com/rmera/gomolsim/compute"
	"github.com/rmera/gomolsim/integrator"
	"github.com/rmera/gomolsim/space"
	"golang.org/x/exp/rand"
)

//Volume changes the volume of the box at constant pressure, in steps of
//ln(V), scaling the centers of mass of the molecules.
type Volume struct {
	mgr        compute.Manager
	rng        *rand.Rand
	pressure   float64
	tracker    *integrator.StepTracker
	pos        *space.Matrix
	boundary   space.Boundary
	vOld, vNew float64
	failed     bool
	uOld, uNew float64
}

//NewVolume returns a volume move for the box of mgr at the given pressure.
func NewVolume(mgr compute.Manager, pressure float64, rng *rand.Rand) *Volume {
	return &Volume{
		mgr:      mgr,
		rng:      rng,
		pressure: pressure,
		tracker:  integrator.NewStepTracker(0.01, 0, 1),
		pos:      space.Zeros(0, mgr.Box().Dim()),
	}
}

func (V *Volume) Name() string { return "volume" }

func (V *Volume) Tracker() *integrator.StepTracker { return V.tracker }

func (V *Volume) Pressure() float64 { return V.pressure }

func (V *Volume) SetPressure(p float64) { V.pressure = p }

func (V *Volume) DoTrial() bool {
	box := V.mgr.Box()
	V.uOld = V.mgr.ComputeAll(false)
	checkPrior(V.uOld)
	V.pos.Copy(box.Positions())
	V.boundary = box.Boundary().Copy()
	V.vOld = box.Boundary().Volume()
	lnv := math.Log(V.vOld) + V.tracker.Step()*(2*V.rng.Float64()-1)
	V.vNew = math.Exp(lnv)
	box.Scale(math.Pow(V.vNew/V.vOld, 1/float64(box.Dim())))
	//a box too small for the cutoff is not an error here, just a rejected trial.
	V.failed = V.mgr.BoxChanged() != nil
	return true
}

func (V *Volume) Chi(T float64) float64 {
	if V.failed {
		return 0
	}
	V.uNew = V.mgr.ComputeAll(false)
	n := float64(len(V.mgr.Box().AllMolecules()))
	return metropolis(V.uOld, V.uNew, T, math.Exp(-V.pressure*(V.vNew-V.vOld)/T+(n+1)*math.Log(V.vNew/V.vOld)))
}

func (V *Volume) EnergyChange() float64 {
	if V.failed {
		return 0
	}
	return V.uNew - V.uOld
}

func (V *Volume) Accept() {}

func (V *Volume) Reject() {
	box := V.mgr.Box()
	box.Positions().Copy(V.pos)
	restoreBoundary(box.Boundary(), V.boundary)
	if err := V.mgr.BoxChanged(); err != nil {
		panic(err)
	}
}

//restoreBoundary gives dst the shape of src, keeping the dst value, which others may hold.
func restoreBoundary(dst, src space.Boundary) {
	switch b := dst.(type) {
	case *space.Rectangular:
		b.SetEdges(src.Widths()...)
	case *space.Deformable:
		if err := b.SetEdges(src.Edges()); err != nil {
			panic(err)
		}
	default:
		panic(space.ErrShape)
	}
}
