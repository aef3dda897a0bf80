/*
 * mc.go, part of gomolsim.
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
	"sync/atomic"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/compute"
	"golang.org/x/exp/rand"
)

//Move is a Monte Carlo trial move.
type Move interface {
	//DoTrial changes the configuration, keeping what is needed to undo the
	//change. It returns false if no trial could be made, in which case the
	//configuration was not changed.
	DoTrial() bool
	//Chi returns the acceptance probability of the trial at temperature T.
	//It is 0 if the trial configuration overlaps.
	Chi(T float64) float64
	//EnergyChange returns the change in energy caused by the trial.
	EnergyChange() float64
	//Accept is called when the trial is accepted.
	Accept()
	//Reject restores the configuration from before the trial.
	Reject()
	//Tracker returns the step-size tracker of the move, or nil if the move has no step size.
	Tracker() *StepTracker
	Name() string
}

//MoveManager selects moves at random, each with a probability proportional to its weight.
type MoveManager struct {
	moves   []Move
	weights []float64
	total   float64
}

//Add adds a move with the given weight.
func (M *MoveManager) Add(m Move, weight float64) error {
	if weight <= 0 || math.IsInf(weight, 0) || math.IsNaN(weight) {
		return molsim.ConfigError(fmt.Sprintf("%s: weight %g for move %s", molsim.ErrBadParameter, weight, m.Name()), "MoveManager.Add")
	}
	M.moves = append(M.moves, m)
	M.weights = append(M.weights, weight)
	M.total += weight
	return nil
}

//Moves returns the moves. The slice must not be modified.
func (M *MoveManager) Moves() []Move { return M.moves }

//Fraction returns the probability of selecting the move m.
func (M *MoveManager) Fraction(m Move) float64 {
	for k, v := range M.moves {
		if v == m {
			return M.weights[k] / M.total
		}
	}
	return 0
}

//Select returns a random move, or nil if there are no moves.
func (M *MoveManager) Select(rng *rand.Rand) Move {
	if len(M.moves) == 0 {
		return nil
	}
	x := rng.Float64() * M.total
	for k, w := range M.weights {
		if x < w {
			return M.moves[k]
		}
		x -= w
	}
	return M.moves[len(M.moves)-1]
}

//MC is a Metropolis Monte Carlo integrator. Each step is a single trial
//of a move chosen from its MoveManager.
type MC struct {
	compute     compute.Compute
	moves       MoveManager
	temperature float64
	rng         *rand.Rand
	energy      float64
	steps       int64
	halt        atomic.Bool
	adjust      bool
	listeners   Listeners
	onTrial     []func(m Move, accepted bool)
}

//NewMC returns an integrator that samples the energy c at temperature T, taking
//its random numbers from rng.
func NewMC(c compute.Compute, T float64, rng *rand.Rand) *MC {
	return &MC{compute: c, temperature: T, rng: rng, adjust: true}
}

//AddMove adds the move m with weight w. The step adjustment of the move follows
//the current setting of the integrator.
func (M *MC) AddMove(m Move, w float64) error {
	if err := M.moves.Add(m, w); err != nil {
		return err
	}
	if t := m.Tracker(); t != nil {
		t.SetAdjusting(M.adjust)
	}
	return nil
}

//MoveManager returns the moves of the integrator.
func (M *MC) MoveManager() *MoveManager { return &M.moves }

//Listeners returns the step listeners of the integrator.
func (M *MC) Listeners() *Listeners { return &M.listeners }

//OnTrial registers fn to be called after each trial with the move and whether
//it was accepted.
func (M *MC) OnTrial(fn func(m Move, accepted bool)) {
	M.onTrial = append(M.onTrial, fn)
}

//Reset computes the energy of the current configuration and sets the step count
//to zero. It returns a critical error if the configuration overlaps.
func (M *MC) Reset() error {
	u := M.compute.ComputeAll(false)
	if compute.IsOverlap(u) {
		return molsim.ConfigError(molsim.ErrInitialOverlap, "MC.Reset")
	}
	M.energy = u
	M.steps = 0
	return nil
}

//DoStep performs one trial.
func (M *MC) DoStep() {
	m := M.moves.Select(M.rng)
	if m == nil {
		panic(ErrNoMoves)
	}
	accepted := false
	if m.DoTrial() {
		chi := m.Chi(M.temperature)
		if chi >= 1 || (chi > 0 && M.rng.Float64() < chi) {
			accepted = true
			M.energy += m.EnergyChange()
			m.Accept()
		} else {
			m.Reject()
		}
	}
	if t := m.Tracker(); t != nil {
		t.Update(accepted)
	}
	for _, fn := range M.onTrial {
		fn(m, accepted)
	}
	M.steps++
	M.listeners.fire(M.steps)
}

//Run performs up to steps trials and returns the number of trials done.
//It returns early if Halt is called, but the current trial is always completed.
func (M *MC) Run(steps int64) int64 {
	var i int64
	for ; i < steps && !M.halt.Load(); i++ {
		M.DoStep()
	}
	return i
}

//Halt makes the current and every later Run return after the current step.
//It is safe to call from another goroutine.
func (M *MC) Halt() { M.halt.Store(true) }

//Halted returns true if Halt was called.
func (M *MC) Halted() bool { return M.halt.Load() }

//Energy returns the energy of the current configuration, as kept up to date
//from the energy changes of the accepted trials.
func (M *MC) Energy() float64 { return M.energy }

//StepCount returns the number of steps done since the last Reset.
func (M *MC) StepCount() int64 { return M.steps }

func (M *MC) Temperature() float64 { return M.temperature }

func (M *MC) SetTemperature(T float64) { M.temperature = T }

//Compute returns the energy the integrator samples.
func (M *MC) Compute() compute.Compute { return M.compute }

//Rand returns the random number generator of the integrator.
func (M *MC) Rand() *rand.Rand { return M.rng }

//SetAdjustStepSize turns the step-size adjustment of all the moves on or off.
func (M *MC) SetAdjustStepSize(adjust bool) {
	M.adjust = adjust
	for _, m := range M.moves.moves {
		if t := m.Tracker(); t != nil {
			t.SetAdjusting(adjust)
		}
	}
}

//PanicMsg is an error that is used as the argument of a panic.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const ErrNoMoves PanicMsg = "integrator: MC step with no moves"
