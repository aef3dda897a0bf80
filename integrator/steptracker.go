/*
 * steptracker.go, part of gomolsim.
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
	"log"
	"math"
)

//StepTracker counts the acceptance of the trials of a move and adjusts the
//step size of the move toward a target acceptance ratio.
//The adjustment is done only at the end of each block of trials, and can
//be switched off for production runs.
type StepTracker struct {
	step, min, max float64
	target         float64
	interval       int
	adjustStep     float64
	adjusting      bool

	nTrials, nAccept     int //current block
	totTrials, totAccept int64
	lastDir              int
	clamped              bool
}

//NewStepTracker returns a tracker with the initial step size step, which
//will be kept in [min, max]. The target acceptance ratio is 0.5, the blocks
//are 100 trials long and each adjustment changes the step by 5%.
func NewStepTracker(step, min, max float64) *StepTracker {
	if min > max {
		min, max = max, min
	}
	S := &StepTracker{min: min, max: max, target: 0.5, interval: 100, adjustStep: 1.05, adjusting: true}
	S.SetStep(step)
	return S
}

//Step returns the current step size.
func (S *StepTracker) Step() float64 { return S.step }

//SetStep sets the step size, clamped to the allowed range.
func (S *StepTracker) SetStep(step float64) {
	S.step = math.Max(S.min, math.Min(S.max, step))
}

//Bounds returns the allowed range for the step size.
func (S *StepTracker) Bounds() (float64, float64) { return S.min, S.max }

//SetTarget sets the target acceptance ratio, which should be in (0,1).
func (S *StepTracker) SetTarget(target float64) {
	if target > 0 && target < 1 {
		S.target = target
	}
}

func (S *StepTracker) Target() float64 { return S.target }

//SetInterval sets the number of trials in each adjustment block, and starts a new block.
func (S *StepTracker) SetInterval(n int) {
	if n > 0 {
		S.interval = n
	}
	S.nTrials, S.nAccept = 0, 0
}

func (S *StepTracker) Interval() int { return S.interval }

//SetAdjusting turns the adjustment of the step size on or off. The current
//block is discarded, so a block never mixes both regimes.
func (S *StepTracker) SetAdjusting(adjust bool) {
	S.adjusting = adjust
	S.nTrials, S.nAccept = 0, 0
}

func (S *StepTracker) Adjusting() bool { return S.adjusting }

//Update records the result of one trial.
func (S *StepTracker) Update(accepted bool) {
	S.nTrials++
	S.totTrials++
	if accepted {
		S.nAccept++
		S.totAccept++
	}
	if S.nTrials < S.interval {
		return
	}
	if S.adjusting {
		S.adjust(float64(S.nAccept) / float64(S.nTrials))
	}
	S.nTrials, S.nAccept = 0, 0
}

func (S *StepTracker) adjust(ratio float64) {
	if S.min == S.max {
		return
	}
	dir := -1
	if ratio > S.target {
		dir = 1
	}
	if S.lastDir != 0 && dir != S.lastDir {
		//we overshot, so the next adjustments are finer and less frequent.
		S.adjustStep = math.Sqrt(S.adjustStep)
		S.interval *= 2
	}
	S.lastDir = dir
	step := S.step
	if dir > 0 {
		step *= S.adjustStep
	} else {
		step /= S.adjustStep
	}
	S.SetStep(step)
	if (S.step == S.min || S.step == S.max) && !S.clamped {
		log.Printf("integrator: step size clamped to %g (acceptance %.3f, target %.3f)", S.step, ratio, S.target)
		S.clamped = true
	}
}

//AcceptanceRatio returns the fraction of all the trials recorded that were
//accepted, or NaN if there were none.
func (S *StepTracker) AcceptanceRatio() float64 {
	if S.totTrials == 0 {
		return math.NaN()
	}
	return float64(S.totAccept) / float64(S.totTrials)
}

//Trials returns the total number of trials recorded.
func (S *StepTracker) Trials() int64 { return S.totTrials }

//ResetCounts forgets all the recorded trials. The step size is kept.
func (S *StepTracker) ResetCounts() {
	S.nTrials, S.nAccept = 0, 0
	S.totTrials, S.totAccept = 0, 0
}
