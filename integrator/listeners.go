/*
 * listeners.go, part of gomolsim.
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

//Package integrator contains the loops that drive a simulation: a
//Metropolis Monte Carlo integrator and a velocity Verlet molecular
//dynamics integrator. Both are synchronous. Every step runs to completion
//before the next one, and the listeners are called from the same goroutine,
//between steps.
package integrator

type listener struct {
	interval int64
	fn       func(step int64)
}

//Listeners is a list of functions that are called every given number of
//steps of an integrator.
type Listeners struct {
	list []listener
}

//Add registers fn, to be called with the current step count every interval
//steps. Intervals smaller than 1 are taken as 1.
func (L *Listeners) Add(interval int64, fn func(step int64)) {
	if interval < 1 {
		interval = 1
	}
	L.list = append(L.list, listener{interval: interval, fn: fn})
}

//Len returns the number of registered functions.
func (L *Listeners) Len() int { return len(L.list) }

func (L *Listeners) fire(step int64) {
	for _, l := range L.list {
		if step%l.interval == 0 {
			l.fn(step)
		}
	}
}
