/*
 * truncated.go, part of gomolsim.
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

package potential

import (
	"fmt"
	"math"
	"strings"
)

//Truncation is the way a potential is cut at its range.
type Truncation int

const (
	//Hard truncation leaves the potential unchanged inside the cutoff, so
	//both the energy and the force jump at rc.
	Hard Truncation = iota
	//ForceShifted subtracts the energy and the force at rc, so both go
	//continuously to zero.
	ForceShifted
)

func (t Truncation) String() string {
	switch t {
	case Hard:
		return "hard"
	case ForceShifted:
		return "force-shifted"
	}
	return fmt.Sprintf("Truncation(%d)", int(t))
}

//ParseTruncation returns the truncation with the given name ("hard", "none",
//"force-shifted" or "force").
func ParseTruncation(s string) (Truncation, error) {
	switch strings.ToLower(s) {
	case "hard", "none", "":
		return Hard, nil
	case "force-shifted", "force", "forceshifted":
		return ForceShifted, nil
	}
	return Hard, fmt.Errorf("unknown truncation %q", s)
}

//Truncated is a potential cut at a distance rc. The potential is exactly 0
//for r>rc.
type Truncated struct {
	inner    Soft
	rc, rc2  float64
	mode     Truncation
	uc, dudr float64 //energy and du/dr at rc
}

//NewTruncated returns inner, hard-truncated at rc.
func NewTruncated(inner Soft, rc float64) *Truncated {
	return newTruncated(inner, rc, Hard)
}

//NewForceShifted returns inner truncated at rc and shifted so that
//u(r)-u(rc)-(r-rc)u'(rc) is used inside the cutoff.
func NewForceShifted(inner Soft, rc float64) *Truncated {
	return newTruncated(inner, rc, ForceShifted)
}

//NewTruncation returns inner truncated at rc in the given mode.
func NewTruncation(inner Soft, rc float64, mode Truncation) *Truncated {
	return newTruncated(inner, rc, mode)
}

func newTruncated(inner Soft, rc float64, mode Truncation) *Truncated {
	if !(rc > 0) || math.IsInf(rc, 0) {
		panic(PanicMsg(fmt.Sprintf("gomolsim/potential: Invalid cutoff %g", rc)))
	}
	T := &Truncated{inner: inner, rc: rc, rc2: rc * rc, mode: mode}
	if mode == ForceShifted {
		T.uc = inner.U(T.rc2)
		T.dudr = inner.DU(T.rc2) / rc
	}
	return T
}

//Inner returns the untruncated potential.
func (T *Truncated) Inner() Soft { return T.inner }

//Mode returns the truncation mode.
func (T *Truncated) Mode() Truncation { return T.mode }

func (T *Truncated) U(r2 float64) float64 {
	if r2 > T.rc2 {
		return 0
	}
	u := T.inner.U(r2)
	if T.mode == ForceShifted {
		u -= T.uc + (math.Sqrt(r2)-T.rc)*T.dudr
	}
	return u
}

func (T *Truncated) DU(r2 float64) float64 {
	if r2 > T.rc2 {
		return 0
	}
	du := T.inner.DU(r2)
	if T.mode == ForceShifted {
		du -= math.Sqrt(r2) * T.dudr
	}
	return du
}

//D2U is not changed by the shift, which is linear in r.
func (T *Truncated) D2U(r2 float64) float64 {
	if r2 > T.rc2 {
		return 0
	}
	return T.inner.D2U(r2)
}

func (T *Truncated) Range() float64 { return T.rc }

//UIntegral returns the integral of the untruncated potential beyond rc, only
//for hard truncation of a Tailer. It returns 0 otherwise, as a force-shifted
//potential has no standard tail correction.
func (T *Truncated) UIntegral(rc float64, dim int) float64 {
	t, ok := T.inner.(Tailer)
	if !ok || T.mode != Hard {
		return 0
	}
	return t.UIntegral(rc, dim)
}

func (T *Truncated) DUIntegral(rc float64, dim int) float64 {
	t, ok := T.inner.(Tailer)
	if !ok || T.mode != Hard {
		return 0
	}
	return t.DUIntegral(rc, dim)
}

//HasTail returns true if the potential gives non-trivial tail corrections.
func (T *Truncated) HasTail() bool {
	_, ok := T.inner.(Tailer)
	return ok && T.mode == Hard
}

//Sum is the sum of several potentials, each truncated at the same cutoff.
type Sum struct {
	parts []*Truncated
	rc    float64
}

//NewSum returns the sum of parts, each truncated independently at rc in the given mode.
func NewSum(rc float64, mode Truncation, parts ...Soft) *Sum {
	S := &Sum{rc: rc}
	for _, p := range parts {
		S.parts = append(S.parts, newTruncated(p, rc, mode))
	}
	return S
}

func (S *Sum) U(r2 float64) float64 {
	u := 0.0
	for _, p := range S.parts {
		u += p.U(r2)
	}
	return u
}

func (S *Sum) DU(r2 float64) float64 {
	u := 0.0
	for _, p := range S.parts {
		u += p.DU(r2)
	}
	return u
}

func (S *Sum) D2U(r2 float64) float64 {
	u := 0.0
	for _, p := range S.parts {
		u += p.D2U(r2)
	}
	return u
}

func (S *Sum) Range() float64 { return S.rc }

func (S *Sum) UIntegral(rc float64, dim int) float64 {
	u := 0.0
	for _, p := range S.parts {
		u += p.UIntegral(rc, dim)
	}
	return u
}

func (S *Sum) DUIntegral(rc float64, dim int) float64 {
	u := 0.0
	for _, p := range S.parts {
		u += p.DUIntegral(rc, dim)
	}
	return u
}
