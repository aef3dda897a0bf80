/*
 * potential.go, part of gomolsim.
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

//Package potential implements spherically symmetric pair potentials, and
//their truncated versions.
//
//All the potentials take the squared distance r2 between the two atoms.
//DU returns r*du/dr, and D2U returns r^2*d2u/dr2. With dr=ri-rj, the
//force on atom i is -DU(r2)/r2*dr, and the pair contributes DU(r2) to
//the virial sum.
package potential

import (
	"fmt"
	"math"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/space"
)

//Soft is a pair potential with continuous derivatives (or an infinite
//energy, for hard cores). Range is the distance beyond which the
//potential is zero, +Inf for untruncated potentials.
type Soft interface {
	U(r2 float64) float64
	DU(r2 float64) float64
	D2U(r2 float64) float64
	Range() float64
}

//Tailer is a potential that can give its long-range contributions, i.e.
//the integrals beyond rc of u and of r*du/dr over the volume element of
//a dim-dimensional space. They are used for the tail corrections.
type Tailer interface {
	UIntegral(rc float64, dim int) float64
	DUIntegral(rc float64, dim int) float64
}

//shellArea returns the area of the unit sphere in dim dimensions.
func shellArea(dim int) float64 {
	switch dim {
	case 1:
		return 2
	case 2:
		return 2 * math.Pi
	case 3:
		return 4 * math.Pi
	}
	panic(PanicMsg(fmt.Sprintf("gomolsim/potential: Unsupported dimension %d", dim)))
}

//powerIntegral returns the integral from rc to infinity of r^(dim-1-n), which
//diverges for n <= dim.
func powerIntegral(rc float64, n float64, dim int) float64 {
	d := float64(dim)
	if n <= d {
		return math.Inf(1)
	}
	return math.Pow(rc, d-n) / (n - d)
}

//CheckRange returns a configuration error if the range of p is larger than half
//the smallest width of the boundary b, which would break the minimum image
//convention.
func CheckRange(p Soft, b space.Boundary) error {
	rc := p.Range()
	half := space.MinWidth(b) / 2
	if rc > half {
		return molsim.ConfigError(fmt.Sprintf("%s: range %g, half box width %g", molsim.ErrCutoffTooLarge, rc, half), "CheckRange")
	}
	return nil
}

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

//LennardJones is the 12-6 potential 4e((s/r)^12-(s/r)^6).
type LennardJones struct {
	sigma, epsilon float64
	sigma2         float64
}

//NewLennardJones returns a Lennard-Jones potential with the given size and well depth.
func NewLennardJones(sigma, epsilon float64) *LennardJones {
	return &LennardJones{sigma: sigma, epsilon: epsilon, sigma2: sigma * sigma}
}

//LorentzBerthelot returns the potential for the unlike interaction between
//a and b, with the arithmetic mean of the sizes and the geometric mean of the depths.
func LorentzBerthelot(a, b *LennardJones) *LennardJones {
	return NewLennardJones((a.sigma+b.sigma)/2, math.Sqrt(a.epsilon*b.epsilon))
}

func (L *LennardJones) Sigma() float64   { return L.sigma }
func (L *LennardJones) Epsilon() float64 { return L.epsilon }

func (L *LennardJones) U(r2 float64) float64 {
	s2 := L.sigma2 / r2
	s6 := s2 * s2 * s2
	return 4 * L.epsilon * s6 * (s6 - 1)
}

func (L *LennardJones) DU(r2 float64) float64 {
	s2 := L.sigma2 / r2
	s6 := s2 * s2 * s2
	return -24 * L.epsilon * s6 * (2*s6 - 1)
}

func (L *LennardJones) D2U(r2 float64) float64 {
	s2 := L.sigma2 / r2
	s6 := s2 * s2 * s2
	return 24 * L.epsilon * s6 * (26*s6 - 7)
}

func (L *LennardJones) Range() float64 { return math.Inf(1) }

func (L *LennardJones) UIntegral(rc float64, dim int) float64 {
	s6 := math.Pow(L.sigma, 6)
	return shellArea(dim) * 4 * L.epsilon * (s6*s6*powerIntegral(rc, 12, dim) - s6*powerIntegral(rc, 6, dim))
}

func (L *LennardJones) DUIntegral(rc float64, dim int) float64 {
	s6 := math.Pow(L.sigma, 6)
	return shellArea(dim) * 4 * L.epsilon * (-12*s6*s6*powerIntegral(rc, 12, dim) + 6*s6*powerIntegral(rc, 6, dim))
}

//SoftSphere is the purely repulsive potential e(s/r)^n.
type SoftSphere struct {
	sigma, epsilon float64
	n              float64
}

func NewSoftSphere(sigma, epsilon, n float64) *SoftSphere {
	return &SoftSphere{sigma: sigma, epsilon: epsilon, n: n}
}

func (S *SoftSphere) U(r2 float64) float64 {
	return S.epsilon * math.Pow(S.sigma*S.sigma/r2, S.n/2)
}

func (S *SoftSphere) DU(r2 float64) float64 {
	return -S.n * S.U(r2)
}

func (S *SoftSphere) D2U(r2 float64) float64 {
	return S.n * (S.n + 1) * S.U(r2)
}

func (S *SoftSphere) Range() float64 { return math.Inf(1) }

func (S *SoftSphere) UIntegral(rc float64, dim int) float64 {
	return shellArea(dim) * S.epsilon * math.Pow(S.sigma, S.n) * powerIntegral(rc, S.n, dim)
}

func (S *SoftSphere) DUIntegral(rc float64, dim int) float64 {
	return -S.n * S.UIntegral(rc, dim)
}

//HardSphere is infinite for distances smaller than the diameter, 0 otherwise.
//Its derivatives are taken to be zero everywhere.
type HardSphere struct {
	sigma, sigma2 float64
}

func NewHardSphere(sigma float64) *HardSphere {
	return &HardSphere{sigma: sigma, sigma2: sigma * sigma}
}

func (H *HardSphere) U(r2 float64) float64 {
	if r2 < H.sigma2 {
		return math.Inf(1)
	}
	return 0
}

func (H *HardSphere) DU(r2 float64) float64  { return 0 }
func (H *HardSphere) D2U(r2 float64) float64 { return 0 }
func (H *HardSphere) Range() float64         { return H.sigma }

//Harmonic is the spring k/2(r-r0)^2, meant for bonds.
type Harmonic struct {
	k, r0 float64
}

func NewHarmonic(k, r0 float64) *Harmonic {
	return &Harmonic{k: k, r0: r0}
}

func (H *Harmonic) U(r2 float64) float64 {
	d := math.Sqrt(r2) - H.r0
	return 0.5 * H.k * d * d
}

func (H *Harmonic) DU(r2 float64) float64 {
	r := math.Sqrt(r2)
	return H.k * r * (r - H.r0)
}

func (H *Harmonic) D2U(r2 float64) float64 { return H.k * r2 }
func (H *Harmonic) Range() float64         { return math.Inf(1) }

//Coulomb is the bare electrostatic interaction qq/r, where qq is the product
//of the charges, in units that absorb the prefactor.
type Coulomb struct {
	qq float64
}

func NewCoulomb(qq float64) *Coulomb { return &Coulomb{qq: qq} }

func (C *Coulomb) U(r2 float64) float64   { return C.qq / math.Sqrt(r2) }
func (C *Coulomb) DU(r2 float64) float64  { return -C.qq / math.Sqrt(r2) }
func (C *Coulomb) D2U(r2 float64) float64 { return 2 * C.qq / math.Sqrt(r2) }
func (C *Coulomb) Range() float64         { return math.Inf(1) }

//DampedCoulomb is the real-space term of an Ewald sum, qq*erfc(alpha*r)/r.
type DampedCoulomb struct {
	qq, alpha float64
}

func NewDampedCoulomb(qq, alpha float64) *DampedCoulomb {
	return &DampedCoulomb{qq: qq, alpha: alpha}
}

func (C *DampedCoulomb) U(r2 float64) float64 {
	r := math.Sqrt(r2)
	return C.qq * math.Erfc(C.alpha*r) / r
}

//g returns d/dr erfc(alpha*r)
func (C *DampedCoulomb) g(r2 float64) float64 {
	return -2 * C.alpha / math.SqrtPi * math.Exp(-C.alpha*C.alpha*r2)
}

func (C *DampedCoulomb) DU(r2 float64) float64 {
	r := math.Sqrt(r2)
	return C.qq * (C.g(r2) - math.Erfc(C.alpha*r)/r)
}

func (C *DampedCoulomb) D2U(r2 float64) float64 {
	r := math.Sqrt(r2)
	g := C.g(r2)
	return C.qq * (-2*C.alpha*C.alpha*r2*g - 2*g + 2*math.Erfc(C.alpha*r)/r)
}

func (C *DampedCoulomb) Range() float64 { return math.Inf(1) }
