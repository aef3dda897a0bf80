/*
 * timecorr.go, part of gomolsim.
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

package meter

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

//CrossCorrelation returns the normalized cross-correlation of the series c1 and c2,
//which must have the same length, for lags 0 to len(c1)-1. It is computed with
//FFTs over zero-padded series, so there is no wrap-around.
func CrossCorrelation(c1, c2 []float64) []float64 {
	n := len(c1)
	if n != len(c2) {
		panic(ErrLength)
	}
	if n < 2 {
		return nil
	}
	c1mean, c1std := popMeanStd(c1)
	c2mean, c2std := popMeanStd(c2)
	c1pad := make([]complex128, 2*n)
	c2pad := make([]complex128, 2*n)
	for i, v := range c1 {
		c1pad[i] = complex(v-c1mean, 0)
		c2pad[i] = complex(c2[i]-c2mean, 0)
	}
	f := fourier.NewCmplxFFT(len(c1pad))
	f.Coefficients(c1pad, c1pad)
	f.Coefficients(c2pad, c2pad)
	for i, v := range c2pad {
		c1pad[i] *= cmplx.Conj(v)
	}
	f.Sequence(c1pad, c1pad)
	//gonum's inverse transform is not normalized.
	norm := 1 / float64(len(c1pad)) / (c1std * c2std) / float64(n)
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = real(c1pad[i]) * norm
	}
	return ret
}

func popMeanStd(x []float64) (float64, float64) {
	m := stat.Mean(x, nil)
	s := 0.0
	for _, v := range x {
		s += (v - m) * (v - m)
	}
	return m, math.Sqrt(s / float64(len(x)))
}

//Autocorrelation returns the normalized autocorrelation function of x.
func Autocorrelation(x []float64) []float64 {
	return CrossCorrelation(x, x)
}

//CorrelationTime returns the integrated correlation time of x, in samples,
//1+2*sum(rho(k)), where the sum stops at the first negative rho(k).
//Blocks should be several times longer than this for the errors of an
//Accumulator to be meaningful.
func CorrelationTime(x []float64) float64 {
	rho := Autocorrelation(x)
	tau := 1.0
	if len(rho) < 2 {
		return tau
	}
	for _, v := range rho[1:] {
		if v < 0 {
			break
		}
		tau += 2 * v
	}
	return tau
}

//PanicMsg is a message used for panics.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const ErrLength = PanicMsg("gomolsim/meter: series of different lengths")
