/*
 * accumulator.go, part of gomolsim.
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

	"gonum.org/v1/gonum/stat"
)

//Accumulator collects samples of an observable and reports their average,
//with the statistical error estimated from the averages of blocks of
//consecutive samples.
type Accumulator struct {
	blockSize int
	n         int64
	mean, m2  float64 //running mean and sum of squared deviations of all the samples

	cur, cur2 float64 //sums for the current block
	curN      int
	blocks    []float64 //block averages
	blockVars []float64 //variance inside each block

	keep    bool
	history []float64
}

//NewAccumulator returns an accumulator with blocks of blockSize samples.
func NewAccumulator(blockSize int) *Accumulator {
	if blockSize < 1 {
		blockSize = 1
	}
	return &Accumulator{blockSize: blockSize}
}

//KeepHistory sets whether the accumulator keeps every sample.
func (A *Accumulator) KeepHistory(keep bool) { A.keep = keep }

//History returns the samples kept, not a copy.
func (A *Accumulator) History() []float64 { return A.history }

func (A *Accumulator) Add(x float64) {
	A.n++
	d := x - A.mean
	A.mean += d / float64(A.n)
	A.m2 += d * (x - A.mean)
	A.cur += x
	A.cur2 += x * x
	A.curN++
	if A.curN == A.blockSize {
		m := A.cur / float64(A.curN)
		A.blocks = append(A.blocks, m)
		A.blockVars = append(A.blockVars, math.Max(0, A.cur2/float64(A.curN)-m*m))
		A.cur, A.cur2, A.curN = 0, 0, 0
	}
	if A.keep {
		A.history = append(A.history, x)
	}
}

//Reset forgets all the samples.
func (A *Accumulator) Reset() {
	*A = Accumulator{blockSize: A.blockSize, keep: A.keep}
}

//Count returns the number of samples.
func (A *Accumulator) Count() int64 { return A.n }

func (A *Accumulator) BlockSize() int { return A.blockSize }

//NBlocks returns the number of complete blocks.
func (A *Accumulator) NBlocks() int { return len(A.blocks) }

//Blocks returns the averages of the complete blocks, not a copy.
func (A *Accumulator) Blocks() []float64 { return A.blocks }

//Average returns the average of all the samples, or NaN if there are none.
func (A *Accumulator) Average() float64 {
	if A.n == 0 {
		return math.NaN()
	}
	return A.mean
}

//Variance returns the variance of all the samples.
func (A *Accumulator) Variance() float64 {
	if A.n < 2 {
		return math.NaN()
	}
	return A.m2 / float64(A.n)
}

//StdDev returns the standard deviation of all the samples.
func (A *Accumulator) StdDev() float64 { return math.Sqrt(A.Variance()) }

//Error returns the standard error of the average, from the spread of the block
//averages. It needs at least 2 blocks.
func (A *Accumulator) Error() float64 {
	nb := len(A.blocks)
	if nb < 2 {
		return math.NaN()
	}
	return stat.StdDev(A.blocks, nil) / math.Sqrt(float64(nb))
}

//VarianceError returns the standard error of Variance, from the spread of the
//variances inside each block.
func (A *Accumulator) VarianceError() float64 {
	nb := len(A.blockVars)
	if nb < 2 {
		return math.NaN()
	}
	return stat.StdDev(A.blockVars, nil) / math.Sqrt(float64(nb))
}

//BlockCorrelation returns the correlation between consecutive block averages.
//Values far from zero mean that the blocks are too short for Error to be trusted.
func (A *Accumulator) BlockCorrelation() float64 {
	nb := len(A.blocks)
	if nb < 3 {
		return math.NaN()
	}
	return stat.Correlation(A.blocks[:nb-1], A.blocks[1:], nil)
}

//HeatCapacity returns the configurational heat capacity per atom, Var(U)/(N T^2), and its
//error, from an accumulator of total potential energies of N atoms at temperature T.
func HeatCapacity(acc *Accumulator, T float64, N int) (float64, float64) {
	f := 1 / (float64(N) * T * T)
	return acc.Variance() * f, acc.VarianceError() * f
}
