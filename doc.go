/*
 * doc.go, part of gomolsim.
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

/*Package molsim is the main package of the gomolsim library. It provides the
atom types, species, molecules and the simulation box on which the
Monte Carlo and molecular dynamics machinery of the subpackages work.



	**gomolsim Capabilities**


    Periodic boxes, rectangular or deformable (triclinic), in 1 to 3 dimensions,
	with minimum-image displacements (package space).

    Pair potentials (Lennard-Jones, soft spheres, hard spheres, Coulomb) with hard
	or force-shifted truncation, and tail corrections (package potential).

    Cell lists and Verlet neighbor lists (package nbr).

    Energies, forces and virials, serial or concurrent (package compute).

    Metropolis Monte Carlo with atom displacement, molecule translation and rotation,
	grand-canonical insertion/deletion, coupled pair displacements and volume moves
	(packages integrator and mcmove). Step sizes adapt to a target acceptance.

    Velocity Verlet molecular dynamics, with velocity-scaling and Andersen thermostats
	(package integrator).

    Potential energy, pressure, temperature, pair distance histograms and block
	averages (packages meter and histo).

    Lattices for initial configurations, compressed configuration files and
	normal modes from finite-difference Hessians (packages lattice, traj and harmonic).

    Plots of the traces of the measured quantities (package simplot).


Atoms in a Box are identified by a dense index. Removing a molecule moves
the last atoms of the box into the freed indexes, so anything that keeps
per-atom data outside the box must be told about the removals. The box
does not notify anybody by itself: the functions that change the box take
an explicit callback, and the compute package wraps those changes so the
cell lists are always kept consistent.*/
package molsim
