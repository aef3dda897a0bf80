/*
 * main.go, part of gomolsim.
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

//ljsim runs a Lennard-Jones simulation and exits with a nonzero status if the
//averages are out of the tolerance bands of the reference values:
//1 for the pressure, 2 for the energy and 3 for the heat capacity.
//
//Use:
//  ljsim [FLAGS]
//
//Parameters are read from the file given with -params, TOML or YAML, and the
//flags given explicitly take precedence over the file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/params"
	"github.com/rmera/gomolsim/simplot"
	"github.com/rmera/gomolsim/simulation"
)

//exit status for configuration errors, different from those of Check.
const exitConfig = 4

func CErr(err error, info string) {
	if err != nil {
		if molsim.IsConfigError(err) {
			log.Printf("%s: %s", info, err.Error())
			os.Exit(exitConfig)
		}
		log.Fatal(err, info)
	}
}

func main() {
	log.SetPrefix("ljsim: ")
	log.SetFlags(0)
	D := params.Default()
	file := flag.String("params", "", "TOML or YAML file with the simulation parameters")
	mode := flag.String("mode", D.Mode, "md for molecular dynamics, mc for Monte Carlo")
	natoms := flag.Int("n", D.NumAtoms, "number of atoms")
	density := flag.Float64("density", D.Density, "number density")
	temp := flag.Float64("T", D.Temperature, "temperature")
	cutoff := flag.Float64("rc", D.Cutoff, "truncation radius of the potential")
	tail := flag.Bool("tail", D.Tail, "add the long-range corrections")
	steps := flag.Int64("steps", D.Steps, "production steps (sweeps in Monte Carlo)")
	equil := flag.Int64("equil", D.Equilibration, "equilibration steps (sweeps in Monte Carlo)")
	dt := flag.Float64("dt", D.TimeStep, "time step")
	thermostat := flag.String("thermostat", D.Thermostat, "thermostat for molecular dynamics, empty for constant energy")
	pressure := flag.Float64("P", D.Pressure, "pressure for Monte Carlo volume moves, 0 for constant volume")
	seed := flag.Uint64("seed", D.Seed, "seed for the random numbers")
	cpus := flag.Int("cpus", D.Cpus, "goroutines used for the forces")
	trajfile := flag.String("traj", D.Trajectory, "trajectory file to write, compressed according to the extension")
	plotfile := flag.String("plot", D.Plot, "file to save the traces of the energy and the pressure")
	nocheck := flag.Bool("nocheck", false, "don't compare the averages with the reference values")
	flag.Parse()
	P := D
	if *file != "" {
		var err error
		P, err = params.Load(*file)
		CErr(err, "main")
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			P.Mode = *mode
		case "n":
			P.NumAtoms = *natoms
		case "density":
			P.Density = *density
		case "T":
			P.Temperature = *temp
		case "rc":
			P.Cutoff = *cutoff
		case "tail":
			P.Tail = *tail
		case "steps":
			P.Steps = *steps
		case "equil":
			P.Equilibration = *equil
		case "dt":
			P.TimeStep = *dt
		case "thermostat":
			P.Thermostat = *thermostat
		case "P":
			P.Pressure = *pressure
		case "seed":
			P.Seed = *seed
		case "cpus":
			P.Cpus = *cpus
		case "traj":
			P.Trajectory = *trajfile
		case "plot":
			P.Plot = *plotfile
		}
	})
	CErr(P.Check(), "main")
	S, err := simulation.New(P)
	CErr(err, "main")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		log.Printf("interrupted, stopping after the current step")
		S.Halt()
	}()
	log.Printf("%s run: %d atoms, density %g, T %g, rc %g", strings.ToUpper(P.Mode), P.NumAtoms, P.Density, P.Temperature, P.Cutoff)
	R, err := S.Run()
	CErr(err, "main")
	fmt.Println(R)
	if P.Plot != "" {
		interval := float64(P.SampleInterval)
		err := simplot.SaveTraces(P.Plot, fmt.Sprintf("LJ %s, density %g, T %g", P.Mode, P.Density, P.Temperature), "value",
			simplot.Trace{Name: "U/N", Interval: interval, Values: R.EnergyTrace},
			simplot.Trace{Name: "P", Interval: interval, Values: R.PressureTrace})
		if err != nil {
			log.Printf("can't save the plot: %s", err.Error())
		}
	}
	if *nocheck {
		return
	}
	code := R.Check(P)
	switch code {
	case simulation.ExitPressure:
		log.Printf("pressure %g out of tolerance of %g", R.Pressure, P.RefPressure)
	case simulation.ExitEnergy:
		log.Printf("energy per atom %g out of tolerance of %g", R.Energy, P.RefEnergy)
	case simulation.ExitCv:
		log.Printf("heat capacity %g out of [%g, %g]", R.Cv, P.CvMin, P.CvMax)
	}
	os.Exit(code)
}
