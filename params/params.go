/*
 * params.go, part of gomolsim.
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

//Package params holds the parameters of a Lennard-Jones simulation run, which
//can be read from TOML or YAML files.
package params

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/integrator"
	"github.com/rmera/gomolsim/potential"
	"gopkg.in/yaml.v3"
)

//Params contains the parameters of a run. All the quantities are in
//Lennard-Jones units. In Monte Carlo runs, Steps, Equilibration, SampleInterval
//and TrajectoryPeriod count sweeps of NumAtoms trials.
//A Params built by hand should be checked with Check.
type Params struct {
	//Mode is "md" for molecular dynamics or "mc" for Monte Carlo.
	Mode string `toml:"mode" yaml:"mode"`

	NumAtoms    int     `toml:"num_atoms" yaml:"num_atoms"`
	Dim         int     `toml:"dim" yaml:"dim"`
	Density     float64 `toml:"density" yaml:"density"`
	Temperature float64 `toml:"temperature" yaml:"temperature"`

	//Lattice is the initial arrangement, "fcc", "bcc", "sc", "square" or "triangular".
	Lattice string `toml:"lattice" yaml:"lattice"`
	//Initial is a trajectory file whose first frame is used instead of the lattice.
	Initial string `toml:"initial" yaml:"initial"`

	Cutoff     float64 `toml:"cutoff" yaml:"cutoff"`
	Truncation string  `toml:"truncation" yaml:"truncation"`
	Tail       bool    `toml:"tail" yaml:"tail"`
	CellRange  int     `toml:"cell_range" yaml:"cell_range"`
	//NeighborList selects a Verlet list with this skin factor, instead of cells, if larger than 1.
	NeighborList float64 `toml:"neighbor_list" yaml:"neighbor_list"`
	Cpus         int     `toml:"cpus" yaml:"cpus"`

	Steps          int64  `toml:"steps" yaml:"steps"`
	Equilibration  int64  `toml:"equilibration" yaml:"equilibration"`
	SampleInterval int64  `toml:"sample_interval" yaml:"sample_interval"`
	BlockSize      int    `toml:"block_size" yaml:"block_size"`
	Seed           uint64 `toml:"seed" yaml:"seed"`

	TimeStep           float64 `toml:"time_step" yaml:"time_step"`
	//Thermostat is empty for a constant-energy run.
	Thermostat         string  `toml:"thermostat" yaml:"thermostat"`
	ThermostatInterval int64   `toml:"thermostat_interval" yaml:"thermostat_interval"`

	//Pressure, if positive, adds volume moves to a Monte Carlo run.
	Pressure float64 `toml:"pressure" yaml:"pressure"`

	RefPressure float64 `toml:"ref_pressure" yaml:"ref_pressure"`
	PressureTol float64 `toml:"pressure_tol" yaml:"pressure_tol"`
	RefEnergy   float64 `toml:"ref_energy" yaml:"ref_energy"`
	EnergyTol   float64 `toml:"energy_tol" yaml:"energy_tol"`
	CvMin       float64 `toml:"cv_min" yaml:"cv_min"`
	CvMax       float64 `toml:"cv_max" yaml:"cv_max"`

	Trajectory       string `toml:"trajectory" yaml:"trajectory"`
	TrajectoryPeriod int64  `toml:"trajectory_period" yaml:"trajectory_period"`
	Plot             string `toml:"plot" yaml:"plot"`
}

//Default returns the parameters of a 500-atom Lennard-Jones liquid at density 0.65,
//truncated at 3 sigma, with the reference pressure and energy per atom of that
//state point.
func Default() *Params {
	return &Params{
		Mode:               "md",
		NumAtoms:           500,
		Dim:                3,
		Density:            0.65,
		Temperature:        1.2,
		Lattice:            "fcc",
		Cutoff:             3,
		Truncation:         "hard",
		CellRange:          2,
		Cpus:               1,
		Steps:              20000,
		Equilibration:      2000,
		SampleInterval:     10,
		BlockSize:          100,
		Seed:               1,
		TimeStep:           0.005,
		Thermostat:         "andersen",
		ThermostatInterval: 100,
		RefPressure:        0.4668,
		PressureTol:        0.05,
		RefEnergy:          -3.816,
		EnergyTol:          0.04,
		CvMin:              0.2,
		CvMax:              2,
		TrajectoryPeriod:   1000,
	}
}

//Load returns the default parameters, overridden by those in the file name,
//which is read as YAML if its extension is .yaml or .yml, and as TOML otherwise.
//The result is checked.
func Load(name string) (*Params, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	defer f.Close()
	P := Default()
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(P)
	default:
		err = toml.NewDecoder(f).Decode(P)
	}
	if err != nil {
		return nil, molsim.ConfigError(fmt.Sprintf("Can't parse %s: %s", name, err.Error()), "Load")
	}
	if err := P.Check(); err != nil {
		return nil, molsim.ErrDecorate(err, "Load")
	}
	return P, nil
}

func bad(format string, v ...interface{}) error {
	return molsim.ConfigError(fmt.Sprintf("%s: %s", molsim.ErrBadParameter, fmt.Sprintf(format, v...)), "Check")
}

func positive(x float64) bool { return x > 0 && !math.IsInf(x, 0) }

//Check returns a configuration error if a parameter has a meaningless value.
func (P *Params) Check() error {
	switch strings.ToLower(P.Mode) {
	case "md", "mc":
	default:
		return bad("mode %q", P.Mode)
	}
	if P.NumAtoms < 1 {
		return bad("%d atoms", P.NumAtoms)
	}
	if P.Dim < 1 || P.Dim > 3 {
		return bad("dimension %d", P.Dim)
	}
	if !positive(P.Density) {
		return bad("density %g", P.Density)
	}
	if !positive(P.Temperature) {
		return bad("temperature %g", P.Temperature)
	}
	if P.Initial == "" {
		if _, err := P.LatticeDim(); err != nil {
			return err
		}
	}
	if !positive(P.Cutoff) {
		return bad("cutoff %g", P.Cutoff)
	}
	if _, err := potential.ParseTruncation(P.Truncation); err != nil {
		return bad("%s", err.Error())
	}
	if P.CellRange < 1 {
		return bad("cell range %d", P.CellRange)
	}
	if P.NeighborList != 0 && P.NeighborList <= 1 {
		return bad("neighbor list factor %g, it must be larger than 1", P.NeighborList)
	}
	if P.Steps < 0 || P.Equilibration < 0 {
		return bad("%d steps, %d equilibration steps", P.Steps, P.Equilibration)
	}
	if P.SampleInterval < 1 || P.BlockSize < 1 {
		return bad("sample interval %d, block size %d", P.SampleInterval, P.BlockSize)
	}
	if strings.ToLower(P.Mode) == "md" {
		if !positive(P.TimeStep) {
			return bad("time step %g", P.TimeStep)
		}
		if P.Thermostat != "" {
			if _, err := integrator.ParseThermostat(P.Thermostat); err != nil {
				return molsim.ErrDecorate(err, "Check")
			}
			if P.ThermostatInterval < 1 {
				return bad("thermostat interval %d", P.ThermostatInterval)
			}
		}
	}
	if P.Pressure < 0 || math.IsNaN(P.Pressure) {
		return bad("pressure %g", P.Pressure)
	}
	if P.PressureTol < 0 || P.EnergyTol < 0 || P.CvMin > P.CvMax {
		return bad("tolerances")
	}
	if P.Trajectory != "" && P.TrajectoryPeriod < 1 {
		return bad("trajectory period %d", P.TrajectoryPeriod)
	}
	return nil
}

//LatticeDim returns the dimension of the lattice named in P.
func (P *Params) LatticeDim() (int, error) {
	switch strings.ToLower(P.Lattice) {
	case "fcc", "bcc", "sc":
		if P.Dim != 3 {
			return 0, molsim.ConfigError(fmt.Sprintf("%s: %s lattice in %d dimensions", molsim.ErrDimensionMismatch, P.Lattice, P.Dim), "LatticeDim")
		}
		return 3, nil
	case "square", "triangular":
		if P.Dim != 2 {
			return 0, molsim.ConfigError(fmt.Sprintf("%s: %s lattice in %d dimensions", molsim.ErrDimensionMismatch, P.Lattice, P.Dim), "LatticeDim")
		}
		return 2, nil
	}
	return 0, bad("lattice %q", P.Lattice)
}
