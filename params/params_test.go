package params

import (
	"os"
	"path/filepath"
	"testing"

	molsim "github.com/rmera/gomolsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(Te *testing.T) {
	P := Default()
	require.NoError(Te, P.Check())
	assert.Equal(Te, 500, P.NumAtoms)
	assert.Equal(Te, 0.65, P.Density)
	assert.Equal(Te, 3.0, P.Cutoff)
	assert.Equal(Te, 0.4668, P.RefPressure)
	assert.Equal(Te, -3.816, P.RefEnergy)
}

func TestLoad(Te *testing.T) {
	dir := Te.TempDir()
	tomlFile := filepath.Join(dir, "run.toml")
	require.NoError(Te, os.WriteFile(tomlFile, []byte("mode = \"mc\"\nnum_atoms = 108\ntemperature = 2.0\nequilibration = 0\n"), 0644))
	yamlFile := filepath.Join(dir, "run.yaml")
	require.NoError(Te, os.WriteFile(yamlFile, []byte("mode: mc\nnum_atoms: 108\ntemperature: 2.0\nequilibration: 0\n"), 0644))
	for _, name := range []string{tomlFile, yamlFile} {
		P, err := Load(name)
		require.NoError(Te, err, name)
		assert.Equal(Te, "mc", P.Mode)
		assert.Equal(Te, 108, P.NumAtoms)
		assert.Equal(Te, 2.0, P.Temperature)
		assert.EqualValues(Te, 0, P.Equilibration)
		//not in the file
		assert.Equal(Te, 0.65, P.Density)
		assert.EqualValues(Te, 20000, P.Steps)
	}
	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.Error(Te, err)
	badFile := filepath.Join(dir, "bad.yml")
	require.NoError(Te, os.WriteFile(badFile, []byte("density: -1\n"), 0644))
	_, err = Load(badFile)
	assert.True(Te, molsim.IsConfigError(err))
}

func TestCheck(Te *testing.T) {
	cases := []struct {
		name string
		mod  func(P *Params)
	}{
		{"mode", func(P *Params) { P.Mode = "bd" }},
		{"atoms", func(P *Params) { P.NumAtoms = 0 }},
		{"density", func(P *Params) { P.Density = 0 }},
		{"temperature", func(P *Params) { P.Temperature = -1 }},
		{"lattice", func(P *Params) { P.Lattice = "hcp" }},
		{"lattice dimension", func(P *Params) { P.Lattice = "square" }},
		{"cutoff", func(P *Params) { P.Cutoff = 0 }},
		{"truncation", func(P *Params) { P.Truncation = "smooth" }},
		{"cell range", func(P *Params) { P.CellRange = 0 }},
		{"list", func(P *Params) { P.NeighborList = 0.9 }},
		{"time step", func(P *Params) { P.TimeStep = 0 }},
		{"thermostat", func(P *Params) { P.Thermostat = "berendsen" }},
		{"sample", func(P *Params) { P.SampleInterval = 0 }},
		{"pressure", func(P *Params) { P.Pressure = -1 }},
		{"cv", func(P *Params) { P.CvMin = 3 }},
	}
	for _, c := range cases {
		P := Default()
		c.mod(P)
		err := P.Check()
		assert.True(Te, molsim.IsConfigError(err), c.name)
	}
	P := Default()
	P.Mode = "mc"
	P.TimeStep = 0
	assert.NoError(Te, P.Check())
	P.Dim = 2
	P.Lattice = "triangular"
	assert.NoError(Te, P.Check())
}
