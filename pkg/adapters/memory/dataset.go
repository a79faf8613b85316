package memory

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/cascade/pkg/domain"
	"gopkg.in/yaml.v3"
)

// datasetFile is the YAML layout of a small reaction dataset.
// Nuclides are written as "Symbol-A" strings.
//
//	fusion:
//	  - in: [H-1, H-1]
//	    out: [He-2]
//	    mev: 3.0
//	    neutrino: none
//	nuclides:
//	  - id: H-1
//	    z: 1
//	    nuclear: f
//	    atomic: b
//	elements:
//	  - symbol: H
//	    z: 1
//	    melting_k: 14.01
//	    boiling_k: 20.28
type datasetFile struct {
	Fusion   []reactionRow `yaml:"fusion"`
	TwoToTwo []reactionRow `yaml:"two_to_two"`
	Fission  []fissionRow  `yaml:"fission"`
	Nuclides []nuclideRow  `yaml:"nuclides"`
	Elements []elementRow  `yaml:"elements"`
}

type reactionRow struct {
	In       []string `yaml:"in"`
	Out      []string `yaml:"out"`
	MeV      float64  `yaml:"mev"`
	Neutrino string   `yaml:"neutrino"`
}

type fissionRow struct {
	Parent   string   `yaml:"parent"`
	Out      []string `yaml:"out"`
	MeV      float64  `yaml:"mev"`
	Neutrino string   `yaml:"neutrino"`
}

type nuclideRow struct {
	ID      string `yaml:"id"`
	Z       int    `yaml:"z"`
	Nuclear string `yaml:"nuclear"`
	Atomic  string `yaml:"atomic"`
}

type elementRow struct {
	Symbol   string   `yaml:"symbol"`
	Z        int      `yaml:"z"`
	MeltingK *float64 `yaml:"melting_k"`
	BoilingK *float64 `yaml:"boiling_k"`
}

// LoadDatasetFile reads a YAML dataset from disk.
func LoadDatasetFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return LoadDataset(f)
}

// LoadDataset decodes a YAML dataset into a new Source.
func LoadDataset(r io.Reader) (*Source, error) {
	var file datasetFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	src := NewSource()

	for i, row := range file.Fusion {
		in, out, nu, err := row.parse(1)
		if err != nil {
			return nil, fmt.Errorf("fusion[%d]: %w", i, err)
		}
		src.AddFusion(domain.Fusion{In: in, Out: out[0], Energy: row.MeV, Neutrino: nu})
	}

	for i, row := range file.TwoToTwo {
		in, out, nu, err := row.parse(2)
		if err != nil {
			return nil, fmt.Errorf("two_to_two[%d]: %w", i, err)
		}
		src.AddTwoToTwo(domain.TwoToTwo{In: in, Out: [2]domain.Nuclide{out[0], out[1]}, Energy: row.MeV, Neutrino: nu})
	}

	for i, row := range file.Fission {
		parent, err := domain.ParseNuclide(row.Parent)
		if err != nil {
			return nil, fmt.Errorf("fission[%d]: %w", i, err)
		}
		out, err := parseAll(row.Out, 2)
		if err != nil {
			return nil, fmt.Errorf("fission[%d]: %w", i, err)
		}
		nu, err := domain.ParseNeutrino(row.Neutrino)
		if err != nil {
			return nil, fmt.Errorf("fission[%d]: %w", i, err)
		}
		src.AddFission(domain.Fission{Parent: parent, Out: [2]domain.Nuclide{out[0], out[1]}, Energy: row.MeV, Neutrino: nu})
	}

	for i, row := range file.Nuclides {
		n, err := domain.ParseNuclide(row.ID)
		if err != nil {
			return nil, fmt.Errorf("nuclides[%d]: %w", i, err)
		}
		nuclear, err := domain.ParseStatistics(row.Nuclear)
		if err != nil {
			return nil, fmt.Errorf("nuclides[%d]: %w", i, err)
		}
		atomic, err := domain.ParseStatistics(row.Atomic)
		if err != nil {
			return nil, fmt.Errorf("nuclides[%d]: %w", i, err)
		}
		src.SetNuclide(n, row.Z, nuclear, atomic)
	}

	for _, row := range file.Elements {
		src.SetElement(row.Symbol, row.Z, row.MeltingK, row.BoilingK)
	}

	return src, nil
}

func (row reactionRow) parse(outputs int) ([2]domain.Nuclide, []domain.Nuclide, domain.Neutrino, error) {
	in, err := parseAll(row.In, 2)
	if err != nil {
		return [2]domain.Nuclide{}, nil, "", err
	}
	out, err := parseAll(row.Out, outputs)
	if err != nil {
		return [2]domain.Nuclide{}, nil, "", err
	}
	nu, err := domain.ParseNeutrino(row.Neutrino)
	if err != nil {
		return [2]domain.Nuclide{}, nil, "", err
	}
	return [2]domain.Nuclide{in[0], in[1]}, out, nu, nil
}

func parseAll(raw []string, want int) ([]domain.Nuclide, error) {
	if len(raw) != want {
		return nil, fmt.Errorf("expected %d nuclides, got %d", want, len(raw))
	}
	out := make([]domain.Nuclide, len(raw))
	for i, s := range raw {
		n, err := domain.ParseNuclide(s)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
