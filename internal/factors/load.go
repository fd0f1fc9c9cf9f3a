package factors

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/rshade/carbonbuddy/internal/equivalency"
)

// SchemaConstraint is the range of dataset schema versions this build
// understands. Datasets outside the range are rejected at load time so
// a stale binary never misreads newer reference data.
const SchemaConstraint = ">= 1.0.0, < 2.0.0"

//go:embed emission_factors.yaml
var defaultDataset []byte

// Dataset is the parsed reference-data document: the emission-factor
// table plus the equivalency entries, loaded once at startup.
type Dataset struct {
	SchemaVersion string              `yaml:"schema_version"`
	Factors       []Factor            `yaml:"factors"`
	Equivalencies []equivalency.Entry `yaml:"equivalencies"`
}

// Load parses and validates a dataset document from r and builds the
// immutable factor and equivalency tables.
func Load(r io.Reader) (*Table, *equivalency.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading dataset: %w", err)
	}

	var doc Dataset
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing dataset YAML: %w", err)
	}

	if err := checkSchemaVersion(doc.SchemaVersion); err != nil {
		return nil, nil, err
	}

	if len(doc.Factors) == 0 {
		return nil, nil, fmt.Errorf("dataset contains no emission factors")
	}

	byKey := make(map[string]Factor, len(doc.Factors))
	for _, f := range doc.Factors {
		if f.TypeKey == "" {
			return nil, nil, fmt.Errorf("emission factor with empty type_key")
		}
		if _, dup := byKey[f.TypeKey]; dup {
			return nil, nil, fmt.Errorf("duplicate emission factor %q", f.TypeKey)
		}
		if _, err := ParseCategory(string(f.Category)); err != nil {
			return nil, nil, fmt.Errorf("emission factor %q: %w", f.TypeKey, err)
		}
		if f.KgCO2e < 0 {
			return nil, nil, fmt.Errorf("emission factor %q: negative factor %v", f.TypeKey, f.KgCO2e)
		}
		byKey[f.TypeKey] = f
	}

	eq, err := equivalency.NewTable(doc.Equivalencies)
	if err != nil {
		return nil, nil, fmt.Errorf("building equivalency table: %w", err)
	}

	return &Table{byKey: byKey}, eq, nil
}

// LoadFile loads a dataset from path, or the embedded default dataset
// when path is empty.
func LoadFile(path string) (*Table, *equivalency.Table, error) {
	if path == "" {
		return LoadDefault()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	table, eq, err := Load(f)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return table, eq, nil
}

// LoadDefault loads the dataset embedded in the binary.
func LoadDefault() (*Table, *equivalency.Table, error) {
	return Load(bytes.NewReader(defaultDataset))
}

// checkSchemaVersion validates the dataset schema_version against
// SchemaConstraint.
func checkSchemaVersion(version string) error {
	if version == "" {
		return fmt.Errorf("dataset missing schema_version")
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("dataset schema_version %q is not valid semver: %w", version, err)
	}

	constraint, err := semver.NewConstraint(SchemaConstraint)
	if err != nil {
		return fmt.Errorf("parsing schema constraint: %w", err)
	}

	if !constraint.Check(v) {
		return fmt.Errorf("dataset schema_version %s outside supported range %q", version, SchemaConstraint)
	}
	return nil
}
