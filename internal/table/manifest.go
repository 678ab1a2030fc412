package table

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"autorisk/domain/table"
)

// Manifest is the YAML document listing extra or overriding declarations:
//
//	tables:
//	  - name: policy_h2
//	    locator: s3://insurance/casco_tratadoB.csv
//	    profile: delimited
//	  - name: crime_api
//	    locator: https://dados.example.gov.br/api/roubos
//	    profile: json
//	    data_path: result.records
type Manifest struct {
	Tables []table.Declaration `yaml:"tables"`
}

// LoadManifest reads and validates a manifest file
func LoadManifest(path string) ([]table.Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes manifest YAML, rejecting unknown fields
func ParseManifest(data []byte) ([]table.Declaration, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse tables manifest: %w", err)
	}

	for i, decl := range m.Tables {
		if decl.Name == "" {
			return nil, fmt.Errorf("manifest entry %d has no name", i)
		}
		if decl.Profile == table.ProfileSQL && decl.Query == "" {
			return nil, fmt.Errorf("manifest entry %q uses the sql profile without a query", decl.Name)
		}
	}
	return m.Tables, nil
}
