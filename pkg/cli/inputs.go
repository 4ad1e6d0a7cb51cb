package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"datapack/internal/datapackage"
	"datapack/internal/export"
	"datapack/internal/validation"
)

func loadDocument(path string) (datapackage.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close() //nolint:errcheck
	doc, err := datapackage.DecodeDocument(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// loadMappings reads a YAML or JSON mapping file in either accepted shape.
func loadMappings(path string) ([]validation.Mapping, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mappings: %w", err)
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse mappings %s: %w", path, err)
	}
	mappings, err := validation.DecodeMappings(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mappings, nil
}

// loadDetails reads package details from a YAML or JSON file.
func loadDetails(path string) (export.GeneralDetails, error) {
	var d export.GeneralDetails
	data, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("read details: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return d, fmt.Errorf("parse details %s: %w", path, err)
	}
	return d, nil
}

// writeInconsistencies writes the inconsistent cells of r to path as CSV.
func writeInconsistencies(path string, r *validation.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := validation.WriteInconsistenciesCSV(f, r.Inconsistencies); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// baseName returns the file name of path without its extension.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
