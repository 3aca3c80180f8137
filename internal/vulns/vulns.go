// Package vulns loads externally supplied vulnerability records and maps
// their affected-function names onto the call graph.
package vulns

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Vulnerability is one advisory record as supplied by the collaborator
// that fetches advisory databases.
type Vulnerability struct {
	ID        string   `json:"id"`
	Package   string   `json:"package"`
	Version   string   `json:"version"`
	Functions []string `json:"functions"`
}

// file is the on-disk envelope.
type file struct {
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

// LoadFile reads vulnerability records from a JSON file. Both a bare array
// and a {"vulnerabilities": [...]} envelope are accepted.
func LoadFile(path string) ([]Vulnerability, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open vulnerability file %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads vulnerability records from a reader.
func Load(r io.Reader) ([]Vulnerability, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read vulnerability data: %w", err)
	}

	var list []Vulnerability
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var envelope file
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse vulnerability JSON: %w", err)
	}
	return envelope.Vulnerabilities, nil
}
