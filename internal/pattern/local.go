package pattern

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// localFile is the on-disk format for user-defined patterns.
type localFile struct {
	Patterns []Pattern `yaml:"patterns"`
}

// LoadLocal reads user-defined patterns from a YAML file. A missing file
// yields no patterns and no error. Entries without a name or prompt are
// rejected.
func LoadLocal(path string) ([]Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read local patterns: %w", err)
	}

	var lf localFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse local patterns %s: %w", path, err)
	}

	for i, p := range lf.Patterns {
		if p.Name == "" {
			return nil, fmt.Errorf("local pattern %d in %s has no name", i+1, path)
		}
		if p.Prompt == "" {
			return nil, fmt.Errorf("local pattern %q in %s has no prompt", p.Name, path)
		}
	}
	return lf.Patterns, nil
}
