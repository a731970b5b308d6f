package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFile loads and validates a scenario file, dispatching on extension:
// .yaml/.yml are plain YAML scenarios, .md/.markdown carry the scenario in
// fenced yaml blocks.
func ParseFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scn *Scenario
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		scn, err = ParseYAML(data)
	case ".md", ".markdown":
		scn, err = ParseMarkdown(data)
	default:
		return nil, fmt.Errorf("unsupported scenario file extension %q (want .yaml, .yml, .md or .markdown)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	if err := scn.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", filepath.Base(path), err)
	}
	return scn, nil
}

// ParseYAML decodes a standalone YAML scenario.
func ParseYAML(data []byte) (*Scenario, error) {
	var scn Scenario
	if err := yaml.Unmarshal(data, &scn); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &scn, nil
}

// IsScenarioFile reports whether a filename has a scenario extension.
func IsScenarioFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml" || ext == ".md" || ext == ".markdown"
}

// FindScenarioFiles expands files and directories into the scenario files
// beneath them, deduplicated and in walk order.
func FindScenarioFiles(paths []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve path %s: %w", path, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("access path %s: %w", abs, err)
		}

		if !info.IsDir() {
			if IsScenarioFile(abs) && !seen[abs] {
				out = append(out, abs)
				seen[abs] = true
			}
			continue
		}

		err = filepath.Walk(abs, func(filePath string, fileInfo os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if fileInfo.IsDir() || !IsScenarioFile(filePath) {
				return nil
			}
			if !seen[filePath] {
				out = append(out, filePath)
				seen[filePath] = true
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan directory %s: %w", abs, err)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no scenario files (.yaml, .yml, .md, .markdown) found")
	}
	return out, nil
}
