package export

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest mirrors the data.yaml the training pipeline reads. KptShape
// and FlipIdx are present only when the dataset carries base keypoints.
type Manifest struct {
	Path     string         `yaml:"path"`
	Train    string         `yaml:"train"`
	Val      string         `yaml:"val"`
	NC       int            `yaml:"nc"`
	Names    map[int]string `yaml:"names"`
	KptShape []int          `yaml:"kpt_shape,omitempty"`
	FlipIdx  []int          `yaml:"flip_idx,omitempty,flow"`
}

// writeManifest emits data.yaml at the dataset root.
func writeManifest(outputDir string, classNames []string, hasKeypoints bool) error {
	abs, err := filepath.Abs(outputDir)
	if err != nil {
		abs = outputDir
	}

	names := make(map[int]string, len(classNames))
	for i, name := range classNames {
		names[i] = name
	}

	m := Manifest{
		Path:  abs,
		Train: filepath.Join("images", "train"),
		Val:   filepath.Join("images", "val"),
		NC:    len(classNames),
		Names: names,
	}
	if hasKeypoints {
		// Four base corners, (x, y, visibility) each. The flip index
		// swaps TL<->TR and BL<->BR under horizontal augmentation.
		m.KptShape = []int{4, 3}
		m.FlipIdx = []int{1, 0, 3, 2}
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}
	path := filepath.Join(outputDir, "data.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a data.yaml, for the dataset check tool.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
