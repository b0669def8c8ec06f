// Command datasetcheck verifies an exported YOLO dataset before it is
// handed to a trainer: directory layout, manifest, image/label pairing,
// and label file contents.
//
// Usage: datasetcheck <dataset-dir>
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mini-annotator/internal/export"
	"mini-annotator/pkg/geometry"

	"github.com/charmbracelet/log"
)

// duplicateIoU flags label pairs overlapping enough to be suspected
// duplicates of the same figure.
const duplicateIoU = 0.5

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

type checker struct {
	root     string
	logger   *log.Logger
	errors   []string
	warnings []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <dataset-dir>\n", os.Args[0])
		os.Exit(1)
	}

	c := &checker{
		root:   os.Args[1],
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "check"}),
	}

	ok := c.run()
	c.report()
	if !ok {
		os.Exit(1)
	}
}

func (c *checker) errorf(format string, args ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *checker) warnf(format string, args ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *checker) run() bool {
	c.logger.Info("validating dataset", "path", c.root)

	if !c.checkStructure() {
		return false
	}

	manifest := c.checkManifest()
	if manifest == nil {
		return false
	}

	c.checkSplit("train", manifest.NC)
	c.checkSplit("val", manifest.NC)

	return len(c.errors) == 0
}

// checkStructure verifies the images/labels train/val directory layout.
func (c *checker) checkStructure() bool {
	required := []string{
		filepath.Join("images", "train"),
		filepath.Join("images", "val"),
		filepath.Join("labels", "train"),
		filepath.Join("labels", "val"),
	}
	ok := true
	for _, dir := range required {
		info, err := os.Stat(filepath.Join(c.root, dir))
		if err != nil || !info.IsDir() {
			c.errorf("missing directory: %s", dir)
			ok = false
		}
	}
	return ok
}

// checkManifest loads data.yaml and validates its fields.
func (c *checker) checkManifest() *export.Manifest {
	manifest, err := export.ReadManifest(filepath.Join(c.root, "data.yaml"))
	if err != nil {
		c.errorf("data.yaml: %v", err)
		return nil
	}

	if manifest.Train == "" || manifest.Val == "" {
		c.errorf("data.yaml missing train/val paths")
	}
	if manifest.NC <= 0 {
		c.errorf("data.yaml has nc=%d", manifest.NC)
	}
	if len(manifest.Names) != manifest.NC {
		c.errorf("class count mismatch: nc=%d but %d names", manifest.NC, len(manifest.Names))
	}
	if manifest.NC != 1 {
		c.warnf("multi-class dataset: nc=%d", manifest.NC)
	}
	if manifest.KptShape != nil {
		if len(manifest.KptShape) != 2 || manifest.KptShape[0] != 4 || manifest.KptShape[1] != 3 {
			c.errorf("invalid kpt_shape %v, want [4 3] for base corners", manifest.KptShape)
		}
	}
	c.logger.Info("manifest", "nc", manifest.NC, "kpt_shape", manifest.KptShape)
	return manifest
}

// checkSplit pairs images with labels and validates every label file.
func (c *checker) checkSplit(split string, numClasses int) {
	images := c.listStems(filepath.Join(c.root, "images", split), func(ext string) bool {
		return imageExtensions[ext]
	})
	labels := c.listStems(filepath.Join(c.root, "labels", split), func(ext string) bool {
		return ext == ".txt"
	})

	missing := 0
	for stem := range images {
		if _, ok := labels[stem]; !ok {
			missing++
		}
	}
	if missing > 0 {
		c.errorf("%s: %d images without labels", split, missing)
	}
	orphaned := 0
	for stem := range labels {
		if _, ok := images[stem]; !ok {
			orphaned++
		}
	}
	if orphaned > 0 {
		c.warnf("%s: %d labels without images", split, orphaned)
	}

	instances, withPose := 0, 0
	for stem, path := range labels {
		n, pose := c.checkLabelFile(split, stem, path, numClasses)
		instances += n
		withPose += pose
	}
	c.logger.Info("split checked", "split", split,
		"images", len(images), "instances", instances, "with_pose", withPose)
}

// listStems maps file basenames without extension to full paths.
func (c *checker) listStems(dir string, match func(ext string) bool) map[string]string {
	out := make(map[string]string)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !match(ext) {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		out[stem] = filepath.Join(dir, e.Name())
	}
	return out
}

// checkLabelFile validates one label file and returns its instance and
// pose-instance counts.
func (c *checker) checkLabelFile(split, stem, path string, numClasses int) (instances, withPose int) {
	data, err := os.ReadFile(path)
	if err != nil {
		c.errorf("%s/%s: %v", split, stem, err)
		return 0, 0
	}

	var boxes []geometry.Rect
	for lineNum, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 && len(fields) != 17 {
			c.errorf("%s/%s:%d: %d fields, want 5 or 17", split, stem, lineNum+1, len(fields))
			continue
		}

		cls, err := strconv.Atoi(fields[0])
		if err != nil || cls < 0 || cls >= numClasses {
			c.errorf("%s/%s:%d: bad class id %q", split, stem, lineNum+1, fields[0])
		}

		vals := make([]float64, 0, len(fields)-1)
		parseOK := true
		for _, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				c.errorf("%s/%s:%d: bad value %q", split, stem, lineNum+1, f)
				parseOK = false
				break
			}
			vals = append(vals, v)
		}
		if !parseOK {
			continue
		}

		cx, cy, w, h := vals[0], vals[1], vals[2], vals[3]
		if cx < 0 || cx > 1 || cy < 0 || cy > 1 {
			c.errorf("%s/%s:%d: center (%.3f, %.3f) outside [0,1]", split, stem, lineNum+1, cx, cy)
		}
		if w <= 0 || w > 1 || h <= 0 || h > 1 {
			c.errorf("%s/%s:%d: size %.3fx%.3f outside (0,1]", split, stem, lineNum+1, w, h)
		}
		instances++
		boxes = append(boxes, geometry.NewRect(cx-w/2, cy-h/2, w, h))

		if len(fields) == 17 {
			withPose++
			c.checkKeypoints(split, stem, lineNum+1, vals[4:])
		}
	}

	// Heavily overlapping instances in one image are suspected duplicates.
	for i := 0; i < len(boxes); i++ {
		for j := i + 1; j < len(boxes); j++ {
			if iou := geometry.IoU(boxes[i], boxes[j]); iou > duplicateIoU {
				c.warnf("%s/%s: instances %d and %d overlap %.0f%%, verify not duplicate",
					split, stem, i+1, j+1, iou*100)
			}
		}
	}
	return instances, withPose
}

// checkKeypoints validates the 12 base-corner values of a pose line.
func (c *checker) checkKeypoints(split, stem string, lineNum int, kpts []float64) {
	for i := 0; i < 4; i++ {
		kx, ky, kv := kpts[i*3], kpts[i*3+1], kpts[i*3+2]
		if kx < 0 || kx > 1 || ky < 0 || ky > 1 {
			c.errorf("%s/%s:%d: keypoint %d at (%.3f, %.3f) outside [0,1]",
				split, stem, lineNum, i, kx, ky)
		}
		if kv != 0 && kv != 1 && kv != 2 {
			c.errorf("%s/%s:%d: keypoint %d visibility %v, want 0, 1, or 2",
				split, stem, lineNum, i, kv)
		}
	}
	// Corners are written clockwise from top-left, so the second corner
	// sits right of the first.
	if kpts[3] < kpts[0] {
		c.warnf("%s/%s:%d: corner order suspicious, TR left of TL", split, stem, lineNum)
	}
}

func (c *checker) report() {
	for _, e := range c.errors {
		fmt.Printf("error: %s\n", e)
	}
	for _, w := range c.warnings {
		fmt.Printf("warning: %s\n", w)
	}
	switch {
	case len(c.errors) == 0 && len(c.warnings) == 0:
		fmt.Println("dataset validation passed")
	case len(c.errors) == 0:
		fmt.Printf("no errors, %d warnings\n", len(c.warnings))
	default:
		fmt.Printf("validation failed: %d errors, %d warnings\n", len(c.errors), len(c.warnings))
	}
}
