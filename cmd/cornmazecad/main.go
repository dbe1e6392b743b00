// Command cornmazecad drives the corn-maze geometry engine from the
// command line: import a field, generate rows, carve a batch of design
// elements, validate, and export a project file (and optionally a debug
// SVG preview).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/carve"
	"github.com/cornmazecad/engine/pkg/constraints"
	"github.com/cornmazecad/engine/pkg/metrics"
	"github.com/cornmazecad/engine/pkg/project"
	"github.com/cornmazecad/engine/pkg/session"
)

const version = "1.0.0"

var (
	configPath = flag.String("config", "", "Path to YAML session configuration file (optional, defaults used if absent)")
	fieldPath  = flag.String("field", "", "Path to a field JSON file ({\"points\":[[x,y],...],\"crs\":\"EPSG:...\"}); required unless -load is given")
	loadPath   = flag.String("load", "", "Path to an existing .cmz project file to load instead of -field")
	carvePath  = flag.String("carve", "", "Path to a JSON array of stroke carve intents ([{\"points\":[[x,y],...],\"width\":3.0,\"type\":\"path\"}]) to apply after rows are generated")
	outputDir  = flag.String("output", ".", "Output directory for generated files")
	format     = flag.String("format", "json", "Export format: json, svg, or all")
	name       = flag.String("name", "untitled", "Project name recorded in the saved .cmz file")
	seedFlag   = flag.Uint64("seed", 0, "Override the flow-simulation seed from config (0 = use config seed)")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
	versionF   = flag.Bool("version", false, "Print version and exit")
	help       = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *versionF {
		fmt.Printf("cornmazecad version %s\n", version)
		os.Exit(0)
	}
	if *help {
		printHelp()
		os.Exit(0)
	}

	if *fieldPath == "" && *loadPath == "" {
		fmt.Fprintln(os.Stderr, "Error: one of -field or -load is required")
		printUsage()
		os.Exit(1)
	}

	validFormats := map[string]bool{"json": true, "svg": true, "all": true}
	if !validFormats[*format] {
		fmt.Fprintf(os.Stderr, "Error: invalid format %q, must be one of: json, svg, all\n", *format)
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// fieldInput is the CLI's minimal field input format: a single already-
// projected polygon. Real GIS import (KML/Shapefile/GeoJSON parsing) is an
// out-of-scope I/O collaborator per §6; this is just enough to drive the
// engine from the command line.
type fieldInput struct {
	Points [][2]float64 `json:"points"`
	CRS    string       `json:"crs"`
}

// carveInput is the CLI's minimal stroke-carve batch format.
type carveInput struct {
	Points [][2]float64 `json:"points"`
	Width  float64      `json:"width"`
	Type   string       `json:"type"`
}

func run() error {
	cfg := session.DefaultConfig()
	if *configPath != "" {
		if *verbose {
			fmt.Printf("Loading configuration from %s\n", *configPath)
		}
		loaded, err := session.LoadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}
	if *seedFlag != 0 {
		cfg.FlowSeed = *seedFlag
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	sess := session.New(cfg)
	defer sess.Close()

	if *loadPath != "" {
		if *verbose {
			fmt.Printf("Loading project from %s\n", *loadPath)
		}
		doc, err := project.Load(*loadPath)
		if err != nil {
			return fmt.Errorf("failed to load project: %w", err)
		}
		if err := sess.RestoreDocument(doc); err != nil {
			return fmt.Errorf("failed to restore project: %w", err)
		}
	} else {
		if *verbose {
			fmt.Printf("Importing field from %s\n", *fieldPath)
		}
		poly, crs, err := readField(*fieldPath)
		if err != nil {
			return fmt.Errorf("failed to read field: %w", err)
		}
		warnings, err := sess.SetField(poly, crs)
		if err != nil {
			return fmt.Errorf("field import failed: %w", err)
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
		}
		if err := sess.SetRows(cfg.Rows); err != nil {
			return fmt.Errorf("row generation failed: %w", err)
		}
	}

	if *carvePath != "" {
		if err := applyCarves(sess, *carvePath); err != nil {
			return fmt.Errorf("carve failed: %w", err)
		}
	}

	start := time.Now()
	violations, err := sess.Validate()
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	m, err := sess.Metrics()
	if err != nil {
		return fmt.Errorf("metrics failed: %w", err)
	}
	elapsed := time.Since(start)

	if *verbose {
		printStats(violations, m, elapsed)
	}

	baseName := fmt.Sprintf("maze_%d", time.Now().Unix())

	if *format == "json" || *format == "all" {
		if err := exportProject(sess, baseName); err != nil {
			return err
		}
	}
	if *format == "svg" || *format == "all" {
		if err := exportSVG(sess, baseName); err != nil {
			return err
		}
	}

	fmt.Printf("Successfully processed maze design in %v (%d violations)\n", elapsed, len(violations))
	return nil
}

func readField(path string) (orb.Polygon, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	var in fieldInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, "", err
	}
	if len(in.Points) < 3 {
		return nil, "", fmt.Errorf("field must have at least 3 points, got %d", len(in.Points))
	}
	ring := make(orb.Ring, len(in.Points))
	for i, p := range in.Points {
		ring[i] = orb.Point{p[0], p[1]}
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}, in.CRS, nil
}

func applyCarves(sess *session.Session, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var ins []carveInput
	if err := json.Unmarshal(data, &ins); err != nil {
		return err
	}
	for i, in := range ins {
		pts := make([]orb.Point, len(in.Points))
		for j, p := range in.Points {
			pts[j] = orb.Point{p[0], p[1]}
		}
		stroke := carve.Stroke{Points: pts, Width: in.Width}
		elemType := in.Type
		if elemType == "" {
			elemType = "path"
		}
		warning, err := sess.Carve(elemType, stroke)
		if err != nil {
			return fmt.Errorf("carve element %d: %w", i, err)
		}
		if warning != "" && *verbose {
			fmt.Fprintf(os.Stderr, "warning (element %d): %s\n", i, warning)
		}
	}
	return nil
}

func exportProject(sess *session.Session, baseName string) error {
	filename := filepath.Join(*outputDir, baseName+".cmz")
	if *verbose {
		fmt.Printf("Exporting project to %s\n", filename)
	}
	doc, err := sess.Document(*name)
	if err != nil {
		return fmt.Errorf("failed to snapshot project: %w", err)
	}
	doc = project.Stamp(doc, time.Now())
	if err := project.Save(filename, filepath.Base(filename), doc); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	if *verbose {
		info, _ := os.Stat(filename)
		fmt.Printf("  Wrote %d bytes\n", info.Size())
	}
	return nil
}

func exportSVG(sess *session.Session, baseName string) error {
	filename := filepath.Join(*outputDir, baseName+".svg")
	if *verbose {
		fmt.Printf("Exporting debug SVG to %s\n", filename)
	}
	opts := project.DefaultDebugSVGOptions()
	if err := project.SaveDebugSVG(sess.Preview(), filename, opts, sess.Kernel()); err != nil {
		return fmt.Errorf("failed to export SVG: %w", err)
	}
	if *verbose {
		info, _ := os.Stat(filename)
		fmt.Printf("  Wrote %d bytes\n", info.Size())
	}
	return nil
}

func printStats(violations []constraints.Violation, m metrics.Metrics, elapsed time.Duration) {
	fmt.Printf("\nValidation completed in %v\n", elapsed)
	fmt.Printf("  Violations: %d\n", len(violations))
	for _, v := range violations {
		fmt.Printf("    [%s/%s] %s\n", v.Severity, v.Kind, v.Message)
	}
	fmt.Printf("\nMetrics:\n")
	fmt.Printf("  Difficulty: %.2f\n", m.DifficultyScore)
	fmt.Printf("  %+v\n", m)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "\nUsage: cornmazecad -field <field.json> [options]")
	fmt.Fprintln(os.Stderr, "\nRun 'cornmazecad -help' for detailed help")
}

func printHelp() {
	fmt.Printf("cornmazecad version %s\n\n", version)
	fmt.Println("A command-line tool for designing and validating corn-maze layouts.")
	fmt.Println("\nUsage:")
	fmt.Println("  cornmazecad -field <field.json> [options]")
	fmt.Println("  cornmazecad -load <project.cmz> [options]")
	fmt.Println("\nRequired Flags (one of):")
	fmt.Println("  -field string")
	fmt.Println("        Path to a field JSON file (already-projected polygon vertices)")
	fmt.Println("  -load string")
	fmt.Println("        Path to an existing .cmz project file")
	fmt.Println("\nOptional Flags:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML session configuration file")
	fmt.Println("  -carve string")
	fmt.Println("        Path to a JSON array of stroke carve intents to apply")
	fmt.Println("  -output string")
	fmt.Println("        Output directory for generated files (default: current directory)")
	fmt.Println("  -format string")
	fmt.Println("        Export format: json, svg, or all (default: json)")
	fmt.Println("  -name string")
	fmt.Println("        Project name recorded in the saved .cmz file (default: untitled)")
	fmt.Println("  -seed uint")
	fmt.Println("        Override the flow-simulation seed from config")
	fmt.Println("  -verbose")
	fmt.Println("        Enable verbose output")
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println("  -help")
	fmt.Println("        Show this help message")
	fmt.Println("\nExamples:")
	fmt.Println("  cornmazecad -field square.json -carve strokes.json -format all -output ./out")
	fmt.Println("  cornmazecad -load design.cmz -verbose")
}
