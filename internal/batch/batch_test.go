package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshconv/internal/convert"
	"github.com/Faultbox/meshconv/pkg/meshasset"
)

const triangleScene = `
name: triangle
root:
  name: RootNode
  mesh:
    control_points: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
    polygons: [[0, 1, 2]]
`

const emptyScene = `
name: empty
root:
  name: RootNode
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestJobs(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(dir, "single.yaml")
	writeFile(t, single, triangleScene)
	writeFile(t, filepath.Join(dir, "tree", "a.yml"), triangleScene)
	writeFile(t, filepath.Join(dir, "tree", "sub", "b.yaml"), triangleScene)
	writeFile(t, filepath.Join(dir, "tree", "notes.txt"), "not a scene")

	jobs, err := Jobs([]string{single, filepath.Join(dir, "tree")}, "out", ".mesh")
	if err != nil {
		t.Fatalf("Jobs failed: %v", err)
	}

	a := filepath.Join(dir, "tree", "a.yml")
	b := filepath.Join(dir, "tree", "sub", "b.yaml")
	want := map[string]string{
		single: filepath.Join("out", "single.mesh"),
		a:      filepath.Join("out", "a.mesh"),
		b:      filepath.Join("out", "sub", "b.mesh"),
	}
	if len(jobs) != len(want) {
		t.Fatalf("expected %d jobs, got %d: %+v", len(want), len(jobs), jobs)
	}
	for _, job := range jobs {
		if want[job.Input] != job.Output {
			t.Errorf("%s: got output %s, want %s", job.Input, job.Output, want[job.Input])
		}
	}
}

func TestJobs_DuplicateOutput(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a", "rock.yaml")
	b := filepath.Join(dir, "b", "rock.yml")
	writeFile(t, a, triangleScene)
	writeFile(t, b, triangleScene)

	if _, err := Jobs([]string{a, b}, "out", ".mesh"); !errors.Is(err, ErrDuplicateOutput) {
		t.Errorf("expected ErrDuplicateOutput, got %v", err)
	}
}

func TestJobs_MissingInput(t *testing.T) {
	if _, err := Jobs([]string{filepath.Join(t.TempDir(), "missing.yaml")}, "out", ".mesh"); err == nil {
		t.Error("expected error for missing input")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	var inputs []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		path := filepath.Join(dir, name+".yaml")
		writeFile(t, path, triangleScene)
		inputs = append(inputs, path)
	}
	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, emptyScene)
	inputs = append(inputs, bad)

	w, _ := meshasset.NewWriter("binary")
	jobs, err := Jobs(inputs, outDir, w.Extension())
	if err != nil {
		t.Fatalf("Jobs failed: %v", err)
	}

	report := Run(context.Background(), Config{
		Workers:          3,
		Writer:           w,
		Log:              zap.NewNop(),
		ProgressInterval: time.Millisecond,
	}, jobs)

	if report.RunID == "" {
		t.Error("expected a run id")
	}
	if len(report.Results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(report.Results))
	}
	if report.Failed() != 1 {
		t.Errorf("expected 1 failed job, got %d", report.Failed())
	}

	for _, res := range report.Results {
		if res.Input == bad {
			if !errors.Is(res.Err, convert.ErrNoMesh) {
				t.Errorf("expected ErrNoMesh for %s, got %v", res.Input, res.Err)
			}
			continue
		}
		if res.Err != nil {
			t.Errorf("%s: unexpected error %v", res.Input, res.Err)
			continue
		}
		m, err := meshasset.ParseMeshFile(res.Output)
		if err != nil {
			t.Errorf("%s: reading output: %v", res.Output, err)
			continue
		}
		if len(m.Triangles) != 1 {
			t.Errorf("%s: expected 1 triangle, got %d", res.Output, len(m.Triangles))
		}
		if !errors.Is(res.Problems, convert.ErrNoMaterials) {
			t.Errorf("%s: expected no-materials problem, got %v", res.Input, res.Problems)
		}
	}

	// The triangle scene has no materials: one error per good job and one for the bad job.
	if got := report.Errors(); got != 6 {
		t.Errorf("expected 6 errors in total, got %d", got)
	}
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yaml")
	writeFile(t, path, triangleScene)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w, _ := meshasset.NewWriter("json")
	report := Run(ctx, Config{Workers: 2, Writer: w}, []Job{{Input: path, Output: filepath.Join(dir, "a.json")}})

	if !errors.Is(report.Results[0].Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", report.Results[0].Err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.json")); !os.IsNotExist(err) {
		t.Error("expected no output for a cancelled job")
	}
}
