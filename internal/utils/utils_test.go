package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFileReader_CachesUntilFileChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Foo.kt")
	writeFile(t, path, "interface Foo")

	reader := NewFileReader()
	first, err := reader.ReadFile(path)
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	if _, err := reader.ReadFile(path); err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if stats := reader.CacheStats(); stats.Hits != 1 || stats.Size != 1 {
		t.Errorf("expected one cached entry and one hit, got %+v", stats)
	}

	writeFile(t, path, "interface Foo { suspend fun run() }")
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	second, err := reader.ReadFile(path)
	if err != nil {
		t.Fatalf("read after change failed: %v", err)
	}
	if first == second {
		t.Error("expected the changed content to be read from disk")
	}
}

func TestFileReader_RejectsMissingAndEmptyPaths(t *testing.T) {
	reader := NewFileReader()

	if _, err := reader.ReadFile(""); err == nil {
		t.Error("expected an error for an empty path")
	}
	if _, err := reader.ReadFile(filepath.Join(t.TempDir(), "missing.kt")); err == nil ||
		!strings.Contains(err.Error(), "does not exist") {
		t.Errorf("expected a missing file error, got %v", err)
	}
}

func TestFileProcessor_ExpandInputs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "pk1", "Foo.kt"), "")
	writeFile(t, filepath.Join(root, "src", "pk1", "api.decl.yaml"), "")
	writeFile(t, filepath.Join(root, "src", "pk1", "README.md"), "")
	writeFile(t, filepath.Join(root, "src", "build", "Gen.kt"), "")
	writeFile(t, filepath.Join(root, "src", ".idea", "Hidden.kt"), "")
	writeFile(t, filepath.Join(root, "generated", "JBlockingFoo.kt"), "")
	writeFile(t, filepath.Join(root, "Single.kts"), "")

	fp := NewFileProcessor()
	options := FileWalkOptions{
		FileFilter:      KotlinInputFilter(),
		DirectoryFilter: ExcludingDirectories(DefaultDirectoryFilter(), filepath.Join(root, "generated")),
	}

	files, err := fp.ExpandInputs([]string{root + "/...", filepath.Join(root, "Single.kts")}, options)
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}

	var rel []string
	for _, f := range files {
		r, _ := filepath.Rel(root, f)
		rel = append(rel, filepath.ToSlash(r))
	}
	want := []string{"Single.kts", "src/pk1/Foo.kt", "src/pk1/api.decl.yaml"}
	if strings.Join(rel, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, rel)
	}

	if _, err := fp.ExpandInputs([]string{filepath.Join(root, "nope")}, options); err == nil {
		t.Error("expected an error for a missing input")
	}
}

func TestValidators(t *testing.T) {
	if err := IsKotlinIdentifier("prefix")("JBlocking"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := IsKotlinIdentifier("prefix")("J-Blocking"); err == nil {
		t.Error("expected an invalid identifier error")
	}
	if err := IsQualifiedName("marker")("love.forte.suspendreversal.annotations.SuspendReversal"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := IsQualifiedName("marker")("love..forte"); err == nil {
		t.Error("expected an error for an empty segment")
	}

	chain := NewValidatorChain(AtLeast("workers", 0)).Add(Custom("workers", "too many workers", func(n int) bool { return n <= 64 }))
	if err := chain.Validate(-1); err == nil || !strings.Contains(err.Error(), "at least 0") {
		t.Errorf("expected a lower bound error, got %v", err)
	}
	if err := chain.Validate(100); err == nil || !strings.Contains(err.Error(), "too many workers") {
		t.Errorf("expected the custom error, got %v", err)
	}
}

func TestBaseRegistry(t *testing.T) {
	registry := NewBaseRegistry[string, int]("types")
	registry.SetValidator(ChainValidators(
		NotEmptyKeyValidator[int]("type name"),
		NoDuplicateValidator[string, int]("type name"),
	))

	for _, key := range []string{"b", "a"} {
		if err := registry.Register(key, len(key)); err != nil {
			t.Fatalf("register %s: %v", key, err)
		}
	}
	if err := registry.Register("a", 2); err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Errorf("expected a duplicate error, got %v", err)
	}
	if err := registry.Register("", 0); err == nil {
		t.Error("expected an empty key error")
	}

	var visited []string
	registry.ForEach(func(k string, _ int) { visited = append(visited, k) })
	if strings.Join(visited, "") != "ab" {
		t.Errorf("expected key order, got %v", visited)
	}
}

func TestDiagnosticSystem_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticInfo)
	d.SetOutput(&out, &errOut)

	d.Info("parsed %d files", 2)
	d.Verbose("hidden")
	d.Error("broken")
	d.Summary("Summary", map[string]interface{}{"types": 1, "files": 3})

	if !strings.Contains(out.String(), "[INFO] parsed 2 files") {
		t.Errorf("missing info line: %q", out.String())
	}
	if strings.Contains(out.String(), "hidden") {
		t.Error("verbose output leaked at info level")
	}
	if !strings.Contains(errOut.String(), "[ERROR] broken") {
		t.Errorf("missing error line: %q", errOut.String())
	}
	if strings.Index(out.String(), "files: 3") > strings.Index(out.String(), "types: 1") {
		t.Error("summary keys are not sorted")
	}
}
