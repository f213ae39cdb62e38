package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
)

func TestRunDispatch(t *testing.T) {
	if code := run(nil); code != ExitInvalidArgs {
		t.Errorf("expected ExitInvalidArgs for no args, got %d", code)
	}
	if code := run([]string{"bogus"}); code != ExitInvalidArgs {
		t.Errorf("expected ExitInvalidArgs for unknown command, got %d", code)
	}
	if code := run([]string{"help"}); code != ExitSuccess {
		t.Errorf("expected ExitSuccess for help, got %d", code)
	}
}

func TestHarvestMissingFlags(t *testing.T) {
	if code := runHarvest(nil); code != ExitInvalidArgs {
		t.Errorf("expected ExitInvalidArgs without endpoint/bucket, got %d", code)
	}
}

// acceptEveryOther serves a valid resource for even identifiers and a 404
// for odd ones, so a run exercises both fold paths.
func acceptEveryOther(requests *atomic.Int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		id, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		if id%2 != 0 {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="recipe-%d.bsmx"`, id))
		fmt.Fprintf(w, "<Recipes><Recipe id=%q/></Recipes>", strconv.FormatUint(id, 10))
	})
}

func TestHarvestEndToEnd(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(acceptEveryOther(&requests))
	defer server.Close()

	outDir := t.TempDir()

	code := runHarvest([]string{
		"-endpoint", server.URL + "/download.php?id=%d",
		"-bucket", "file://" + outDir,
		"-goal", "6",
		"-batch", "4",
		"-min-id", "1",
		"-max-id", "1000",
		"-pause", "1ms",
		"-seed", "7",
	})
	if code != ExitSuccess {
		t.Fatalf("harvest failed with exit code %d", code)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	bsmx := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".bsmx" {
			bsmx++
		}
	}
	if bsmx < 6 {
		t.Errorf("expected at least 6 resources in output dir, got %d", bsmx)
	}
	if requests.Load() == 0 {
		t.Error("expected probes against the endpoint")
	}
}

func TestHarvestTargetAlreadyReached(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(acceptEveryOther(&requests))
	defer server.Close()

	outDir := t.TempDir()
	for i := 0; i < 3; i++ {
		path := filepath.Join(outDir, fmt.Sprintf("%d.bsmx", i))
		if err := os.WriteFile(path, []byte("<Recipes/>"), 0644); err != nil {
			t.Fatalf("seed resource: %v", err)
		}
	}

	code := runHarvest([]string{
		"-endpoint", server.URL + "/download.php?id=%d",
		"-bucket", "file://" + outDir,
		"-goal", "3",
		"-max-id", "1000",
	})
	if code != ExitSuccess {
		t.Fatalf("harvest failed with exit code %d", code)
	}
	if requests.Load() != 0 {
		t.Errorf("expected zero probes when target already reached, got %d", requests.Load())
	}
}

func TestHarvestExactCapacity(t *testing.T) {
	// Range equals goal: one accept-all round drains the whole range and
	// lands exactly on the goal.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<Recipes/>")
	}))
	defer server.Close()

	code := runHarvest([]string{
		"-endpoint", server.URL + "/download.php?id=%d",
		"-bucket", "file://" + t.TempDir(),
		"-goal", "8",
		"-batch", "8",
		"-min-id", "1",
		"-max-id", "8",
	})
	if code != ExitSuccess {
		t.Fatalf("expected success at exact capacity, got %d", code)
	}
}

func TestScanCommand(t *testing.T) {
	outDir := t.TempDir()
	for _, name := range []string{"a.bsmx", "b.bsmx", "c.txt"} {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte("<x/>"), 0644); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if code := runScan([]string{"-bucket", "file://" + outDir}); code != ExitSuccess {
		t.Errorf("scan failed with exit code %d", code)
	}
	if code := runScan(nil); code != ExitInvalidArgs {
		t.Errorf("expected ExitInvalidArgs without bucket, got %d", code)
	}
}
