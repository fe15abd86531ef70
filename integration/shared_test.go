//go:build basic || database

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedHubstatsPath holds the path to a shared hubstats binary built once for all tests.
	sharedHubstatsPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getHubstatsBinary returns the path to the hubstats binary, building it once if needed.
func getHubstatsBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "hubstats-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		hubstatsPath := filepath.Join(tempDir, "hubstats")
		buildCmd := exec.Command("go", "build", "-o", hubstatsPath, ".")
		buildCmd.Dir = ".." // Build from project root
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build hubstats: %v", err))
		}

		sharedHubstatsPath = hubstatsPath
	})

	return sharedHubstatsPath
}

// runHubstats runs the binary from the project root and returns its stdout.
func runHubstats(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getHubstatsBinary(), args...)
	cmd.Dir = "../"
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
		return stdout.String(), err
	}
	return stdout.String(), nil
}

// fakeUpstream serves Docker Hub and GitHub repository documents from one server.
type fakeUpstream struct {
	*httptest.Server
	pulls atomic.Int64
	stars atomic.Int64
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/jhumanj/opnform-api", "/jhumanj/opnform-client":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"name":       strings.TrimPrefix(r.URL.Path, "/jhumanj/"),
				"namespace":  "jhumanj",
				"pull_count": f.pulls.Load(),
			})
		case "/opnform/opnform":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"name":             "opnform",
				"full_name":        "opnform/opnform",
				"stargazers_count": f.stars.Load(),
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

// upstreamArgs points both sources at the fake server.
func (f *fakeUpstream) upstreamArgs() []string {
	return []string{"--docker-hub-url", f.URL, "--github-url", f.URL}
}

// exerciseStore drives a full ingest, render and maintenance cycle through the CLI.
func exerciseStore(t *testing.T, storeArgs ...string) {
	t.Helper()
	upstream := newFakeUpstream(t)
	args := func(extra ...string) []string {
		out := append([]string{}, extra...)
		out = append(out, storeArgs...)
		return append(out, upstream.upstreamArgs()...)
	}

	_, err := runHubstats(t, append([]string{"store", "clear"}, storeArgs...)...)
	require.NoError(t, err)

	_, err = runHubstats(t, append([]string{"store", "migrate"}, storeArgs...)...)
	require.NoError(t, err)

	upstream.pulls.Store(1000)
	upstream.stars.Store(40)
	_, err = runHubstats(t, args("ingest", "--as-of", "2024-05-02")...)
	require.NoError(t, err)

	upstream.pulls.Store(1250)
	upstream.stars.Store(42)
	_, err = runHubstats(t, args("ingest", "--as-of", "2024-05-03")...)
	require.NoError(t, err)

	// Re-running a day must not add rows or change totals
	_, err = runHubstats(t, args("ingest", "--as-of", "2024-05-03")...)
	require.NoError(t, err)

	out, err := runHubstats(t, args("series", "pulls:jhumanj/opnform-api", "--as-of", "2024-05-03", "--window", "3", "--output", "json")...)
	require.NoError(t, err)
	var series struct {
		Total       int64            `json:"total"`
		Live        bool             `json:"live"`
		Accumulated map[string]int64 `json:"accumulated"`
		Unique      map[string]int64 `json:"unique"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &series))
	require.Equal(t, int64(1250), series.Total)
	require.False(t, series.Live)
	require.Len(t, series.Accumulated, 3)
	require.Equal(t, int64(1000), series.Accumulated["2024-05-01"])
	require.Equal(t, int64(250), series.Unique["2024-05-02"])
	require.Equal(t, int64(1250), series.Accumulated["2024-05-03"])
	require.Equal(t, int64(0), series.Unique["2024-05-03"])

	out, err = runHubstats(t, args("dashboard", "--as-of", "2024-05-03", "--window", "3", "--width", "200")...)
	require.NoError(t, err)
	require.Contains(t, out, "jhumanj/opnform-api")
	require.Contains(t, out, "opnform/opnform")

	out, err = runHubstats(t, append([]string{"store", "runs", "--output", "csv"}, storeArgs...)...)
	require.NoError(t, err)
	require.Contains(t, out, "run_id,start_time,end_time,snapshot_date,snapshots_written,failed")
	require.Contains(t, out, "2024-05-01")
	require.Contains(t, out, "2024-05-02")

	out, err = runHubstats(t, append([]string{"store", "status"}, storeArgs...)...)
	require.NoError(t, err)
	require.Contains(t, out, "pulls:jhumanj/opnform-api")
}
