package tui

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/async"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/bridge"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/client"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/download"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/state"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/testserver"
)

type recorder struct {
	mu    sync.Mutex
	final map[async.Kind]StageUpdate
}

func (r *recorder) report(u StageUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.final == nil {
		r.final = make(map[async.Kind]StageUpdate)
	}
	r.final[u.Kind] = u
}

func newInstallBridge(t *testing.T) (*bridge.Bridge, *testserver.Fixture) {
	t.Helper()

	f := testserver.NewFixture()
	t.Cleanup(f.Close)

	rt := async.NewRuntime(2)
	t.Cleanup(rt.Shutdown)

	pipeline := download.NewPipeline(client.NewHTTPClient(5*time.Second), download.Options{
		CatalogURL:   f.CatalogURL(),
		ResourcesURL: f.ResourcesURL(),
		Concurrency:  4,
		Platform:     models.Platform{OS: "linux", Arch: "x86_64"},
	})
	b := bridge.New(rt, state.New(filepath.Join(t.TempDir(), "synth_launcher")), pipeline, nil, nil)
	t.Cleanup(b.Close)
	return b, f
}

func TestRunInstall(t *testing.T) {
	b, f := newInstallBridge(t)
	rec := &recorder{}

	require.NoError(t, RunInstall(context.Background(), b, "", rec.report))

	for _, kind := range Stages {
		assert.Equal(t, StateDone, rec.final[kind].State, kind)
	}
	assert.Equal(t, models.TaskProgress{Finished: 1, Total: 1, Bytes: int64(len(f.JarBytes))}, rec.final[async.KindJar].Progress)
	assert.Equal(t, "1.20", b.Store().Manifest().ID)
	assert.Zero(t, b.Tasks().Active())
	assert.Zero(t, b.Strings().Outstanding())

	require.NoError(t, RunInstall(context.Background(), b, "1.20", rec.report))
	assert.Equal(t, 1, f.Server.Gets(testserver.CatalogPath), "a loaded catalog is reused")
	assert.Equal(t, 1, f.Server.Gets(testserver.JarPath), "verified files are not fetched again")
}

func TestRunInstallReportsFailure(t *testing.T) {
	b, f := newInstallBridge(t)
	f.Server.Fail(testserver.LibraryPath, 500)
	rec := &recorder{}

	err := RunInstall(context.Background(), b, "1.20", rec.report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "libraries task failed (network_error)")

	assert.Equal(t, StateFailed, rec.final[async.KindLibraries].State)
	assert.Equal(t, StateDone, rec.final[async.KindJar].State, "sibling tasks still complete")
	assert.Zero(t, b.Strings().Outstanding())
}
