package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/async"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/bridge"
)

const pollInterval = 100 * time.Millisecond

// RunInstall drives a full install of versionID through the bridge: the
// catalog if it is not loaded yet, the manifest, then libraries, assets and
// the client jar side by side. An empty versionID selects the latest release.
// report receives every state change and a progress sample on each poll.
func RunInstall(ctx context.Context, b *bridge.Bridge, versionID string, report func(StageUpdate)) error {
	if !b.CatalogLoaded() {
		if err := runTasks(ctx, b, "", []async.Kind{async.KindCatalog}, report); err != nil {
			return err
		}
	} else {
		report(StageUpdate{Kind: async.KindCatalog, State: StateDone})
	}

	if err := runTasks(ctx, b, versionID, []async.Kind{async.KindManifest}, report); err != nil {
		return err
	}

	return runTasks(ctx, b, "", []async.Kind{async.KindLibraries, async.KindAssets, async.KindJar}, report)
}

func runTasks(ctx context.Context, b *bridge.Bridge, arg string, kinds []async.Kind, report func(StageUpdate)) error {
	pending := make(map[async.Kind]async.Handle, len(kinds))
	for _, kind := range kinds {
		pending[kind] = b.CreateTask(kind, arg)
		report(StageUpdate{Kind: kind, State: StateRunning})
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var firstErr error
	for {
		for _, kind := range kinds {
			h, ok := pending[kind]
			if !ok {
				continue
			}

			progress := b.Progress(h)
			if !b.Poll(h) {
				report(StageUpdate{Kind: kind, State: StateRunning, Progress: progress})
				continue
			}

			progress = b.Progress(h)
			delete(pending, kind)
			if err := awaitTask(b, h, kind); err != nil {
				report(StageUpdate{Kind: kind, State: StateFailed, Progress: progress, Error: err})
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			report(StageUpdate{Kind: kind, State: StateDone, Progress: progress})
		}

		if len(pending) == 0 {
			return firstErr
		}

		select {
		case <-ctx.Done():
			for kind, h := range pending {
				<-b.Cancel(h, kind)
				report(StageUpdate{Kind: kind, State: StateFailed, Error: ctx.Err()})
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func awaitTask(b *bridge.Bridge, h async.Handle, kind async.Kind) error {
	res := b.Await(h, kind)
	if res.Code == bridge.Success {
		return nil
	}

	text := b.Text(res.Error)
	b.FreeString(res.Error)
	return fmt.Errorf("%s task failed (%s): %s", kind, res.Code, text)
}
