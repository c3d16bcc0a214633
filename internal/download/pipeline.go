// Package download fetches launcher metadata and reconciles artifacts on disk
// against their published SHA-1 hashes.
package download

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/client"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/natives"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/utils"
)

// DefaultConcurrency bounds parallel transfers when Options leaves it unset
const DefaultConcurrency = 16

// Options configures a Pipeline
type Options struct {
	CatalogURL   string
	ResourcesURL string
	Concurrency  int
	Platform     models.Platform
}

// Pipeline runs the fetch and verification steps of an install
type Pipeline struct {
	client *client.HTTPClient
	opts   Options
	locks  *pathLocks
}

// NewPipeline creates a pipeline. A zero Platform means the running one.
func NewPipeline(c *client.HTTPClient, opts Options) *Pipeline {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Platform.OS == "" {
		opts.Platform = models.CurrentPlatform()
	}
	opts.ResourcesURL = strings.TrimRight(opts.ResourcesURL, "/")

	return &Pipeline{
		client: c,
		opts:   opts,
		locks:  newPathLocks(),
	}
}

// Platform returns the platform rules are evaluated against
func (p *Pipeline) Platform() models.Platform {
	return p.opts.Platform
}

// target is one file to reconcile
type target struct {
	class string
	path  string
	url   string
	sha1  string
}

// FetchCatalog downloads the version catalog. It is never cached.
func (p *Pipeline) FetchCatalog(ctx context.Context) (*models.Catalog, error) {
	var catalog models.Catalog
	if err := p.client.GetJSON(ctx, p.opts.CatalogURL, &catalog); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	logger.Info("Fetched catalog with %d versions (latest release %s)", len(catalog.Versions), catalog.Latest.Release)
	return &catalog, nil
}

// FetchManifest downloads a version manifest and keeps a copy at versions/<id>/<id>.json
func (p *Pipeline) FetchManifest(ctx context.Context, version models.Version, versionsDir string) (*models.Manifest, error) {
	body, err := p.client.GetBytes(ctx, version.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest %s: %w", version.ID, err)
	}

	var manifest models.Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return nil, errs.Decode("decode manifest "+version.ID, err)
	}

	path := filepath.Join(versionsDir, manifest.ID, manifest.ID+".json")
	unlock := p.locks.lock(path)
	err = utils.AtomicWriteFile(path, body, 0644)
	unlock()
	if err != nil {
		return nil, errs.IO("persist manifest "+manifest.ID, err)
	}

	logger.Info("Fetched manifest for %s (%d libraries)", manifest.ID, len(manifest.Libraries))
	return &manifest, nil
}

// FetchAssetIndex returns the asset index ref points at. A stored copy under
// indexes/ is used only when its hash matches; otherwise it is fetched,
// verified and stored.
func (p *Pipeline) FetchAssetIndex(ctx context.Context, ref models.AssetIndexRef, assetsDir string) (*models.AssetIndex, error) {
	path := filepath.Join(assetsDir, "indexes", ref.ID+".json")
	unlock := p.locks.lock(path)
	defer unlock()

	exists, matches, err := matchesChecksum(path, ref.SHA1)
	if err != nil {
		return nil, errs.IO("verify asset index "+ref.ID, err)
	}

	var body []byte
	if matches || (exists && ref.SHA1 == "") {
		artifactsTotal.WithLabelValues(classIndex, resultSkipped).Inc()
		body, err = os.ReadFile(path)
		if err != nil {
			return nil, errs.IO("read asset index "+ref.ID, err)
		}
	} else {
		body, err = p.client.GetBytes(ctx, ref.URL)
		if err != nil {
			artifactsTotal.WithLabelValues(classIndex, resultFailed).Inc()
			return nil, fmt.Errorf("fetch asset index %s: %w", ref.ID, err)
		}
		if actual := checksumOf(body); ref.SHA1 != "" && !strings.EqualFold(actual, ref.SHA1) {
			artifactsTotal.WithLabelValues(classIndex, resultFailed).Inc()
			return nil, errs.Newf(errs.KindNetwork, "fetch asset index "+ref.ID, "checksum mismatch: expected %s, got %s", ref.SHA1, actual)
		}
		if err := utils.AtomicWriteFile(path, body, 0644); err != nil {
			return nil, errs.IO("persist asset index "+ref.ID, err)
		}
		result := resultFetched
		if exists {
			result = resultRefetched
		}
		artifactsTotal.WithLabelValues(classIndex, result).Inc()
	}

	var index models.AssetIndex
	if err := json.Unmarshal(body, &index); err != nil {
		return nil, errs.Decode("decode asset index "+ref.ID, err)
	}

	logger.Debug("Asset index %s lists %d objects", ref.ID, len(index.Objects))
	return &index, nil
}

// ObjectURL returns the remote location of an asset object
func (p *Pipeline) ObjectURL(obj models.AssetObject) string {
	return p.opts.ResourcesURL + "/" + obj.Path()
}

// SyncAssetObjects reconciles every object of index under assetsDir/objects.
// Objects sharing a hash are handled once. The first failure cancels the batch.
func (p *Pipeline) SyncAssetObjects(ctx context.Context, index *models.AssetIndex, assetsDir string, progress *Progress) error {
	seen := make(map[string]bool, len(index.Objects))
	targets := make([]target, 0, len(index.Objects))
	for _, obj := range index.Objects {
		if seen[obj.Hash] {
			continue
		}
		seen[obj.Hash] = true
		targets = append(targets, target{
			class: classAsset,
			path:  filepath.Join(assetsDir, "objects", filepath.FromSlash(obj.Path())),
			url:   p.ObjectURL(obj),
			sha1:  obj.Hash,
		})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].sha1 < targets[j].sha1 })

	progress.AddTotal(len(targets))
	logger.Info("Syncing %d asset objects", len(targets))

	if err := p.reconcileAll(ctx, targets, progress, nil); err != nil {
		return fmt.Errorf("sync assets: %w", err)
	}
	return nil
}

// ResolveAndFetchLibraries reconciles every library that applies on the
// pipeline's platform and returns the class path, in manifest order and
// without duplicates. Native classifiers are unpacked into nativesDir and
// left off the class path.
func (p *Pipeline) ResolveAndFetchLibraries(ctx context.Context, libs []models.Library, librariesDir, nativesDir string, progress *Progress) (string, error) {
	var resolved []models.ResolvedArtifact
	for _, lib := range libs {
		if !lib.Allowed(p.opts.Platform) {
			logger.Debug("Skipping library %s: rules disallow %s", lib.Name, p.opts.Platform.OS)
			continue
		}
		artifacts, err := lib.Artifacts(p.opts.Platform)
		if err != nil {
			return "", fmt.Errorf("resolve libraries: %w", err)
		}
		resolved = append(resolved, artifacts...)
	}

	targets := make([]target, len(resolved))
	for i, a := range resolved {
		class := classLibrary
		if a.Native {
			class = classNative
		}
		targets[i] = target{
			class: class,
			path:  filepath.Join(librariesDir, filepath.FromSlash(a.Path)),
			url:   a.URL,
			sha1:  a.SHA1,
		}
	}

	progress.AddTotal(len(targets))
	logger.Info("Fetching %d library artifacts", len(targets))

	ext := natives.Extension(p.opts.Platform.OS)
	slots := make([]string, len(targets))
	err := p.reconcileAll(ctx, targets, progress, func(i int) error {
		if !resolved[i].Native {
			slots[i] = targets[i].path
			return nil
		}
		if _, err := natives.Extract(targets[i].path, nativesDir, ext, resolved[i].Exclude); err != nil {
			return errs.IO("extract natives "+resolved[i].Library, err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("fetch libraries: %w", err)
	}

	return joinClassPath(slots), nil
}

func joinClassPath(slots []string) string {
	seen := make(map[string]bool, len(slots))
	entries := make([]string, 0, len(slots))
	for _, entry := range slots {
		if entry == "" || seen[entry] {
			continue
		}
		seen[entry] = true
		entries = append(entries, entry)
	}
	return strings.Join(entries, string(os.PathListSeparator))
}

// JarPath returns where a version's client jar is stored
func JarPath(versionsDir, id string) string {
	return filepath.Join(versionsDir, id, id+".jar")
}

// FetchJar reconciles the client jar at versions/<id>/<id>.jar and returns its path
func (p *Pipeline) FetchJar(ctx context.Context, manifest *models.Manifest, versionsDir string, progress *Progress) (string, error) {
	t := target{
		class: classJar,
		path:  JarPath(versionsDir, manifest.ID),
		url:   manifest.Downloads.Client.URL,
		sha1:  manifest.Downloads.Client.SHA1,
	}

	progress.AddTotal(1)
	if err := p.reconcile(ctx, t, progress); err != nil {
		return "", fmt.Errorf("fetch jar %s: %w", manifest.ID, err)
	}
	return t.path, nil
}

// reconcileAll runs reconcile over targets with bounded concurrency, calling
// after(i) once target i is in place.
func (p *Pipeline) reconcileAll(ctx context.Context, targets []target, progress *Progress, after func(i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for i := range targets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := p.reconcile(gctx, targets[i], progress); err != nil {
				return err
			}
			if after != nil {
				return after(i)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// A cancelled parent may stop the loop before any job fails.
	if err := ctx.Err(); err != nil {
		return errs.Network("reconcile", err)
	}
	return nil
}

// reconcile makes t.path hold content with hash t.sha1: a match is left
// alone, a mismatch is deleted and fetched once, a missing file is fetched.
func (p *Pipeline) reconcile(ctx context.Context, t target, progress *Progress) error {
	if err := ctx.Err(); err != nil {
		return errs.Network("reconcile "+t.url, err)
	}

	unlock := p.locks.lock(t.path)
	defer unlock()

	exists, matches, err := matchesChecksum(t.path, t.sha1)
	if err != nil {
		artifactsTotal.WithLabelValues(t.class, resultFailed).Inc()
		return errs.IO("verify "+t.path, err)
	}
	if matches {
		artifactsTotal.WithLabelValues(t.class, resultSkipped).Inc()
		progress.Done()
		return nil
	}

	result := resultFetched
	if exists {
		logger.Debug("Hash mismatch for %s, fetching again", t.path)
		if err := os.Remove(t.path); err != nil {
			artifactsTotal.WithLabelValues(t.class, resultFailed).Inc()
			return errs.IO("remove stale "+t.path, err)
		}
		result = resultRefetched
	}

	if _, err := downloadFile(ctx, p.client.HTTP(), t.url, t.path, t.sha1, progress); err != nil {
		artifactsTotal.WithLabelValues(t.class, resultFailed).Inc()
		return err
	}

	artifactsTotal.WithLabelValues(t.class, result).Inc()
	progress.Done()
	return nil
}
