package download

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.bug.st/downloader/v2"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/client"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/utils"
)

const pollInterval = 100 * time.Millisecond

// calculateChecksum calculates the SHA-1 checksum of a file
func calculateChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha1.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate checksum: %w", err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

func checksumOf(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

// matchesChecksum reports whether filePath exists with the expected hash.
// A missing file is not an error.
func matchesChecksum(filePath, expected string) (exists, matches bool, err error) {
	actual, err := calculateChecksum(filePath)
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, strings.EqualFold(actual, expected), nil
}

// pathLocks serialises work on the same destination path
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*pathLock)}
}

func (l *pathLocks) lock(path string) func() {
	l.mu.Lock()
	pl, ok := l.locks[path]
	if !ok {
		pl = &pathLock{}
		l.locks[path] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()
	return func() {
		pl.mu.Unlock()

		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, path)
		}
		l.mu.Unlock()
	}
}

// downloadFile streams url into a temporary file beside dest, checks its hash
// and renames it into place.
func downloadFile(ctx context.Context, httpClient *http.Client, url, dest, expected string, progress *Progress) (int64, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, errs.IO("create directory", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".tmp.*")
	if err != nil {
		return 0, errs.IO("create temporary file", err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	d, err := downloader.DownloadWithConfigAndContext(ctx, tmpName, url, downloader.Config{
		HttpClient:          *httpClient,
		DoNotResumeDownload: true,
		ExtraHeaders:        map[string]string{"User-Agent": client.UserAgent()},
	})
	if err != nil {
		return 0, errs.Network("download "+url, err)
	}
	if err := client.CheckStatus(d.Resp); err != nil {
		_ = d.Close()
		return 0, err
	}
	if d.Size() == 0 {
		// Run treats an empty body as already complete and leaves the transfer open.
		_ = d.Close()
		return 0, installEmpty(url, dest, expected)
	}

	var reported int64
	err = d.RunAndPoll(func(current int64) {
		progress.AddBytes(current - reported)
		reported = current
	}, pollInterval)
	downloadedBytes.Add(float64(reported))
	if err != nil {
		return reported, errs.Network("download "+url, err)
	}

	actual, err := calculateChecksum(tmpName)
	if err != nil {
		return reported, errs.IO("verify "+dest, err)
	}
	if expected != "" && !strings.EqualFold(actual, expected) {
		logger.Warn("Checksum mismatch for %s: expected %s, got %s", url, expected, actual)
		return reported, errs.Newf(errs.KindNetwork, "download "+url, "checksum mismatch: expected %s, got %s", expected, actual)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return reported, errs.IO("install "+dest, err)
	}
	return reported, nil
}

func installEmpty(url, dest, expected string) error {
	if actual := checksumOf(nil); expected != "" && !strings.EqualFold(actual, expected) {
		logger.Warn("Checksum mismatch for %s: expected %s, got %s", url, expected, actual)
		return errs.Newf(errs.KindNetwork, "download "+url, "checksum mismatch: expected %s, got %s", expected, actual)
	}
	if err := utils.AtomicWriteFile(dest, nil, 0644); err != nil {
		return errs.IO("install "+dest, err)
	}
	return nil
}
