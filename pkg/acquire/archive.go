package acquire

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// zipMagic is the local-file-header signature every zip archive starts with.
var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// ArchiveStrategy acquires the framework by downloading the main-branch zip
// archive. It needs no host tooling, making it the fallback when git is not
// installed.
type ArchiveStrategy struct {
	client     *http.Client
	archiveURL string
	tempDir    string
}

// NewArchiveStrategy creates an archive-download strategy. An empty tempDir
// uses the system temp directory.
func NewArchiveStrategy(archiveURL string, timeout time.Duration, tempDir string) *ArchiveStrategy {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &ArchiveStrategy{
		client:     &http.Client{Timeout: timeout},
		archiveURL: archiveURL,
		tempDir:    tempDir,
	}
}

// Method identifies the strategy.
func (a *ArchiveStrategy) Method() Method {
	return MethodArchive
}

// Available always reports true: the strategy needs only network access,
// which cannot be checked meaningfully ahead of the transfer.
func (a *ArchiveStrategy) Available(ctx context.Context) bool {
	return true
}

// Fetch downloads the archive to a temporary file, verifies it, and extracts
// it into target. The temporary file is removed on every exit path.
func (a *ArchiveStrategy) Fetch(ctx context.Context, target string) error {
	tmpPath, err := a.download(ctx)
	if tmpPath != "" {
		defer func() {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Warn().Err(rmErr).Str("path", tmpPath).
					Msg("Failed to remove temporary archive")
			}
		}()
	}
	if err != nil {
		return err
	}

	if err := a.extract(tmpPath, target); err != nil {
		return fmt.Errorf("failed to extract archive: %w", err)
	}
	return nil
}

// Refresh is unsupported: re-layering an archive over a populated target
// would shadow local state instead of syncing it.
func (a *ArchiveStrategy) Refresh(ctx context.Context, target string) error {
	return ErrRefreshUnsupported
}

// download transfers the archive to a temp file and verifies the transfer.
// The temp file path is returned even on error so the caller can clean up.
func (a *ArchiveStrategy) download(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.archiveURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build archive request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("archive download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("archive download failed: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(a.tempDir, "claude-bootstrap-*.zip")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary archive: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return tmpPath, fmt.Errorf("archive transfer failed: %w", err)
	}
	if written == 0 {
		return tmpPath, fmt.Errorf("archive transfer produced an empty file")
	}

	if err := verifyZipMagic(tmpPath); err != nil {
		return tmpPath, err
	}

	log.Debug().
		Int64("bytes", written).
		Str("url", a.archiveURL).
		Msg("Archive downloaded")
	return tmpPath, nil
}

// verifyZipMagic checks the archive starts with the zip signature, catching
// truncated transfers and HTML error pages served with status 200.
func verifyZipMagic(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to reopen archive: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(zipMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("archive too short to be a zip file: %w", err)
	}
	if !bytes.Equal(header, zipMagic) {
		return fmt.Errorf("downloaded file is not a zip archive (bad signature %x)", header)
	}
	return nil
}

// extract unpacks the archive into target, stripping the single top-level
// directory GitHub wraps branch archives in (<repo>-main/...).
func (a *ArchiveStrategy) extract(archivePath, target string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}

	for _, entry := range reader.File {
		rel := stripTopDir(entry.Name)
		if rel == "" {
			continue
		}

		dest := filepath.Join(target, filepath.FromSlash(rel))
		if !strings.HasPrefix(dest, filepath.Clean(target)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes the target directory", entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, entry.Mode().Perm()|0o700); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", rel, err)
			}
			continue
		}

		if err := extractFile(entry, dest); err != nil {
			return fmt.Errorf("failed to extract %s: %w", rel, err)
		}
	}
	return nil
}

func extractFile(entry *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	dst, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	return err
}

// stripTopDir drops the first path component of a zip entry name. Branch
// archives hold everything under one top-level directory; the empty string
// is returned for that directory itself.
func stripTopDir(name string) string {
	name = strings.Trim(name, "/")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return ""
}
