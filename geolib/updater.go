package geolib

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	// FsTargetDirPrefix marks an active directory with a database of
	// the provider. All other directories and files in the base
	// directory are ok to be removed at any given moment in time.
	//
	// Suffix is a checksum of the directory contents, so the same
	// download never produces a new target directory.
	FsTargetDirPrefix = "target_"

	// FsTempDirPrefix marks directories which are populated by
	// provider during update. When download is finished, temporary
	// directory is renamed into a target one and opened by provider.
	FsTempDirPrefix = "tmp_"
)

var errNoTargetDir = errors.New("cannot find a target dir")

// Updater keeps a database of updatable provider fresh. On start it
// opens the latest downloaded database if any and then downloads a
// new one every provider.UpdateEvery().
type Updater struct {
	fs       afero.Fs
	baseDir  string
	provider UpdatableProvider
	logger   Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// Start opens an existing database and runs background updates until
// ctx is closed or Shutdown is called.
func (u *Updater) Start(ctx context.Context) error {
	if err := u.doInitialCleaning(); err != nil {
		return fmt.Errorf("cannot do an initial cleaning: %w", err)
	}

	targetDir, err := u.getTargetDir()

	switch {
	case err == nil:
		if err := u.provider.Open(u.subFs(targetDir)); err != nil {
			return fmt.Errorf("cannot open a directory %s: %w", targetDir, err)
		}
	case !errors.Is(err, errNoTargetDir):
		return fmt.Errorf("cannot detect target dir: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	u.cancel = cancel

	u.wg.Add(1)

	go func() {
		defer u.wg.Done()

		u.bgUpdate(ctx)
	}()

	return nil
}

// Shutdown stops background updates and closes provider.
func (u *Updater) Shutdown() {
	if u.cancel != nil {
		u.cancel()
	}

	u.wg.Wait()
	u.provider.Shutdown()
}

func (u *Updater) doInitialCleaning() error {
	infos, err := afero.ReadDir(u.fs, u.baseDir)
	if err != nil {
		return fmt.Errorf("cannot read a base directory: %w", err)
	}

	targetDirs := []string{}
	toDelete := []string{}

	for _, v := range infos {
		fullPath := filepath.Join(u.baseDir, v.Name())

		if v.IsDir() && strings.HasPrefix(v.Name(), FsTargetDirPrefix) {
			targetDirs = append(targetDirs, fullPath)
		} else {
			toDelete = append(toDelete, fullPath)
		}
	}

	// it is not possible to say which target is correct.
	if len(targetDirs) > 1 {
		toDelete = append(toDelete, targetDirs...)
	}

	for _, v := range toDelete {
		if err := u.fs.RemoveAll(v); err != nil {
			return fmt.Errorf("cannot delete %s: %w", v, err)
		}
	}

	return nil
}

func (u *Updater) bgUpdate(ctx context.Context) {
	ticker := time.NewTicker(u.provider.UpdateEvery())
	defer ticker.Stop()

	for {
		if err := u.doUpdate(ctx); err != nil {
			u.logger.UpdateError(u.provider.Name(), err)
		} else {
			u.logger.UpdateInfo(u.provider.Name(), "database is up to date")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (u *Updater) doUpdate(ctx context.Context) error {
	currentTargetDir, err := u.getTargetDir()
	if err != nil && !errors.Is(err, errNoTargetDir) {
		return fmt.Errorf("cannot detect current target dir: %w", err)
	}

	tmpDir, err := afero.TempDir(u.fs, u.baseDir, FsTempDirPrefix)
	if err != nil {
		return fmt.Errorf("cannot create a temporary directory: %w", err)
	}

	defer u.fs.RemoveAll(tmpDir) // nolint: errcheck

	if err := u.provider.Download(ctx, u.subFs(tmpDir)); err != nil {
		return fmt.Errorf("cannot download to tmp directory: %w", err)
	}

	targetDirName, err := u.getTargetDirName(tmpDir)
	if err != nil {
		return fmt.Errorf("cannot get a target dir name: %w", err)
	}

	if targetDirName == currentTargetDir {
		return nil
	}

	if err := u.fs.Rename(tmpDir, targetDirName); err != nil {
		return fmt.Errorf("cannot rename tmp dir to target one: %w", err)
	}

	if err := u.provider.Open(u.subFs(targetDirName)); err != nil {
		u.fs.RemoveAll(targetDirName) // nolint: errcheck

		return fmt.Errorf("cannot open a target dir: %w", err)
	}

	if currentTargetDir != "" {
		if err := u.fs.RemoveAll(currentTargetDir); err != nil {
			return fmt.Errorf("cannot remove previous target dir: %w", err)
		}
	}

	return nil
}

func (u *Updater) getTargetDir() (string, error) {
	infos, err := afero.ReadDir(u.fs, u.baseDir)
	if err != nil {
		return "", fmt.Errorf("cannot read base directory: %w", err)
	}

	for _, v := range infos {
		if v.IsDir() && strings.HasPrefix(v.Name(), FsTargetDirPrefix) {
			return filepath.Join(u.baseDir, v.Name()), nil
		}
	}

	return "", errNoTargetDir
}

func (u *Updater) getTargetDirName(dir string) (string, error) {
	hasher := sha256.New()
	newFileSign := []byte{0}
	fileContentsSign := []byte{1}

	err := afero.Walk(u.fs, dir, func(path string, info os.FileInfo, err error) error {
		switch {
		case err != nil:
			return err
		case info.IsDir():
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("cannot build a relative path of %s to %s: %w", path, dir, err)
		}

		hasher.Write(newFileSign)                       // nolint: errcheck
		hasher.Write([]byte(filepath.ToSlash(relPath))) // nolint: errcheck
		hasher.Write(fileContentsSign)                  // nolint: errcheck

		fp, err := u.fs.Open(path)
		if err != nil {
			return fmt.Errorf("cannot open a file %s: %w", path, err)
		}

		defer fp.Close()

		if _, err := io.Copy(hasher, fp); err != nil {
			return fmt.Errorf("cannot copy a file contents of %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("cannot traverse directory %s: %w", dir, err)
	}

	baseName := FsTargetDirPrefix + hex.EncodeToString(hasher.Sum(nil))

	return filepath.Join(u.baseDir, baseName), nil
}

func (u *Updater) subFs(dir string) *afero.BasePathFs {
	return afero.NewBasePathFs(u.fs, dir).(*afero.BasePathFs)
}

// NewUpdater creates an updater which keeps databases in a base
// directory of the provider.
func NewUpdater(provider UpdatableProvider, logger Logger) *Updater {
	return &Updater{
		fs:       afero.NewOsFs(),
		baseDir:  filepath.Clean(provider.BaseDirectory()),
		provider: provider,
		logger:   logger,
	}
}
