// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// BackupSuffix is appended to a file's path to name its backup
const BackupSuffix = ".bak"

// ErrFileNotFound means the target path does not exist
var ErrFileNotFound = errors.Base("file not found")

// 💾 FileManager handles all file system operations
type FileManager interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	FileExists(ctx context.Context, path string) (bool, error)

	// WriteFile overwrites path in place, keeping its permissions
	WriteFile(ctx context.Context, path string, content []byte) error

	// WriteFileAtomic writes a sibling temp file and renames it over path
	WriteFileAtomic(ctx context.Context, path string, content []byte) error

	// BackupFile copies path to path+BackupSuffix and returns the backup path
	BackupFile(ctx context.Context, path string) (string, error)
	RestoreFile(ctx context.Context, path string) error
}

var _ FileManager = (*Manager)(nil)

// 🔧 Manager implements FileManager on the local disk
type Manager struct {
	baseDir string // relative paths resolve against this
}

// 🏭 New creates a new file manager rooted at baseDir
func New(baseDir string) *Manager {
	return &Manager{
		baseDir: filepath.Clean(baseDir),
	}
}

// Path returns the path a FileManager method would operate on
func (m *Manager) Path(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(m.baseDir, path)
}

// 🔍 Checksum generates a SHA-256 hash of the content
func Checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	absPath := m.Path(path)
	zerolog.Ctx(ctx).Debug().Str("path", absPath).Msg("reading file")

	content, err := os.ReadFile(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Errorf("%w: %s", ErrFileNotFound, absPath)
	}
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

func (m *Manager) FileExists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(m.Path(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errors.Errorf("checking file existence: %w", err)
}

// fileMode returns the permissions of an existing file
func (m *Manager) fileMode(absPath string) (fs.FileMode, error) {
	info, err := os.Stat(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, errors.Errorf("%w: %s", ErrFileNotFound, absPath)
	}
	if err != nil {
		return 0, errors.Errorf("stat file: %w", err)
	}
	return info.Mode().Perm(), nil
}

func (m *Manager) WriteFile(ctx context.Context, path string, content []byte) error {
	absPath := m.Path(path)
	zerolog.Ctx(ctx).Debug().Str("path", absPath).Int("bytes", len(content)).Msg("writing file in place")

	mode, err := m.fileMode(absPath)
	if err != nil {
		return err
	}

	if err := os.WriteFile(absPath, content, mode); err != nil {
		return errors.Errorf("writing file: %w", err)
	}
	return nil
}

func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) (err error) {
	absPath, err := resolveLink(m.Path(path))
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Str("path", absPath).Int("bytes", len(content)).Msg("writing file atomically")

	mode, err := m.fileMode(absPath)
	if err != nil {
		return err
	}

	// same directory so the rename never crosses filesystems
	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".patchrc-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, mode); err != nil {
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err = os.Rename(tmpPath, absPath); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

func (m *Manager) BackupFile(ctx context.Context, path string) (string, error) {
	absPath := m.Path(path)
	backupPath := absPath + BackupSuffix
	zerolog.Ctx(ctx).Debug().Str("path", absPath).Str("backup", backupPath).Msg("backing up file")

	if err := copyFile(absPath, backupPath); err != nil {
		return "", errors.Errorf("creating backup: %w", err)
	}
	return backupPath, nil
}

func (m *Manager) RestoreFile(ctx context.Context, path string) error {
	absPath := m.Path(path)
	backupPath := absPath + BackupSuffix
	zerolog.Ctx(ctx).Debug().Str("path", absPath).Str("backup", backupPath).Msg("restoring file")

	if _, err := os.Stat(backupPath); errors.Is(err, fs.ErrNotExist) {
		return errors.Errorf("%w: backup %s", ErrFileNotFound, backupPath)
	} else if err != nil {
		return errors.Errorf("checking backup existence: %w", err)
	}

	if err := copyFile(backupPath, absPath); err != nil {
		return errors.Errorf("restoring from backup: %w", err)
	}

	return nil
}

// resolveLink follows symlinks so a rename replaces the file the link points
// at instead of the link itself
func resolveLink(absPath string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", errors.Errorf("%w: %s", ErrFileNotFound, absPath)
	}
	if err != nil {
		return "", errors.Errorf("resolving symlinks: %w", err)
	}
	return resolved, nil
}

// 📋 copyFile copies src to dst with src's permissions
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Errorf("%w: %s", ErrFileNotFound, src)
	}
	if err != nil {
		return errors.Errorf("stat source: %w", err)
	}

	content, err := os.ReadFile(src)
	if err != nil {
		return errors.Errorf("reading source: %w", err)
	}

	if err := os.WriteFile(dst, content, info.Mode().Perm()); err != nil {
		return errors.Errorf("writing destination: %w", err)
	}
	return nil
}
