package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "github.com/diogo/helper/internal/errors"
)

const (
	filePerm = 0o600
	dirPerm  = 0o700
)

// Store reads and writes one history file
type Store struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithLogger sets the logger used by the store
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store for the history file at path
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:   path,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the history file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the history file. A missing file yields (nil, nil): there is no
// history yet. A file that cannot be read or decoded is an error.
func (s *Store) Load() (*History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("history file does not exist", zap.String("path", s.path))
			return nil, nil
		}
		return nil, apierrors.NewIOError("read history", s.path, err)
	}

	h, err := decode(data)
	if err != nil {
		return nil, apierrors.NewIOError("parse history", s.path, err)
	}
	h.loadedRevision = h.Revision
	h.persisted = true

	s.logger.Debug("history loaded",
		zap.String("path", s.path),
		zap.Int("conversations", len(h.Conversations)),
		zap.Int64("current", h.CurrentConversationID),
		zap.Uint64("revision", h.Revision))

	return h, nil
}

// LoadOrNew is Load, returning an empty history when the file does not exist
func (s *Store) LoadOrNew() (*History, error) {
	h, err := s.Load()
	if err != nil {
		return nil, err
	}
	if h == nil {
		return New(), nil
	}
	return h, nil
}

// Save writes h to disk, creating parent directories as needed. The write is
// rejected with a ConflictError when the file changed since h was loaded.
// The file is replaced atomically.
func (s *Store) Save(h *History) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRevision(h); err != nil {
		return err
	}

	prev := h.Revision
	h.Revision = h.loadedRevision + 1

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		h.Revision = prev
		return apierrors.NewIOError("encode history", s.path, err)
	}

	if err := writeFileAtomic(s.path, data, filePerm, dirPerm); err != nil {
		h.Revision = prev
		return apierrors.NewIOError("write history", s.path, err)
	}

	h.loadedRevision = h.Revision
	h.persisted = true

	s.logger.Debug("history saved",
		zap.String("path", s.path),
		zap.Uint64("revision", h.Revision),
		zap.Int("bytes", len(data)))

	return nil
}

// checkRevision compares the revision on disk with the one h was loaded at
func (s *Store) checkRevision(h *History) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return apierrors.NewIOError("read history", s.path, err)
	}

	if !gjson.ValidBytes(data) {
		return apierrors.NewIOError("parse history", s.path, fmt.Errorf("invalid JSON"))
	}
	onDisk := gjson.GetBytes(data, "revision").Uint()

	// A file that appeared after we found none is a conflict even at revision 0.
	if !h.persisted || onDisk != h.loadedRevision {
		s.logger.Debug("stale history write rejected",
			zap.String("path", s.path),
			zap.Uint64("loaded", h.loadedRevision),
			zap.Uint64("on_disk", onDisk))
		return apierrors.NewConflictError(s.path, h.loadedRevision, onDisk)
	}
	return nil
}

func decode(data []byte) (*History, error) {
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, err
	}
	if err := h.normalize(); err != nil {
		return nil, err
	}
	return &h, nil
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it and renames it over path, so readers see either the old or the new file.
func writeFileAtomic(path string, data []byte, perm, dirPerm os.FileMode) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := f.Name()

	success := false
	defer func() {
		if !success {
			_ = f.Close()
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync data to disk: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}
	if err := os.Rename(tempPath, absPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
