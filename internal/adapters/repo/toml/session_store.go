package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	sessionsDirName = "sessions"
	logFileName     = "injected.toml"
	markerFileName  = "handoff.fired"
	stateFileMode   = 0o600
	stateDirMode    = 0o700
	tempFilePattern = ".injected-*.toml.tmp"

	maxSessionIDLen = 64
)

// SessionStore persists the per-session injected-memory log and handoff
// marker as files under a state directory. Concurrency across hook processes
// is the host's single-flight contract; the in-process lock only covers
// concurrent use within one invocation.
type SessionStore struct {
	stateDir string
	mu       *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SessionStore = (*SessionStore)(nil)

func NewSessionStore(stateDir string) (*SessionStore, error) {
	if strings.TrimSpace(stateDir) == "" {
		return nil, errors.New("state directory is empty")
	}
	absDir, err := filepath.Abs(stateDir)
	if err != nil {
		return nil, fmt.Errorf("resolve state directory: %w", err)
	}

	return &SessionStore{stateDir: filepath.Clean(absDir), mu: lockForPath(absDir)}, nil
}

func (s *SessionStore) AppendInjected(ctx context.Context, sessionID string, rec domain.InjectedMemoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logPath := s.logPath(sessionID)
	file, err := readLog(logPath)
	if err != nil {
		return err
	}

	file.Records = append(file.Records, toSchema(rec))
	if overflow := len(file.Records) - domain.InjectedLogCap; overflow > 0 {
		file.Records = file.Records[overflow:]
	}

	return writeLog(logPath, file)
}

func (s *SessionStore) ConsumeInjected(ctx context.Context, sessionID string) ([]domain.InjectedMemoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Legacy unscoped log is the migration fallback for sessions tracked
	// before logs became session-scoped.
	for _, logPath := range []string{s.logPath(sessionID), s.legacyLogPath()} {
		file, err := readLog(logPath)
		if err != nil {
			return nil, err
		}
		if len(file.Records) == 0 {
			continue
		}

		records := make([]domain.InjectedMemoryRecord, 0, len(file.Records))
		for _, entry := range file.Records {
			records = append(records, fromSchema(entry))
		}
		if err := os.Remove(logPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("delete injected log: %w", err)
		}

		return records, nil
	}

	return nil, domain.ErrLogNotFound
}

func (s *SessionStore) MarkFired(ctx context.Context, sessionID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	markerPath := s.markerPath(sessionID)
	if err := os.MkdirAll(filepath.Dir(markerPath), stateDirMode); err != nil {
		return false, fmt.Errorf("create session directory: %w", err)
	}

	// O_EXCL makes the check-then-write a single atomic step: exactly one
	// process per session observes first == true.
	file, err := os.OpenFile(markerPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, stateFileMode)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create handoff marker: %w", err)
	}

	return true, file.Close()
}

func (s *SessionStore) Fired(ctx context.Context, sessionID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(s.markerPath(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat handoff marker: %w", err)
	}

	return true, nil
}

func (s *SessionStore) logPath(sessionID string) string {
	return filepath.Join(s.sessionDir(sessionID), logFileName)
}

func (s *SessionStore) markerPath(sessionID string) string {
	return filepath.Join(s.sessionDir(sessionID), markerFileName)
}

func (s *SessionStore) legacyLogPath() string {
	return filepath.Join(s.stateDir, logFileName)
}

func (s *SessionStore) sessionDir(sessionID string) string {
	return filepath.Join(s.stateDir, sessionsDirName, SanitizeSessionID(sessionID))
}

// SanitizeSessionID restricts a host-supplied session id to a safe file name.
func SanitizeSessionID(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := b.String()
	if len(out) > maxSessionIDLen {
		out = out[:maxSessionIDLen]
	}
	if out == "" {
		return "session"
	}

	return out
}

func readLog(path string) (logSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return logSchema{}, nil
		}
		return logSchema{}, fmt.Errorf("read injected log: %w", err)
	}

	var file logSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return logSchema{}, fmt.Errorf("decode injected log: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return logSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func writeLog(path string, file logSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(path), stateDirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode injected log: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp log file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp log file: %w", err)
	}
	if err := tempFile.Chmod(stateFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp log file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp log file: %w", err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace injected log: %w", err)
	}
	cleanup = false

	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
