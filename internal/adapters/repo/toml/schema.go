package toml

import (
	"fmt"
	"time"

	"github.com/recallkit/recallkit/internal/domain"
)

const currentSchemaVersion = 1

type logSchema struct {
	Version int            `toml:"version"`
	Records []recordSchema `toml:"records"`
}

func (s *logSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s logSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported injected-log schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type recordSchema struct {
	MemoryID  string    `toml:"memory_id"`
	Timestamp time.Time `toml:"timestamp"`
	Source    string    `toml:"source"`
}

func toSchema(rec domain.InjectedMemoryRecord) recordSchema {
	return recordSchema{
		MemoryID:  string(rec.MemoryID),
		Timestamp: rec.Timestamp,
		Source:    rec.Source,
	}
}

func fromSchema(entry recordSchema) domain.InjectedMemoryRecord {
	return domain.InjectedMemoryRecord{
		MemoryID:  domain.MemoryID(entry.MemoryID),
		Timestamp: entry.Timestamp,
		Source:    entry.Source,
	}
}
