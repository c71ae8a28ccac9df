package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go-jobradar-automation/internal/jobs"
)

const retentionDays = 30

type seenEntry struct {
	Source    string `json:"source"`
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

// FileStore keeps seen jobs in a single JSON file. Entries older than 30
// days are dropped on load so the file does not grow forever.
type FileStore struct {
	filePath string
	entries  []seenEntry
}

func NewFileStore(cacheDir string) *FileStore {
	return &FileStore{filePath: filepath.Join(cacheDir, "seen_jobs.json")}
}

func (s *FileStore) Connect(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return nil
}

func (s *FileStore) LoadAll(_ context.Context) (map[string]map[string]struct{}, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.filePath, err)
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.filePath, err)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays).UnixMilli()
	out := make(map[string]map[string]struct{})
	kept := entries[:0]
	for _, e := range entries {
		if e.Timestamp <= cutoff {
			continue
		}
		if out[e.Source] == nil {
			out[e.Source] = make(map[string]struct{})
		}
		out[e.Source][e.ID] = struct{}{}
		kept = append(kept, e)
	}
	s.entries = kept
	log.Printf("📋 Loaded %d previously seen jobs (%d expired and removed)", len(kept), len(entries)-len(kept))
	return out, nil
}

// Insert appends the batch and rewrites the file through a rename, so a
// crash mid-write leaves the previous file intact rather than a torn one.
func (s *FileStore) Insert(_ context.Context, source string, records []jobs.Record) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(s.entries))
	for _, e := range s.entries {
		if e.Source == source {
			seen[e.ID] = struct{}{}
		}
	}

	now := time.Now().UnixMilli()
	changed := false
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		s.entries = append(s.entries, seenEntry{Source: source, ID: r.ID, Timestamp: now})
		seen[r.ID] = struct{}{}
		changed = true
	}
	if !changed {
		return nil
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seen jobs: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.filePath, err)
	}
	return nil
}

func (s *FileStore) Close() {}
