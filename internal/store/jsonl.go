package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"aequiswap/internal/model"
)

// JSONL appends one JSON document per line to a local file.
type JSONL struct {
	mu   sync.Mutex
	file *os.File
}

// NewJSONL opens the history file for appending, creating it if needed.
func NewJSONL(path string) (*JSONL, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &JSONL{file: file}, nil
}

// SaveQuote appends the record as one line.
func (s *JSONL) SaveQuote(_ context.Context, record model.QuoteRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *JSONL) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
