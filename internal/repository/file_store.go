package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/internal/domain/repository"
)

// writeJSONAtomic marshals v and replaces path via a temp-file rename, so a
// crash mid-write never leaves a truncated ledger on disk.
func writeJSONAtomic(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// readJSON unmarshals path into v. A missing file is not an error; the
// caller keeps its zero-value state.
func readJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ThresholdFileStore persists custom price thresholds as a JSON document.
type ThresholdFileStore struct {
	path string
	mu   sync.Mutex
}

// NewThresholdFileStore creates a threshold store under dataDir.
func NewThresholdFileStore(dataDir string) repository.ThresholdStore {
	return &ThresholdFileStore{path: filepath.Join(dataDir, "thresholds.json")}
}

func (s *ThresholdFileStore) Load(_ context.Context) (map[string]models.Threshold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]models.Threshold)
	if err := readJSON(s.path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ThresholdFileStore) Save(_ context.Context, thresholds map[string]models.Threshold) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSONAtomic(s.path, thresholds)
}

// PortfolioFileStore persists the simulated portfolio ledger.
type PortfolioFileStore struct {
	path string
	mu   sync.Mutex
}

// NewPortfolioFileStore creates a portfolio store under dataDir.
func NewPortfolioFileStore(dataDir string) *PortfolioFileStore {
	return &PortfolioFileStore{path: filepath.Join(dataDir, "portfolio.json")}
}

func (s *PortfolioFileStore) Load(_ context.Context) (*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p models.Portfolio
	if err := readJSON(s.path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PortfolioFileStore) Save(_ context.Context, p *models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSONAtomic(s.path, p)
}

// PaperFileStore persists the paper-trading account.
type PaperFileStore struct {
	path string
	mu   sync.Mutex
}

// NewPaperFileStore creates a paper-trading store under dataDir.
func NewPaperFileStore(dataDir string) *PaperFileStore {
	return &PaperFileStore{path: filepath.Join(dataDir, "paper.json")}
}

func (s *PaperFileStore) Load(_ context.Context) (*models.PaperAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var a models.PaperAccount
	if err := readJSON(s.path, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PaperFileStore) Save(_ context.Context, a *models.PaperAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSONAtomic(s.path, a)
}
