package guestcart

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// sessionIDPattern guards against path traversal through the session cookie.
// Session IDs are UUIDs, so anything outside this set is hostile input.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// FileStore persists guest carts as JSON files on the local filesystem, one
// file per session. This is the development and single-node implementation;
// multi-node deployments use RedisStore.
type FileStore struct {
	basePath string
	mu       sync.Mutex
}

// NewFileStore creates the storage directory if it does not exist.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create guest cart directory: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) Load(ctx context.Context, sessionID string) (Cart, error) {
	path, err := s.path(sessionID)
	if err != nil {
		return Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("failed to read guest cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		// A corrupt file should not lock the visitor out of their cart.
		return Cart{}, nil
	}
	return cart, nil
}

func (s *FileStore) Save(ctx context.Context, sessionID string, cart Cart) error {
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal guest cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write guest cart: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace guest cart: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, sessionID string) error {
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete guest cart: %w", err)
	}
	return nil
}

func (s *FileStore) path(sessionID string) (string, error) {
	if sessionID == "" || !sessionIDPattern.MatchString(sessionID) {
		return "", fmt.Errorf("invalid guest session id %q", sessionID)
	}
	return filepath.Join(s.basePath, sessionID+".json"), nil
}
