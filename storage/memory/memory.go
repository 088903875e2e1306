// Package memory provides an in-memory implementation of the gofulfill.Storage interface.
// This implementation is primarily intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mihaimyh/gofulfill/pkg/gofulfill"
)

// Storage implements gofulfill.Storage using in-memory maps.
// It mirrors the user_map and report_plan tables: one plan per user and,
// per feature, the set of plans that grant access.
type Storage struct {
	mu      sync.RWMutex
	plans   map[string]string          // user ID -> plan
	access  map[string]map[string]bool // feature -> plan -> access
	updates int
}

// New creates a new in-memory storage adapter
func New() *Storage {
	return &Storage{
		plans:  make(map[string]string),
		access: make(map[string]map[string]bool),
	}
}

// SetUserPlan inserts or replaces the plan of a user
func (s *Storage) SetUserPlan(userID, plan string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[userID] = plan
}

// SetAccess sets the access flag of plan for feature
func (s *Storage) SetAccess(feature, plan string, hasAccess bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.access[feature]
	if !ok {
		row = make(map[string]bool)
		s.access[feature] = row
	}
	row[plan] = hasAccess
}

// UserPlan returns the stored plan of a user
func (s *Storage) UserPlan(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[userID]
	return plan, ok
}

// Updates returns the number of UpdatePlan calls that matched a user
func (s *Storage) Updates() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updates
}

// HasAccess implements gofulfill.Storage
func (s *Storage) HasAccess(_ context.Context, userID, feature string) (bool, error) {
	if userID == "" || feature == "" {
		return false, fmt.Errorf("has access: %w", gofulfill.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[userID]
	if !ok {
		return false, nil
	}
	return s.access[feature][plan], nil
}

// UpdatePlan implements gofulfill.Storage
func (s *Storage) UpdatePlan(_ context.Context, userID, plan string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("update plan: %w", gofulfill.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[userID]; !ok {
		return 0, nil
	}
	s.plans[userID] = plan
	s.updates++
	return 1, nil
}
