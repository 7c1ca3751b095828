// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vizserver

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teradata-labs/vizflow/pkg/pipeline"
)

// Analysis is one stored analysis run.
type Analysis struct {
	ID        string
	CreatedAt time.Time
	Schema    string // textual schema overview of the uploaded dataset
	Result    *pipeline.Result
}

// Store holds completed analyses in memory, capped at maxEntries with
// oldest-first eviction. Restarting the server forgets all runs.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]*Analysis
	order      []string
	maxEntries int
}

// DefaultMaxEntries bounds the store so long-running servers do not
// accumulate charts without limit.
const DefaultMaxEntries = 100

// NewStore creates an empty store. maxEntries <= 0 uses the default.
func NewStore(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		entries:    make(map[string]*Analysis),
		maxEntries: maxEntries,
	}
}

// Put stores a result under a fresh ID and returns the analysis.
func (s *Store) Put(result *pipeline.Result, schema string) *Analysis {
	a := &Analysis{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Schema:    schema,
		Result:    result,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.order) >= s.maxEntries {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}
	s.entries[a.ID] = a
	s.order = append(s.order, a.ID)
	return a
}

// Get returns the analysis for id, or nil.
func (s *Store) Get(id string) *Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id]
}

// Len returns how many analyses are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
