package mocks

import (
	"sync"

	"github.com/mcoot/quizgame/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued results are returned in order; an empty queue yields zero values.
type MockRandom struct {
	mu sync.Mutex

	intnResults   []int
	boolResults   []bool
	stringResults []string
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.intnResults) == 0 {
		return 0
	}
	result := r.intnResults[0]
	r.intnResults = r.intnResults[1:]
	return result
}

// Bool returns the next queued result, or false if none remaining
func (r *MockRandom) Bool() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.boolResults) == 0 {
		return false
	}
	result := r.boolResults[0]
	r.boolResults = r.boolResults[1:]
	return result
}

// String returns the next queued result, or empty string if none remaining
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stringResults) == 0 {
		return ""
	}
	result := r.stringResults[0]
	r.stringResults = r.stringResults[1:]
	return result
}

// Shuffle leaves the order unchanged so tests stay deterministic
func (r *MockRandom) Shuffle(n int, swap func(i, j int)) {}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = append(r.intnResults, values...)
}

// QueueBool adds values to the Bool result queue
func (r *MockRandom) QueueBool(values ...bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boolResults = append(r.boolResults, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stringResults = append(r.stringResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = nil
	r.boolResults = nil
	r.stringResults = nil
}
