// Package sync_ wraps values with their locks, so shared state can only be
// reached through an acquired mutex.
package sync_

import "sync"

type RMutexer[T any] interface {
	// Locked runs a function with the lock acquired.
	Locked(f func(T) error) error
	// Get returns a copy of the inner value.
	Get() T
}

type Mutexer[T any] interface {
	RMutexer[T]
	// Set overwrites the inner value.
	Set(value T)
}

type RWMutexed[T any] struct {
	mu    sync.RWMutex
	value T
}

func NewRWMutexed[T any](value T) *RWMutexed[T] {
	return &RWMutexed[T]{value: value}
}

func (m *RWMutexed[T]) Locked(f func(T) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return f(m.value)
}

// RLocked is like Locked but only acquires the read lock.
func (m *RWMutexed[T]) RLocked(f func(T) error) error {
	return m.RMutexer().Locked(f)
}

func (m *RWMutexed[T]) Get() T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value
}

func (m *RWMutexed[T]) Set(value T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
}

// RMutexer returns a read-only view of the mutexed value.
func (m *RWMutexed[T]) RMutexer() RMutexer[T] {
	return &rwMutexedReader[T]{m}
}

type rwMutexedReader[T any] struct {
	*RWMutexed[T]
}

func (m *rwMutexedReader[T]) Locked(f func(T) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return f(m.value)
}
