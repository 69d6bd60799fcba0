package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
)

// ErrJobNotFound is returned for unknown or expired job IDs
var ErrJobNotFound = errors.New("storage: scan job not found")

// DefaultJobTTL replaces a non-positive TTL. Jobs carry personal data and
// must always expire.
const DefaultJobTTL = 15 * time.Minute

const minCleanupInterval = time.Second

func jobTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultJobTTL
	}
	return ttl
}

// JobStore keeps scan jobs for the time a client needs to poll them.
// Implementations must be safe for concurrent use.
type JobStore interface {
	Save(ctx context.Context, job *domain.ScanJob) error
	Get(ctx context.Context, jobID string) (*domain.ScanJob, error)
	Update(ctx context.Context, jobID string, update func(*domain.ScanJob)) error
	Delete(ctx context.Context, jobID string) error
}

// TempStorage provides in-memory storage for scan jobs.
// Uploads are processed in RAM only and zeroed after use.
// Jobs are automatically cleaned up after a TTL.
type TempStorage struct {
	mu   sync.RWMutex
	jobs map[string]*domain.ScanJob
	ttl  time.Duration
	done chan struct{}
	once sync.Once
}

// NewTempStorage creates a new in-memory temp storage with the given TTL.
// A non-positive ttl falls back to DefaultJobTTL.
func NewTempStorage(ttl time.Duration) *TempStorage {
	s := &TempStorage{
		jobs: make(map[string]*domain.ScanJob),
		ttl:  jobTTL(ttl),
		done: make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// GenerateJobID creates a random job ID
func GenerateJobID() string {
	return uuid.NewString()
}

// Save stores a copy of job
func (s *TempStorage) Save(ctx context.Context, job *domain.ScanJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.JobID] = &cp
	return nil
}

// Get returns a copy of the job so callers never race the worker
func (s *TempStorage) Get(ctx context.Context, jobID string) (*domain.ScanJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

// Update applies update to the stored job under the write lock
func (s *TempStorage) Update(ctx context.Context, jobID string, update func(*domain.ScanJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	update(job)
	return nil
}

// Delete removes a job from storage
func (s *TempStorage) Delete(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
	return nil
}

// Close stops the cleanup loop
func (s *TempStorage) Close() {
	s.once.Do(func() { close(s.done) })
}

// ZeroBytes overwrites a byte slice with zeros for secure deletion.
// This prevents document images from lingering in memory.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// cleanupLoop periodically removes expired jobs
func (s *TempStorage) cleanupLoop() {
	interval := s.ttl / 2
	if interval < minCleanupInterval {
		interval = minCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.cleanup(now)
		}
	}
}

func (s *TempStorage) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}
