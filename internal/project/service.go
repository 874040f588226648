package project

import (
	"sync"

	"github.com/otter-ide/otter/pkg/types"
)

// Service owns the single Project for this broker invocation's lifetime.
// Otter serves exactly one project per process (spec §3: "Created at
// process start, destroyed at process exit"); Service exists to give the
// editor host, runtime resolver, and dispatcher one shared handle to it
// without passing *types.Project through every constructor.
type Service struct {
	mu      sync.RWMutex
	project *types.Project
}

// NewService builds a Service by loading the project rooted at directory.
func NewService(directory string) (*Service, error) {
	p, err := Load(directory)
	if err != nil {
		return nil, err
	}
	return &Service{project: p}, nil
}

// Current returns the broker's single Project.
func (s *Service) Current() *types.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project
}

// Reload re-reads .otter.toml from disk and replaces the in-memory
// Project. Nothing in this module watches the file; Reload runs only when
// called.
func (s *Service) Reload() error {
	p, err := Load(s.project.Root)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.project = p
	s.mu.Unlock()
	return nil
}
