package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult represents the result of a single readiness check
type CheckResult struct {
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse represents the liveness response
type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Checker defines a readiness check function
type Checker func(ctx context.Context) CheckResult

// Service answers liveness and readiness probes. The service holds no
// connections of its own; readiness means the three upstream credentials
// are configured, since without any one of them no turn can complete.
type Service struct {
	startTime time.Time
	version   string
	checkers  map[string]Checker
	log       *zap.Logger
	mu        sync.RWMutex
}

// NewService creates a new health service
func NewService(version string, log *zap.Logger) *Service {
	return &Service{
		startTime: time.Now(),
		version:   version,
		checkers:  make(map[string]Checker),
		log:       log,
	}
}

// RegisterChecker registers a readiness checker under a name
func (s *Service) RegisterChecker(name string, checker Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers[name] = checker
	s.log.Info("Registered health checker", zap.String("name", name))
}

// RegisterCredentialChecker registers a checker that only verifies a
// credential is present in configuration.
func (s *Service) RegisterCredentialChecker(name, credential string) {
	configured := credential != ""
	s.RegisterChecker(name, func(ctx context.Context) CheckResult {
		result := CheckResult{Name: name, Timestamp: time.Now()}
		if configured {
			result.Status = StatusHealthy
			result.Message = "credential configured"
		} else {
			result.Status = StatusUnhealthy
			result.Message = "credential missing"
		}
		return result
	})
}

// Health performs a basic liveness check
func (s *Service) Health(ctx context.Context) *HealthResponse {
	return &HealthResponse{
		Status:    StatusHealthy,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Timestamp: time.Now(),
	}
}

// Ready runs every registered checker and aggregates the result
func (s *Service) Ready(ctx context.Context) *ReadyResponse {
	s.mu.RLock()
	checkers := make(map[string]Checker, len(s.checkers))
	for name, checker := range s.checkers {
		checkers[name] = checker
	}
	s.mu.RUnlock()

	results := make(map[string]CheckResult, len(checkers))
	ready := true

	for name, checker := range checkers {
		result := checker(ctx)
		results[name] = result
		if result.Status != StatusHealthy {
			ready = false
		}
	}

	status := StatusHealthy
	if !ready {
		status = StatusUnhealthy
	}

	return &ReadyResponse{
		Ready:     ready,
		Status:    status,
		Timestamp: time.Now(),
		Checks:    results,
	}
}
