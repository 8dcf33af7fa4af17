// Package registry holds the catalog of running emulated services.
//
// Each entry pairs a service name with its listen port and HTTP handler.
// The registry is the single source of truth for what the server fleet
// serves and what the health endpoints report.
package registry

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Service is one registered emulated service.
type Service struct {
	Name    string
	Port    int
	Handler http.Handler
}

// Registry manages the named service entries. Registration happens once at
// startup; lookups and health snapshots are concurrent-safe.
type Registry struct {
	mu        sync.RWMutex
	region    string
	account   string
	startedAt time.Time
	services  []*Service
	byName    map[string]*Service
}

// New creates an empty registry for the given region and account.
func New(region, account string) *Registry {
	return &Registry{
		region:    region,
		account:   account,
		startedAt: time.Now(),
		byName:    make(map[string]*Service),
	}
}

// Register adds a named service. Names and ports must be unique.
func (r *Registry) Register(name string, port int, handler http.Handler) error {
	if handler == nil {
		return fmt.Errorf("cannot register nil handler for %q", name)
	}
	if name == "" {
		return fmt.Errorf("cannot register service with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("service %q already registered", name)
	}
	for _, svc := range r.services {
		if svc.Port == port {
			return fmt.Errorf("port %d already registered to %q", port, svc.Name)
		}
	}

	svc := &Service{Name: name, Port: port, Handler: handler}
	r.services = append(r.services, svc)
	r.byName[name] = svc
	return nil
}

// Get returns the named service.
func (r *Registry) Get(name string) (*Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.byName[name]
	return svc, ok
}

// Services returns all registered services in registration order.
func (r *Registry) Services() []*Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Service, len(r.services))
	copy(out, r.services)
	return out
}

// Region returns the configured region.
func (r *Registry) Region() string { return r.region }

// Account returns the configured account id.
func (r *Registry) Account() string { return r.account }

// ServiceHealth is the health snapshot of one service.
type ServiceHealth struct {
	Name   string `json:"name"`
	Port   int    `json:"port"`
	Status string `json:"status"`
}

// Health is the snapshot served by the admin listener.
type Health struct {
	Status   string          `json:"status"`
	Region   string          `json:"region"`
	Account  string          `json:"account"`
	Uptime   string          `json:"uptime"`
	Services []ServiceHealth `json:"services"`
}

// Health reports the current state of every registered service. Services
// are in-process and share the server's fate, so a registered service is an
// up service.
func (r *Registry) Health() Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h := Health{
		Status:   "ok",
		Region:   r.region,
		Account:  r.account,
		Uptime:   time.Since(r.startedAt).Round(time.Second).String(),
		Services: make([]ServiceHealth, 0, len(r.services)),
	}
	for _, svc := range r.services {
		h.Services = append(h.Services, ServiceHealth{Name: svc.Name, Port: svc.Port, Status: "up"})
	}
	return h
}
