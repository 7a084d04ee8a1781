package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/errors"
)

// EndpointRegistry holds the endpoints known for each comparison mode, in
// registration order.
type EndpointRegistry struct {
	mu        sync.RWMutex
	endpoints map[domain.Mode][]domain.Endpoint
}

func NewEndpointRegistry() *EndpointRegistry {
	return &EndpointRegistry{
		endpoints: make(map[domain.Mode][]domain.Endpoint),
	}
}

func (r *EndpointRegistry) Register(mode domain.Mode, endpoint domain.Endpoint) error {
	if endpoint.Name == "" {
		return errors.New(errors.CodeConfigValidation, fmt.Sprintf("%s endpoint name cannot be empty", mode))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.endpoints[mode] {
		if strings.EqualFold(existing.Name, endpoint.Name) {
			return errors.New(errors.CodeConfigValidation, fmt.Sprintf("%s endpoint '%s' already registered", mode, endpoint.Name))
		}
	}
	r.endpoints[mode] = append(r.endpoints[mode], endpoint)
	return nil
}

// Get looks an endpoint up by name, ignoring case.
func (r *EndpointRegistry) Get(mode domain.Mode, name string) (domain.Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ep := range r.endpoints[mode] {
		if strings.EqualFold(ep.Name, name) {
			return ep, nil
		}
	}
	return domain.Endpoint{}, errors.NewUserFacing(errors.CodeInvalidArgument,
		fmt.Sprintf("unknown %s endpoint '%s'", mode, name),
		fmt.Sprintf("Available endpoints: %s", strings.Join(r.namesLocked(mode), ", ")))
}

func (r *EndpointRegistry) List(mode domain.Mode) []domain.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Endpoint, len(r.endpoints[mode]))
	copy(out, r.endpoints[mode])
	return out
}

// Select returns every endpoint of the mode, or only the named one when
// filter is set.
func (r *EndpointRegistry) Select(mode domain.Mode, filter string) ([]domain.Endpoint, error) {
	if filter == "" {
		eps := r.List(mode)
		if len(eps) == 0 {
			return nil, errors.NewUserFacing(errors.CodeConfigValidation,
				fmt.Sprintf("no %s endpoints configured", mode),
				fmt.Sprintf("Define endpoints.%s in the configuration file.", mode))
		}
		return eps, nil
	}
	ep, err := r.Get(mode, filter)
	if err != nil {
		return nil, err
	}
	return []domain.Endpoint{ep}, nil
}

func (r *EndpointRegistry) Names(mode domain.Mode) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked(mode)
}

func (r *EndpointRegistry) namesLocked(mode domain.Mode) []string {
	names := make([]string, 0, len(r.endpoints[mode]))
	for _, ep := range r.endpoints[mode] {
		names = append(names, ep.Name)
	}
	sort.Strings(names)
	return names
}
