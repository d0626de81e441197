package graph

import (
	"fmt"
	"os"
	"sort"

	"github.com/ursalaan/Change-Impact-Forecaster/internal/errors"
	"gopkg.in/yaml.v3"
)

// Graph is a static directed graph of service dependencies. Edges point from
// a service to the services that depend on it, so following them answers
// "who breaks if this service breaks". The graph is loaded once at startup
// and is read-only afterwards, which makes concurrent reads safe without
// locking.
type Graph struct {
	dependents map[string][]string
}

// Load parses a YAML dependency source of the shape
//
//	payments:
//	  - checkout
//	  - billing
//
// meaning checkout and billing depend on payments. It returns a graph-load
// error when the document is malformed or a service lists itself as its own
// dependent. Dependents that are never declared as top-level keys are
// auto-registered as services with no dependents of their own.
func Load(source []byte) (*Graph, error) {
	raw := map[string][]string{}
	if err := yaml.Unmarshal(source, &raw); err != nil {
		return nil, errors.NewGraphLoadError("dependency source is not valid YAML", err)
	}

	g := &Graph{dependents: make(map[string][]string, len(raw))}

	for service, deps := range raw {
		if service == "" {
			return nil, errors.NewGraphLoadError("dependency source contains an empty service identifier", nil)
		}

		seen := make(map[string]struct{}, len(deps))
		clean := make([]string, 0, len(deps))

		for _, dep := range deps {
			if dep == service {
				return nil, errors.NewGraphLoadError(
					fmt.Sprintf("service %q declares itself as a dependent", service), nil)
			}
			if dep == "" {
				return nil, errors.NewGraphLoadError(
					fmt.Sprintf("service %q declares an empty dependent", service), nil)
			}
			if _, dup := seen[dep]; dup {
				continue
			}
			seen[dep] = struct{}{}
			clean = append(clean, dep)
		}

		sort.Strings(clean)
		g.dependents[service] = clean
	}

	// Auto-register edge endpoints that were never declared as nodes
	for _, deps := range raw {
		for _, dep := range deps {
			if _, ok := g.dependents[dep]; !ok {
				g.dependents[dep] = []string{}
			}
		}
	}

	return g, nil
}

// LoadFile loads the dependency graph from the configured path
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewGraphLoadError(
			fmt.Sprintf("failed to read dependency source %s", path), err)
	}
	return Load(data)
}

// Dependents returns the direct dependents of a service in sorted order. An
// unknown service yields an empty slice, not an error; the caller decides
// whether that is worth flagging. The returned slice is a copy.
func (g *Graph) Dependents(service string) []string {
	deps, ok := g.dependents[service]
	if !ok {
		return []string{}
	}
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// Has reports whether a service is declared in the graph
func (g *Graph) Has(service string) bool {
	_, ok := g.dependents[service]
	return ok
}

// Services returns every known service identifier in sorted order
func (g *Graph) Services() []string {
	services := make([]string, 0, len(g.dependents))
	for service := range g.dependents {
		services = append(services, service)
	}
	sort.Strings(services)
	return services
}

// Len returns the number of services in the graph
func (g *Graph) Len() int {
	return len(g.dependents)
}

// EdgeCount returns the number of dependency edges in the graph
func (g *Graph) EdgeCount() int {
	count := 0
	for _, deps := range g.dependents {
		count += len(deps)
	}
	return count
}
