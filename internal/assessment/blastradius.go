package assessment

import (
	"fmt"
	"sort"

	"github.com/ursalaan/Change-Impact-Forecaster/internal/graph"
	"github.com/ursalaan/Change-Impact-Forecaster/internal/types"
)

// moderateRadiusMax is the largest affected-service count still classified as
// a moderate blast radius. One service is isolated, anything above the
// threshold is wide.
const moderateRadiusMax = 5

// ExpandBlastRadius computes the full set of services affected by touching
// the given services: the touched set plus everything that transitively
// depends on it. Traversal is breadth-first over "is depended on by" edges
// with a visited set, so it terminates on cyclic graphs and never
// double-counts. Touched services absent from the graph stay in the radius
// and produce one missing-information note each.
func ExpandBlastRadius(g *graph.Graph, touched []string) (types.BlastRadius, []string) {
	visited := make(map[string]struct{}, len(touched))
	queue := make([]string, 0, len(touched))
	missing := []string{}

	for _, service := range touched {
		if service == "" {
			continue
		}
		if _, ok := visited[service]; ok {
			continue
		}
		visited[service] = struct{}{}
		queue = append(queue, service)

		if !g.Has(service) {
			missing = append(missing, fmt.Sprintf("service %q is not in the dependency graph", service))
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dependent := range g.Dependents(current) {
			if _, ok := visited[dependent]; ok {
				continue
			}
			visited[dependent] = struct{}{}
			queue = append(queue, dependent)
		}
	}

	services := make([]string, 0, len(visited))
	for service := range visited {
		services = append(services, service)
	}
	sort.Strings(services)

	return types.BlastRadius{
		Services:       services,
		Count:          len(services),
		Classification: classifyRadius(len(services)),
	}, missing
}

// classifyRadius maps an affected-service count to a qualitative size
func classifyRadius(count int) types.RadiusClass {
	switch {
	case count <= 1:
		return types.RadiusIsolated
	case count <= moderateRadiusMax:
		return types.RadiusModerate
	default:
		return types.RadiusWide
	}
}
