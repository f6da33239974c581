// Package graph builds the metro network topology from active connections
// and runs the route costing search over it.
package graph

import "github.com/metropass/metropass-backend/internal/models"

type edge struct {
	to   int // dense station index
	dist float64
	conn *models.Connection
}

// Graph is an adjacency structure over the stations touched by active-line
// connections. Stations get dense integer indices at build time so the search
// can run over plain slices instead of identity-keyed maps.
//
// A Graph is a point-in-time snapshot: line toggles do not affect a built
// graph, so callers rebuild per costing call rather than caching one.
type Graph struct {
	index    map[uint]int // station ID -> dense index
	stations []uint       // dense index -> station ID
	adj      [][]edge
}

// Build constructs the graph from the given connections, keeping only those
// whose line is marked active. Each kept connection contributes an edge in
// both directions. An empty or fully inactive set yields an empty graph.
func Build(conns []*models.Connection, activeLines map[uint]bool) *Graph {
	g := &Graph{index: make(map[uint]int)}

	for _, c := range conns {
		if !activeLines[c.LineID] {
			continue
		}
		from := g.intern(c.StartStationID)
		to := g.intern(c.DestinationStationID)
		g.adj[from] = append(g.adj[from], edge{to: to, dist: c.Distance, conn: c})
		g.adj[to] = append(g.adj[to], edge{to: from, dist: c.Distance, conn: c})
	}

	return g
}

func (g *Graph) intern(stationID uint) int {
	if i, ok := g.index[stationID]; ok {
		return i
	}
	i := len(g.stations)
	g.index[stationID] = i
	g.stations = append(g.stations, stationID)
	g.adj = append(g.adj, nil)
	return i
}
