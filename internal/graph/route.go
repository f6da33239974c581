package graph

import (
	"container/heap"
	"math"

	"github.com/metropass/metropass-backend/internal/models"
)

// Route is the result of a costing call. Path, walked in order from the start
// station, crosses each connection exactly once and ends at the destination.
// Distance is the sum of the path's connection distances and Cost the sum of
// their fares; the search minimizes distance, and the fare follows from the
// winning path rather than being minimized itself.
type Route struct {
	Cost     float64              `json:"cost"`
	Distance float64              `json:"distance"`
	Path     []*models.Connection `json:"path"`
}

// FindRoute runs Dijkstra's algorithm from start to dest over the built
// graph, relaxing on distance. Station existence is the caller's problem
// (validate against storage first); a station absent from the graph is simply
// unreachable here and yields a *models.NoRouteError.
//
// start == dest returns a trivial zero route.
func (g *Graph) FindRoute(start, dest uint) (*Route, error) {
	if start == dest {
		return &Route{}, nil
	}

	s, okS := g.index[start]
	d, okD := g.index[dest]
	if !okS || !okD {
		return nil, &models.NoRouteError{From: start, To: dest}
	}

	n := len(g.stations)
	distTo := make([]float64, n)
	prevConn := make([]*models.Connection, n)
	prevNode := make([]int, n)
	done := make([]bool, n)
	for i := range distTo {
		distTo[i] = math.Inf(1)
		prevNode[i] = -1
	}
	distTo[s] = 0

	pq := &nodeQueue{{node: s, dist: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(nodeDist)
		if done[cur.node] {
			continue
		}
		done[cur.node] = true

		if cur.node == d {
			break
		}

		for _, e := range g.adj[cur.node] {
			if done[e.to] {
				continue
			}
			if alt := cur.dist + e.dist; alt < distTo[e.to] {
				distTo[e.to] = alt
				prevConn[e.to] = e.conn
				prevNode[e.to] = cur.node
				heap.Push(pq, nodeDist{node: e.to, dist: alt})
			}
		}
	}

	if !done[d] {
		return nil, &models.NoRouteError{From: start, To: dest}
	}

	// Walk the prev pointers back from the destination.
	var path []*models.Connection
	for at := d; at != s; at = prevNode[at] {
		path = append(path, prevConn[at])
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	r := &Route{Distance: distTo[d], Path: path}
	for _, c := range path {
		r.Cost += c.Cost
	}
	return r, nil
}

type nodeDist struct {
	node int
	dist float64
}

type nodeQueue []nodeDist

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(nodeDist)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}
