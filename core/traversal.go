package core

import (
	"container/heap"
	"math"

	"github.com/joemeszaros/speleo-studio-sub003/model"
)

// DistanceMap holds the traversed distance from the cave's start
// station to every reachable station name. It feeds the distance-based
// color gradient; placement never depends on it.
type DistanceMap map[string]float64

// edge is one undirected weighted adjacency entry.
type edge struct {
	to     string
	weight float64
}

// StationGraph is an undirected weighted graph over station names:
// vertices are resolved station names, edges are valid shots weighted
// by their measured length.
type StationGraph struct {
	adjacency map[string][]edge
}

// BuildStationGraph assembles the traversal graph for a cave from its
// valid shots and the resolved station map. Shots whose endpoints were
// not placed contribute no edge.
func BuildStationGraph(cave *model.Cave, stations *StationMap) *StationGraph {
	g := &StationGraph{adjacency: make(map[string][]edge)}
	for _, survey := range cave.Surveys {
		for _, shot := range survey.ValidShots() {
			from := resolvedFromName(shot)
			to := resolvedTargetName(shot, survey.Name)
			if !stations.Has(from) || !stations.Has(to) {
				continue
			}
			g.adjacency[from] = append(g.adjacency[from], edge{to: to, weight: shot.Length})
			g.adjacency[to] = append(g.adjacency[to], edge{to: from, weight: shot.Length})
		}
	}
	return g
}

// DistancesFrom runs a single-source shortest-path traversal from the
// given start station and returns the distance map. Unreachable
// stations are absent from the result.
func (g *StationGraph) DistancesFrom(start string) DistanceMap {
	dist := make(DistanceMap)
	if _, ok := g.adjacency[start]; !ok {
		return dist
	}

	dist[start] = 0
	pq := &distanceQueue{{name: start, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(distanceEntry)
		if cur.dist > dist[cur.name] {
			continue // stale queue entry
		}
		for _, e := range g.adjacency[cur.name] {
			next := cur.dist + e.weight
			if known, ok := dist[e.to]; !ok || next < known {
				dist[e.to] = next
				heap.Push(pq, distanceEntry{name: e.to, dist: next})
			}
		}
	}
	return dist
}

// CaveDistances traverses from the first survey's start station.
func CaveDistances(cave *model.Cave, stations *StationMap) DistanceMap {
	if len(cave.Surveys) == 0 {
		return make(DistanceMap)
	}
	g := BuildStationGraph(cave, stations)
	return g.DistancesFrom(cave.Surveys[0].StartStation())
}

// Max returns the largest distance in the map, or 0 for an empty map.
func (d DistanceMap) Max() float64 {
	max := 0.0
	for _, v := range d {
		if v > max {
			max = v
		}
	}
	if math.IsInf(max, 0) || math.IsNaN(max) {
		return 0
	}
	return max
}

type distanceEntry struct {
	name string
	dist float64
}

type distanceQueue []distanceEntry

func (q distanceQueue) Len() int            { return len(q) }
func (q distanceQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q distanceQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *distanceQueue) Push(x interface{}) { *q = append(*q, x.(distanceEntry)) }
func (q *distanceQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
