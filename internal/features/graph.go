// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package features

import "github.com/tomtom215/ideaforge/internal/idea"

// DefaultEdgeThreshold is the minimum edge similarity.
const DefaultEdgeThreshold = 0.5

// neutralProvenance is used for nodes without an initial score.
const neutralProvenance = 0.5

// Edge is a weighted link to another idea.
type Edge struct {
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// Graph links ideas whose embedding dot product plus 0.1 per shared tag
// reaches the edge threshold.
type Graph struct {
	order []string
	adj   map[string][]Edge
}

// BuildGraph builds an undirected similarity graph over ideas.
func BuildGraph(ideas []*idea.Idea, threshold float64) *Graph {
	g := &Graph{
		order: make([]string, 0, len(ideas)),
		adj:   make(map[string][]Edge, len(ideas)),
	}
	for _, i := range ideas {
		if _, ok := g.adj[i.ID]; ok {
			continue
		}
		g.order = append(g.order, i.ID)
		g.adj[i.ID] = nil
	}
	for a := 0; a < len(ideas); a++ {
		for b := a + 1; b < len(ideas); b++ {
			x, y := ideas[a], ideas[b]
			if x.ID == y.ID {
				continue
			}
			sim := Dot(x.Embedding, y.Embedding) + 0.1*float64(sharedTags(x.Tags, y.Tags))
			if sim >= threshold {
				g.adj[x.ID] = append(g.adj[x.ID], Edge{To: y.ID, Weight: sim})
				g.adj[y.ID] = append(g.adj[y.ID], Edge{To: x.ID, Weight: sim})
			}
		}
	}
	return g
}

func sharedTags(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	seen := make(map[string]struct{}, len(b))
	n := 0
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

// Nodes returns node IDs in insertion order.
func (g *Graph) Nodes() []string { return append([]string(nil), g.order...) }

// Neighbors returns the edges leaving id.
func (g *Graph) Neighbors(id string) []Edge { return g.adj[id] }

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.adj {
		n += len(edges)
	}
	return n / 2
}

// Influence returns weighted degree divided by the maximum weighted degree.
// All scores are 0 when the graph has no edges.
func (g *Graph) Influence() map[string]float64 {
	out := make(map[string]float64, len(g.order))
	var maxInf float64
	for _, id := range g.order {
		var s float64
		for _, e := range g.adj[id] {
			s += e.Weight
		}
		out[id] = s
		if s > maxInf {
			maxInf = s
		}
	}
	if maxInf > 0 {
		for id, v := range out {
			out[id] = v / maxInf
		}
	}
	return out
}

// PropagateProvenance blends each node's score with its neighbors:
// 0.7*own + 0.3*mean(neighbor*weight), repeated iterations times.
// Nodes without an initial score start at 0.5.
func (g *Graph) PropagateProvenance(initial map[string]float64, iterations int) map[string]float64 {
	scores := make(map[string]float64, len(g.order))
	for _, id := range g.order {
		if v, ok := initial[id]; ok {
			scores[id] = v
		} else {
			scores[id] = neutralProvenance
		}
	}
	for it := 0; it < iterations; it++ {
		next := make(map[string]float64, len(scores))
		for _, id := range g.order {
			edges := g.adj[id]
			own := scores[id]
			if len(edges) == 0 {
				next[id] = own
				continue
			}
			var sum float64
			for _, e := range edges {
				sum += scores[e.To] * e.Weight
			}
			next[id] = 0.7*own + 0.3*(sum/float64(len(edges)))
		}
		scores = next
	}
	return scores
}
