// Package clustering groups match edges into duplicate clusters by
// transitive connectivity.
package clustering

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
)

// unionFind is a disjoint-set forest with union by rank and path compression.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(size int) *unionFind {
	uf := &unionFind{
		parent: make([]int, size),
		rank:   make([]int, size),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// Cluster partitions the contacts referenced by edges into connected
// components and returns every component with two or more members. Members
// are sorted and the cluster ID is derived from them, so the same edge set
// always yields the same clusters regardless of edge order.
func Cluster(edges []models.MatchEdge) []models.Cluster {
	if len(edges) == 0 {
		return nil
	}

	ids := make([]string, 0, len(edges)*2)
	seen := make(map[string]bool, len(edges)*2)
	for _, edge := range edges {
		for _, id := range []string{edge.A, edge.B} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	uf := newUnionFind(len(ids))
	for _, edge := range edges {
		uf.union(index[edge.A], index[edge.B])
	}

	components := make(map[int][]string)
	for i, id := range ids {
		root := uf.find(i)
		components[root] = append(components[root], id)
	}

	clusters := make([]models.Cluster, 0, len(components))
	for _, members := range components {
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		clusters = append(clusters, models.Cluster{
			ID:      ClusterKey(members),
			Members: members,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].Members[0] < clusters[j].Members[0]
	})
	return clusters
}

// ClusterKey derives a stable identifier from the sorted member IDs.
func ClusterKey(members []string) string {
	hash := sha256.Sum256([]byte(strings.Join(members, "\x1f")))
	return hex.EncodeToString(hash[:])
}
