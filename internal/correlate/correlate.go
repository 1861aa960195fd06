package correlate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/netlure/decoy/internal/store"
)

// SessionPair links two sessions that surfaced the same identifier.
type SessionPair struct {
	Session1   uuid.UUID
	Session2   uuid.UUID
	Kind       string
	Normalized string
}

// ActorCluster groups sessions that share at least one extracted identifier,
// under the working assumption that they are the same operator or crew.
type ActorCluster struct {
	Sessions    []uuid.UUID `json:"sessions"`
	Identifiers []string    `json:"shared_identifiers"`
	Size        int         `json:"size"`
}

// Correlator builds actor clusters from shared identifiers across sessions.
type Correlator struct {
	store  *store.Store
	logger *slog.Logger
}

func New(s *store.Store, logger *slog.Logger) *Correlator {
	return &Correlator{store: s, logger: logger}
}

// FindPairs scans session_identifiers for exact (kind, normalized) matches
// across distinct sessions.
func (c *Correlator) FindPairs(ctx context.Context) ([]SessionPair, error) {
	query := `
		SELECT a.session_id, b.session_id, a.kind, a.normalized
		FROM session_identifiers a, session_identifiers b
		WHERE a.session_id < b.session_id
		  AND a.kind = b.kind
		  AND a.normalized = b.normalized`

	rows, err := c.store.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query identifier pairs: %w", err)
	}
	defer rows.Close()

	var pairs []SessionPair
	for rows.Next() {
		var pair SessionPair
		if err := rows.Scan(&pair.Session1, &pair.Session2, &pair.Kind, &pair.Normalized); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return pairs, nil
}

// Clusters finds pairs and groups them into actor clusters.
func (c *Correlator) Clusters(ctx context.Context) ([]ActorCluster, error) {
	pairs, err := c.FindPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("find pairs: %w", err)
	}
	clusters := ClusterPairs(pairs)
	c.logger.Info("actor correlation complete", "pairs", len(pairs), "clusters", len(clusters))
	return clusters, nil
}

// ClusterPairs groups session pairs into connected components via union-find.
func ClusterPairs(pairs []SessionPair) []ActorCluster {
	if len(pairs) == 0 {
		return nil
	}

	parent := make(map[uuid.UUID]uuid.UUID)
	for _, pair := range pairs {
		if _, exists := parent[pair.Session1]; !exists {
			parent[pair.Session1] = pair.Session1
		}
		if _, exists := parent[pair.Session2]; !exists {
			parent[pair.Session2] = pair.Session2
		}
	}

	var find func(uuid.UUID) uuid.UUID
	find = func(id uuid.UUID) uuid.UUID {
		if parent[id] != id {
			parent[id] = find(parent[id]) // path compression
		}
		return parent[id]
	}
	union := func(a, b uuid.UUID) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	sharedByRoot := make(map[uuid.UUID]map[string]bool)
	for _, pair := range pairs {
		union(pair.Session1, pair.Session2)
	}
	for _, pair := range pairs {
		root := find(pair.Session1)
		if sharedByRoot[root] == nil {
			sharedByRoot[root] = make(map[string]bool)
		}
		sharedByRoot[root][pair.Kind+":"+pair.Normalized] = true
	}

	groups := make(map[uuid.UUID][]uuid.UUID)
	for id := range parent {
		root := find(id)
		groups[root] = append(groups[root], id)
	}

	var clusters []ActorCluster
	for root, members := range groups {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].String() < members[j].String() })

		var shared []string
		for k := range sharedByRoot[root] {
			shared = append(shared, k)
		}
		sort.Strings(shared)

		clusters = append(clusters, ActorCluster{
			Sessions:    members,
			Identifiers: shared,
			Size:        len(members),
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Size != clusters[j].Size {
			return clusters[i].Size > clusters[j].Size
		}
		return clusters[i].Sessions[0].String() < clusters[j].Sessions[0].String()
	})
	return clusters
}
