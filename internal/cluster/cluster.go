package cluster

import (
	"context"
	"fmt"
	"sort"

	"github.com/kgraphdb/kgraph/internal/storage"
	"github.com/kgraphdb/kgraph/internal/types"
)

// Topic is one discovered cluster, ready to persist via storage.SaveTopics.
type Topic struct {
	Label          string
	Slug           string
	Fingerprint    string
	CoherenceScore float64
	TopEntities    []string
	Members        []int64
}

// Run executes the full clustering pipeline (spec.md §4.10 steps 1-7) over
// every extracted entity in the corpus and returns the surviving clusters,
// sorted by size descending. It does not persist anything; callers pass the
// result to Persist.
func Run(ctx context.Context, store storage.Storage, opts Options) ([]Topic, error) {
	if opts.MinDF == 0 {
		opts = DefaultOptions()
	}

	entities, err := store.AllEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading entities: %w", err)
	}
	docs, err := store.AllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}

	entityTypes := make(map[string]types.EntityType)
	for _, e := range entities {
		if existing, ok := entityTypes[e.Entity]; !ok || typeWeight(e.Type) > typeWeight(existing) {
			entityTypes[e.Entity] = e.Type
		}
	}

	matrix, df := buildMatrix(entities, opts.EntityTypes)
	survivors := pruneEntities(df, len(docs), opts)
	idf := idfScores(df, survivors, len(docs))
	edges := buildEdges(matrix, survivors, idf, opts.MinEdgeWeight)

	edgeWeight := make(map[[2]int64]float64, len(edges))
	for _, e := range edges {
		a, b := e.A, e.B
		if a > b {
			a, b = b, a
		}
		edgeWeight[[2]int64{a, b}] = e.Weight
	}

	nodes := make([]int64, 0, len(matrix))
	for doc := range matrix {
		nodes = append(nodes, doc)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	assignment := detectCommunities(nodes, edges, opts.Resolution)
	assignment = renumberBySize(assignment, opts.MinClusterSize)

	byCluster := make(map[int][]int64)
	for doc, c := range assignment {
		byCluster[c] = append(byCluster[c], doc)
	}

	topics := make([]Topic, 0, len(byCluster))
	for _, members := range byCluster {
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		label, topEntities := labelCluster(members, matrix, entityTypes, idf)
		topics = append(topics, Topic{
			Label:          label,
			Slug:           Slug(label),
			Fingerprint:    Fingerprint(members, matrix),
			CoherenceScore: coherence(members, edgeWeight),
			TopEntities:    topEntities,
			Members:        members,
		})
	}

	sort.Slice(topics, func(i, j int) bool { return len(topics[i].Members) > len(topics[j].Members) })
	return topics, nil
}

// Persist replaces wiki_topics and wiki_topic_members wholesale with the
// clustering result's topics, all members marked primary with
// relevance_score 1.0 as spec.md §4.10 requires.
func Persist(ctx context.Context, store storage.Storage, topics []Topic) ([]types.WikiTopic, error) {
	wikiTopics := make([]types.WikiTopic, 0, len(topics))
	membersByIndex := make(map[int][]types.WikiTopicMember, len(topics))

	for i, t := range topics {
		wikiTopics = append(wikiTopics, types.WikiTopic{
			Slug:           t.Slug,
			Label:          t.Label,
			Fingerprint:    t.Fingerprint,
			CoherenceScore: t.CoherenceScore,
			Status:         types.TopicActive,
		})
		members := make([]types.WikiTopicMember, 0, len(t.Members))
		for _, doc := range t.Members {
			members = append(members, types.WikiTopicMember{
				DocumentID:     doc,
				RelevanceScore: 1.0,
				IsPrimary:      true,
			})
		}
		membersByIndex[i] = members
	}

	return store.SaveTopics(ctx, wikiTopics, membersByIndex)
}
