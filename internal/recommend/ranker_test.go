package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskmarket/internal/domain"
)

func rankedIDs(ranked []Ranked) []string {
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.Task.ID
	}
	return ids
}

func TestRanker_InterestOrdersCandidates(t *testing.T) {
	store := newFakeStore()
	store.add("a", "build a website", true, "p1")
	store.add("b", "walk the dog", true, "p1", "p2")
	store.interests = []string{"p1"}

	ranked, err := NewRanker(store).Rank(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, []string{"a", "b"}, rankedIDs(ranked))
	assert.Equal(t, 1.0, ranked[0].Signals.Interest.Raw)
	assert.Equal(t, 0.5, ranked[1].Signals.Interest.Raw)
	assert.Equal(t, 1.0, ranked[0].Signals.Interest.Normalized)
	assert.Equal(t, 0.5, ranked[1].Signals.Interest.Normalized)
	assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)
}

func TestRanker_HistoryFavorsSimilarTasks(t *testing.T) {
	store := newFakeStore()
	store.add("done", "clean the kitchen floor", false)
	store.add("c1", "repair the car engine", true)
	store.add("c2", "clean kitchen windows", true)
	store.completed = []string{"done"}

	ranked, err := NewRanker(store).Rank(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"c2", "c1"}, rankedIDs(ranked))
	assert.Greater(t, ranked[0].Signals.History.Raw, 0.0)
	assert.InDelta(t, 1.0, ranked[0].Signals.History.Normalized, 1e-12)
	assert.InDelta(t, -1.0, ranked[1].Signals.History.Normalized, 1e-12)
}

func TestRanker_LikedTasksDriveBehavior(t *testing.T) {
	store := newFakeStore()
	store.add("liked", "paint the garden fence", true)
	store.add("x", "paint the bedroom wall", true)
	store.add("y", "file quarterly taxes", true)
	store.liked = []string{"liked", "liked"}

	ranked, err := NewRanker(store).Rank(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"liked", "x", "y"}, rankedIDs(ranked))
	assert.Equal(t, 0.0, ranked[2].Signals.Behavior.Raw)
}

func TestRanker_TieBreakByID(t *testing.T) {
	store := newFakeStore()
	for _, id := range []string{"t3", "t1", "t2"} {
		store.add(id, "identical description", true)
	}

	ids, err := NewRanker(store).RankIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids)
}

func TestRanker_NoCandidates(t *testing.T) {
	store := newFakeStore()
	store.add("inactive", "old task", false)
	store.completed = []string{"missing"}

	ranked, err := NewRanker(store).Rank(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRanker_UnresolvableCompletedTask(t *testing.T) {
	store := newFakeStore()
	store.add("t1", "write documentation", true)
	store.completed = []string{"ghost"}

	_, err := NewRanker(store).Rank(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIntegrity))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "ghost")
}

func TestRanker_UnresolvableLikedTask(t *testing.T) {
	store := newFakeStore()
	store.add("t1", "write documentation", true)
	store.liked = []string{"ghost"}

	_, err := NewRanker(store).Rank(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

func TestRanker_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.failWith = errBackend

	_, err := NewRanker(store).Rank(context.Background(), "u1")
	assert.ErrorIs(t, err, errBackend)
	assert.NotErrorIs(t, err, domain.ErrIntegrity)
}

func TestScore_PermutationAndOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	words := []string{"garden", "paint", "fence", "kitchen", "clean", "code", "review", "taxes", "dog", "walk"}
	props := []string{"p1", "p2", "p3"}

	store := newFakeStore()
	for i := 0; i < 40; i++ {
		desc := ""
		for j := 0; j < 4; j++ {
			desc += words[rng.Intn(len(words))] + " "
		}
		var tags []string
		for _, p := range props {
			if rng.Intn(2) == 0 {
				tags = append(tags, p)
			}
		}
		store.add(fmt.Sprintf("t%02d", i), desc, i%5 != 0, tags...)
	}
	store.interests = []string{"p1", "p3"}
	store.completed = []string{"t00", "t05"}
	store.liked = []string{"t10", "t11"}

	ctx := context.Background()
	ranker := NewRanker(store, WithWorkers(3))
	ranked, err := ranker.Rank(ctx, "u1")
	require.NoError(t, err)

	got := rankedIDs(ranked)
	want := append([]string(nil), store.active...)
	sort.Strings(want)
	sortedGot := append([]string(nil), got...)
	sort.Strings(sortedGot)
	assert.Equal(t, want, sortedGot)

	for i := 1; i < len(ranked); i++ {
		prev, cur := ranked[i-1], ranked[i]
		assert.GreaterOrEqual(t, prev.Score, cur.Score)
		if prev.Score == cur.Score {
			assert.Less(t, prev.Task.ID, cur.Task.ID)
		}
	}

	again, err := NewRanker(store, WithWorkers(1)).RankIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestScore_DeduplicatesCandidates(t *testing.T) {
	a := &domain.Task{ID: "a", Description: "one thing"}
	b := &domain.Task{ID: "b", Description: "another thing"}

	ranked := Score(context.Background(), Input{Candidates: []*domain.Task{a, b, a, nil}}, nil, 0)
	assert.ElementsMatch(t, []string{"a", "b"}, rankedIDs(ranked))
}

func BenchmarkRanker_Rank(b *testing.B) {
	store := newFakeStore()
	for i := 0; i < 200; i++ {
		store.add(fmt.Sprintf("t%03d", i), fmt.Sprintf("task number %d about garden work and code review", i), true, "p1")
	}
	store.completed = []string{"t000", "t001", "t002"}
	store.liked = []string{"t003"}
	ranker := NewRanker(store)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ranker.Rank(context.Background(), "u1"); err != nil {
			b.Fatal(err)
		}
	}
}
