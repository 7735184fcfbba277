package recommend

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/taskmarket/internal/domain"
)

// Input is one consistent snapshot of everything a ranking call reads.
type Input struct {
	UserID         string
	Candidates     []*domain.Task
	TaskProperties map[string]Set
	Interests      Set
	Completed      []*domain.Task
	Liked          []*domain.Task
}

type SignalScore struct {
	Raw        float64 `json:"raw"`
	Normalized float64 `json:"normalized"`
}

type Signals struct {
	Interest SignalScore `json:"interest"`
	History  SignalScore `json:"history"`
	Behavior SignalScore `json:"behavior"`
}

// Ranked is one candidate with its total score and per-signal breakdown.
type Ranked struct {
	Task    *domain.Task `json:"task"`
	Score   float64      `json:"score"`
	Signals Signals      `json:"signals"`
}

// Score ranks every candidate in the snapshot. The result is a permutation
// of the (ID-deduplicated) candidates ordered by total score descending, then
// task ID ascending. workers bounds the similarity fan-out; zero or less
// means GOMAXPROCS.
func Score(ctx context.Context, in Input, sim Similarity, workers int) []Ranked {
	candidates := uniqueByID(in.Candidates)
	if len(candidates) == 0 {
		return []Ranked{}
	}
	if sim == nil {
		sim = TextSimilarity
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	n := len(candidates)
	history := make([]float64, n)
	behavior := make([]float64, n)

	var g errgroup.Group
	g.SetLimit(workers)
	for i, task := range candidates {
		g.Go(func() error {
			history[i] = HistoryScore(ctx, task, in.Completed, sim)
			behavior[i] = BehaviorScore(ctx, task, in.Liked, sim)
			return nil
		})
	}
	_ = g.Wait()

	rawInterest := make(map[string]float64, n)
	rawHistory := make(map[string]float64, n)
	rawBehavior := make(map[string]float64, n)
	for i, task := range candidates {
		rawInterest[task.ID] = InterestScore(in.Interests, in.TaskProperties[task.ID])
		rawHistory[task.ID] = history[i]
		rawBehavior[task.ID] = behavior[i]
	}

	normInterest := MaxNormalize(rawInterest)
	normHistory := ZScore(rawHistory)
	normBehavior := ZScore(rawBehavior)

	ranked := make([]Ranked, 0, n)
	for _, task := range candidates {
		id := task.ID
		signals := Signals{
			Interest: SignalScore{Raw: rawInterest[id], Normalized: normInterest[id]},
			History:  SignalScore{Raw: rawHistory[id], Normalized: normHistory[id]},
			Behavior: SignalScore{Raw: rawBehavior[id], Normalized: normBehavior[id]},
		}
		ranked = append(ranked, Ranked{
			Task:    task,
			Score:   signals.Interest.Normalized + signals.History.Normalized + signals.Behavior.Normalized,
			Signals: signals,
		})
	}

	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Task.ID, b.Task.ID)
	})
	return ranked
}

func uniqueByID(tasks []*domain.Task) []*domain.Task {
	seen := make(map[string]struct{}, len(tasks))
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Ranker loads snapshots from a Store and scores them. It holds no state
// that changes between calls and is safe for concurrent use.
type Ranker struct {
	store   Store
	sim     Similarity
	workers int
}

type Option func(*Ranker)

func WithSimilarity(sim Similarity) Option {
	return func(r *Ranker) {
		if sim != nil {
			r.sim = sim
		}
	}
}

func WithWorkers(n int) Option {
	return func(r *Ranker) {
		r.workers = n
	}
}

func NewRanker(store Store, opts ...Option) *Ranker {
	r := &Ranker{
		store: store,
		sim:   TextSimilarity,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank returns every active task ordered by relevance to userID.
func (r *Ranker) Rank(ctx context.Context, userID string) ([]Ranked, error) {
	in, err := r.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Score(ctx, in, r.sim, r.workers), nil
}

// RankIDs is Rank reduced to the ordered task IDs.
func (r *Ranker) RankIDs(ctx context.Context, userID string) ([]string, error) {
	ranked, err := r.Rank(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(ranked))
	for i, item := range ranked {
		ids[i] = item.Task.ID
	}
	return ids, nil
}

// Load reads a fresh snapshot for userID. An unresolvable completed or liked
// task ID fails the whole call with domain.ErrIntegrity.
func (r *Ranker) Load(ctx context.Context, userID string) (Input, error) {
	candidates, err := r.store.ActiveTasks(ctx)
	if err != nil {
		return Input{}, fmt.Errorf("load active tasks: %w", err)
	}

	in := Input{
		UserID:         userID,
		Candidates:     candidates,
		TaskProperties: make(map[string]Set, len(candidates)),
	}
	if len(candidates) == 0 {
		return in, nil
	}

	for _, task := range candidates {
		props, err := r.store.TaskProperties(ctx, task.ID)
		if err != nil {
			return Input{}, fmt.Errorf("load properties of task %s: %w", task.ID, err)
		}
		in.TaskProperties[task.ID] = NewSet(props...)
	}

	interests, err := r.store.UserInterests(ctx, userID)
	if err != nil {
		return Input{}, fmt.Errorf("load interests of user %s: %w", userID, err)
	}
	in.Interests = NewSet(interests...)

	completedIDs, err := r.store.UserCompletedTaskIDs(ctx, userID)
	if err != nil {
		return Input{}, fmt.Errorf("load completed tasks of user %s: %w", userID, err)
	}
	if in.Completed, err = r.resolveAll(ctx, "completed", completedIDs); err != nil {
		return Input{}, err
	}

	likedIDs, err := r.store.UserLikedTaskIDs(ctx, userID)
	if err != nil {
		return Input{}, fmt.Errorf("load liked tasks of user %s: %w", userID, err)
	}
	if in.Liked, err = r.resolveAll(ctx, "liked", likedIDs); err != nil {
		return Input{}, err
	}

	return in, nil
}

// resolveAll resolves a deduplicated, sorted copy of ids so averages are
// summed in a stable order.
func (r *Ranker) resolveAll(ctx context.Context, kind string, ids []string) ([]*domain.Task, error) {
	unique := make([]string, 0, len(ids))
	for id := range NewSet(ids...) {
		unique = append(unique, id)
	}
	sort.Strings(unique)

	tasks := make([]*domain.Task, 0, len(unique))
	for _, id := range unique {
		task, err := r.store.ResolveTask(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%s task %s does not resolve: %w: %w", kind, id, domain.ErrIntegrity, err)
			}
			return nil, fmt.Errorf("resolve %s task %s: %w", kind, id, err)
		}
		if task == nil {
			return nil, fmt.Errorf("%s task %s resolved to nothing: %w", kind, id, domain.ErrIntegrity)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
