package recommend

import (
	"context"

	"github.com/rcliao/taskmarket/internal/domain"
	"github.com/rcliao/taskmarket/internal/search"
)

// Similarity scores two tasks by their descriptions.
type Similarity interface {
	Between(ctx context.Context, a, b *domain.Task) float64
}

// SimilarityFunc adapts a text similarity function to Similarity.
type SimilarityFunc func(a, b string) float64

func (f SimilarityFunc) Between(_ context.Context, a, b *domain.Task) float64 {
	return f(a.Description, b.Description)
}

// TextSimilarity is the default per-pair TF-IDF cosine similarity.
var TextSimilarity Similarity = SimilarityFunc(search.Similarity)

// InterestScore is |interests ∩ taskProps| / |taskProps|, or 0 for an
// untagged task. The denominator is the task's own tag count, so a task with
// many tags scores low unless most of them match.
func InterestScore(interests, taskProps Set) float64 {
	if len(taskProps) == 0 {
		return 0
	}

	common := 0
	for id := range taskProps {
		if interests.Has(id) {
			common++
		}
	}
	return float64(common) / float64(len(taskProps))
}

// HistoryScore is the mean similarity of task to the user's completed tasks,
// or 0 when there are none.
func HistoryScore(ctx context.Context, task *domain.Task, completed []*domain.Task, sim Similarity) float64 {
	return meanSimilarity(ctx, task, completed, sim)
}

// BehaviorScore is the mean similarity of task to the user's liked tasks, or
// 0 when there are none.
func BehaviorScore(ctx context.Context, task *domain.Task, liked []*domain.Task, sim Similarity) float64 {
	return meanSimilarity(ctx, task, liked, sim)
}

func meanSimilarity(ctx context.Context, task *domain.Task, others []*domain.Task, sim Similarity) float64 {
	if len(others) == 0 {
		return 0
	}

	var sum float64
	for _, other := range others {
		sum += sim.Between(ctx, task, other)
	}
	return sum / float64(len(others))
}
