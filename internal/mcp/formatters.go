package mcp

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rcliao/taskmarket/internal/domain"
	"github.com/rcliao/taskmarket/internal/service"
)

// FormatRecommendationsAsMarkdown renders one page of ranked tasks with the
// per-signal breakdown.
func FormatRecommendationsAsMarkdown(page *service.RecommendationPage) string {
	if page == nil || page.Total == 0 {
		return "🎯 **No recommendations**\n\nThere are no active tasks to rank."
	}
	if len(page.Items) == 0 {
		return fmt.Sprintf("🎯 **No recommendations on page %d**\n\n%d tasks ranked in total.", page.Page, page.Total)
	}

	var sb strings.Builder
	sb.WriteString("# 🎯 Recommended Tasks\n\n")
	sb.WriteString(fmt.Sprintf("Page %d · %d of %d tasks\n\n", page.Page, len(page.Items), page.Total))

	offset := (page.Page - 1) * page.PageSize
	for i, item := range page.Items {
		sb.WriteString(fmt.Sprintf("%d. **%s** `[%s]` score %.3f\n", offset+i+1, item.Task.Name, shortID(item.Task.ID), item.Score))
		sb.WriteString(fmt.Sprintf("   interest %.3f · history %.3f · behavior %.3f\n",
			item.Signals.Interest.Normalized,
			item.Signals.History.Normalized,
			item.Signals.Behavior.Normalized))
	}
	return strings.TrimSpace(sb.String())
}

// FormatTasksAsMarkdown groups tasks by status.
func FormatTasksAsMarkdown(tasks []*domain.Task) string {
	if len(tasks) == 0 {
		return "📋 **No tasks found**\n\nPost one with `taskmarket.task.create`"
	}

	groups := make(map[domain.TaskStatus][]*domain.Task)
	for _, task := range tasks {
		groups[task.Status] = append(groups[task.Status], task)
	}

	var sb strings.Builder
	sb.WriteString("# 📋 Tasks\n\n")
	for _, status := range []domain.TaskStatus{
		domain.StatusInProgress,
		domain.StatusNotStarted,
		domain.StatusInReview,
		domain.StatusDone,
	} {
		group := groups[status]
		if len(group) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", statusHeader(status)))
		for _, task := range group {
			sb.WriteString(formatTask(task))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func formatTask(task *domain.Task) string {
	var sb strings.Builder

	checkbox := "[ ]"
	switch task.Status {
	case domain.StatusDone:
		checkbox = "[x]"
	case domain.StatusInReview:
		checkbox = "[?]"
	case domain.StatusInProgress:
		checkbox = "[>]"
	}

	sb.WriteString(fmt.Sprintf("- %s **%s** `[%s]`", checkbox, task.Name, shortID(task.ID)))
	if !task.IsActive {
		sb.WriteString(" (inactive)")
	}
	sb.WriteString("\n")
	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("  %s\n", task.Description))
	}
	return sb.String()
}

func statusHeader(status domain.TaskStatus) string {
	switch status {
	case domain.StatusInProgress:
		return "🔄 In Progress"
	case domain.StatusNotStarted:
		return "📝 Not Started"
	case domain.StatusInReview:
		return "👀 In Review"
	case domain.StatusDone:
		return "✅ Done"
	default:
		return string(status)
	}
}

// FormatSummaryAsMarkdown renders a user summary and its insights.
func FormatSummaryAsMarkdown(s *domain.UserSummary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# 👤 %s\n\n", s.User.Username))

	role := "no profile"
	if s.IsEmployer != nil {
		role = "employee"
		if *s.IsEmployer {
			role = "employer"
		}
	}
	sb.WriteString(fmt.Sprintf("- **Role:** %s\n", role))
	sb.WriteString(fmt.Sprintf("- **Interests:** %d\n", len(s.Interests)))
	sb.WriteString(fmt.Sprintf("- **Completed tasks:** %d\n", s.CompletedTasks))
	sb.WriteString(fmt.Sprintf("- **Likes / dislikes:** %d / %d\n", s.LikedTasks, s.DislikedTasks))
	sb.WriteString(fmt.Sprintf("- **Owned tasks:** %d (%d active)\n", s.OwnedTasks, s.ActiveOwned))

	if len(s.Insights) > 0 {
		sb.WriteString("\n## 💡 Insights\n\n")
		for _, insight := range s.Insights {
			sb.WriteString(fmt.Sprintf("- %s\n", insight))
		}
	}
	return strings.TrimSpace(sb.String())
}

// WriteRecommendationsTable prints a page as aligned columns for terminals.
func WriteRecommendationsTable(w io.Writer, page *service.RecommendationPage) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tINTEREST\tHISTORY\tBEHAVIOR\tID\tNAME")

	offset := (page.Page - 1) * page.PageSize
	for i, item := range page.Items {
		fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%.4f\t%.4f\t%s\t%s\n",
			offset+i+1,
			item.Score,
			item.Signals.Interest.Normalized,
			item.Signals.History.Normalized,
			item.Signals.Behavior.Normalized,
			item.Task.ID,
			item.Task.Name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\npage %d (%d per page), %d tasks ranked\n", page.Page, page.PageSize, page.Total)
	return err
}

// formatResult renders results that have a markdown form; others are
// returned as JSON by the caller.
func formatResult(result interface{}) (string, bool) {
	switch v := result.(type) {
	case *service.RecommendationPage:
		return FormatRecommendationsAsMarkdown(v), true
	case []*domain.Task:
		return FormatTasksAsMarkdown(v), true
	case *domain.UserSummary:
		return FormatSummaryAsMarkdown(v), true
	}
	return "", false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
