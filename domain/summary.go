package domain

import (
	"fmt"
	"strings"
)

// Summary is the completion report for a project.
type Summary struct {
	CompletedCount int    `json:"completedCount"`
	TotalCount     int    `json:"totalCount"`
	Markdown       string `json:"markdown"`
}

// Summarize counts completed todos and renders the markdown report. The
// project must have its todos resolved. Todos keep their ref order within
// each section.
func Summarize(p Project) Summary {
	var pending, completed []Todo
	for _, t := range p.Todos {
		if t.Status == StatusCompleted {
			completed = append(completed, t)
		} else {
			pending = append(pending, t)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "### Summary: %d / %d completed\n\n", len(completed), len(p.TodoRefs))
	b.WriteString("## Pending Todos\n")
	for _, t := range pending {
		fmt.Fprintf(&b, "- [ ] %s\n", t.Description)
	}
	b.WriteString("## Completed Todos\n")
	for _, t := range completed {
		fmt.Fprintf(&b, "- [x] %s\n", t.Description)
	}

	return Summary{
		CompletedCount: len(completed),
		TotalCount:     len(p.TodoRefs),
		Markdown:       b.String(),
	}
}
