package api

import "tracker-api/domain"

const (
	maxBodySize          = 64 * 1024 // 64 KiB
	headerIdempotencyKey = "Idempotency-Key"
)

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   any    `json:"error,omitempty"`
}

type projectRequest struct {
	Title string `json:"title"`
}

type linkTodoRequest struct {
	TodoID string `json:"todoId"`
}

type createTodoRequest struct {
	ProjectID   string `json:"projectId"`
	Description string `json:"description"`
}

type createTodoResponse struct {
	Project domain.Project `json:"project"`
	Todo    domain.Todo    `json:"todo"`
}

type updateTodoRequest struct {
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type exportResponse struct {
	Message         string `json:"message"`
	MarkdownContent string `json:"markdownContent"`
	GistID          string `json:"gistId,omitempty"`
	GistURL         string `json:"gistUrl,omitempty"`
}
