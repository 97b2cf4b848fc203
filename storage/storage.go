package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/bytedance/sonic"

	"tracker-api/domain"
)

// Tables stores projects and todos in a single Azure table.
type Tables struct {
	table *aztables.Client
}

// New creates a Tables store from the given connection string.
func New(connStr, table string) (*Tables, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &Tables{table: svc.NewClient(table)}, nil
}

// mapErr translates table service status codes into domain errors.
func mapErr(err error) error {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusNotFound:
			return domain.ErrNotFound
		case http.StatusPreconditionFailed, http.StatusConflict:
			return domain.ErrConcurrencyConflict
		}
	}
	return err
}

func ifMatch(etag string) *azcore.ETag {
	if etag == "" {
		et := azcore.ETagAny
		return &et
	}
	et := azcore.ETag(etag)
	return &et
}

func (s *Tables) get(ctx context.Context, rowKey string) ([]byte, string, error) {
	resp, err := s.table.GetEntity(ctx, trackerPartition, rowKey, nil)
	if err != nil {
		if mapErr(err) == domain.ErrNotFound {
			return nil, "", nil
		}
		return nil, "", err
	}
	return resp.Value, string(resp.ETag), nil
}

// GetTodo retrieves a todo if present.
func (s *Tables) GetTodo(ctx context.Context, id string) (*domain.Todo, error) {
	data, etag, err := s.get(ctx, todoRowKey(id))
	if err != nil || data == nil {
		return nil, err
	}
	t, err := decodeTodo(data)
	if err != nil {
		return nil, err
	}
	t.ETag = etag
	return &t, nil
}

func (s *Tables) InsertTodo(ctx context.Context, t domain.Todo) error {
	payload, err := encodeTodo(t)
	if err != nil {
		return err
	}
	_, err = s.table.AddEntity(ctx, payload, nil)
	return mapErr(err)
}

// UpdateTodo replaces a todo entity conditional on its ETag.
func (s *Tables) UpdateTodo(ctx context.Context, t domain.Todo) error {
	payload, err := encodeTodo(t)
	if err != nil {
		return err
	}
	_, err = s.table.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    ifMatch(t.ETag),
		UpdateMode: aztables.UpdateModeReplace,
	})
	return mapErr(err)
}

func (s *Tables) DeleteTodo(ctx context.Context, id string) error {
	_, err := s.table.DeleteEntity(ctx, trackerPartition, todoRowKey(id), &aztables.DeleteEntityOptions{IfMatch: ifMatch("")})
	return mapErr(err)
}

// GetProject retrieves a project if present.
func (s *Tables) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	data, etag, err := s.get(ctx, projectRowKey(id))
	if err != nil || data == nil {
		return nil, err
	}
	p, err := decodeProject(data)
	if err != nil {
		return nil, err
	}
	p.ETag = etag
	return &p, nil
}

// ListProjects returns all projects ordered by creation time.
func (s *Tables) ListProjects(ctx context.Context) ([]domain.Project, error) {
	filter := fmt.Sprintf("PartitionKey eq '%s' and Kind eq '%s'", trackerPartition, kindProject)
	pager := s.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	projects := []domain.Project{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			p, err := decodeProject(e)
			if err != nil {
				return nil, err
			}
			projects = append(projects, p)
		}
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})
	return projects, nil
}

func (s *Tables) InsertProject(ctx context.Context, p domain.Project) error {
	payload, err := encodeProject(p)
	if err != nil {
		return err
	}
	_, err = s.table.AddEntity(ctx, payload, nil)
	return mapErr(err)
}

// UpdateProject replaces a project entity conditional on its ETag.
func (s *Tables) UpdateProject(ctx context.Context, p domain.Project) error {
	payload, err := encodeProject(p)
	if err != nil {
		return err
	}
	_, err = s.table.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    ifMatch(p.ETag),
		UpdateMode: aztables.UpdateModeReplace,
	})
	return mapErr(err)
}

func (s *Tables) DeleteProject(ctx context.Context, id string) error {
	_, err := s.table.DeleteEntity(ctx, trackerPartition, projectRowKey(id), &aztables.DeleteEntityOptions{IfMatch: ifMatch("")})
	return mapErr(err)
}

// InsertLinkedTodo adds the todo and replaces the project in one transaction.
func (s *Tables) InsertLinkedTodo(ctx context.Context, p domain.Project, t domain.Todo) error {
	todoPayload, err := encodeTodo(t)
	if err != nil {
		return err
	}
	projectPayload, err := encodeProject(p)
	if err != nil {
		return err
	}
	return s.submit(ctx, []aztables.TransactionAction{
		{ActionType: aztables.TransactionTypeAdd, Entity: todoPayload},
		{ActionType: aztables.TransactionTypeUpdateReplace, Entity: projectPayload, IfMatch: ifMatch(p.ETag)},
	})
}

// UnlinkAndDeleteTodo replaces the project and deletes the todo in one transaction.
func (s *Tables) UnlinkAndDeleteTodo(ctx context.Context, p domain.Project, todoID string) error {
	projectPayload, err := encodeProject(p)
	if err != nil {
		return err
	}
	keys, err := sonic.Marshal(keysFor(todoRowKey(todoID)))
	if err != nil {
		return err
	}
	return s.submit(ctx, []aztables.TransactionAction{
		{ActionType: aztables.TransactionTypeUpdateReplace, Entity: projectPayload, IfMatch: ifMatch(p.ETag)},
		{ActionType: aztables.TransactionTypeDelete, Entity: keys, IfMatch: ifMatch("")},
	})
}

func (s *Tables) submit(ctx context.Context, actions []aztables.TransactionAction) error {
	if _, err := s.table.SubmitTransaction(ctx, actions, nil); err != nil {
		return mapErr(err)
	}
	return nil
}
