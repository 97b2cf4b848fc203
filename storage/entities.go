package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"tracker-api/domain"
)

// All records share one partition so that a project and its todos can be
// written in a single entity group transaction.
const trackerPartition = "tracker"

const (
	kindProject = "project"
	kindTodo    = "todo"

	edmDateTime = "Edm.DateTime"
)

// Entity represents base table entity keys.
type Entity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
}

type todoEntity struct {
	Entity
	Kind          string    `json:"Kind"`
	Description   string    `json:"Description"`
	Status        string    `json:"Status"`
	CreatedAt     time.Time `json:"CreatedAt"`
	CreatedAtType string    `json:"CreatedAt@odata.type"`
	UpdatedAt     time.Time `json:"UpdatedAt"`
	UpdatedAtType string    `json:"UpdatedAt@odata.type"`
}

// projectEntity stores TodoRefs as a JSON array string since table
// properties are scalar.
type projectEntity struct {
	Entity
	Kind          string    `json:"Kind"`
	Title         string    `json:"Title"`
	CreatedAt     time.Time `json:"CreatedAt"`
	CreatedAtType string    `json:"CreatedAt@odata.type"`
	TodoRefs      string    `json:"TodoRefs"`
}

// etagField is present on entities returned by list queries.
type etagField struct {
	ETag string `json:"odata.etag"`
}

func projectRowKey(id string) string { return kindProject + "_" + id }
func todoRowKey(id string) string    { return kindTodo + "_" + id }

func keysFor(rowKey string) Entity {
	return Entity{PartitionKey: trackerPartition, RowKey: rowKey}
}

func encodeTodo(t domain.Todo) ([]byte, error) {
	return sonic.Marshal(todoEntity{
		Entity:        keysFor(todoRowKey(t.ID)),
		Kind:          kindTodo,
		Description:   t.Description,
		Status:        string(t.Status),
		CreatedAt:     t.CreatedAt.UTC(),
		CreatedAtType: edmDateTime,
		UpdatedAt:     t.UpdatedAt.UTC(),
		UpdatedAtType: edmDateTime,
	})
}

func decodeTodo(data []byte) (domain.Todo, error) {
	var ent todoEntity
	if err := sonic.Unmarshal(data, &ent); err != nil {
		return domain.Todo{}, err
	}
	id, ok := strings.CutPrefix(ent.RowKey, kindTodo+"_")
	if !ok || ent.Kind != kindTodo {
		return domain.Todo{}, fmt.Errorf("entity %q is not a todo", ent.RowKey)
	}
	var tag etagField
	_ = sonic.Unmarshal(data, &tag)
	return domain.Todo{
		ID:          id,
		Description: ent.Description,
		Status:      domain.Status(ent.Status),
		CreatedAt:   ent.CreatedAt,
		UpdatedAt:   ent.UpdatedAt,
		ETag:        tag.ETag,
	}, nil
}

func encodeProject(p domain.Project) ([]byte, error) {
	refs := p.TodoRefs
	if refs == nil {
		refs = []string{}
	}
	rawRefs, err := sonic.MarshalString(refs)
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(projectEntity{
		Entity:        keysFor(projectRowKey(p.ID)),
		Kind:          kindProject,
		Title:         p.Title,
		CreatedAt:     p.CreatedAt.UTC(),
		CreatedAtType: edmDateTime,
		TodoRefs:      rawRefs,
	})
}

func decodeProject(data []byte) (domain.Project, error) {
	var ent projectEntity
	if err := sonic.Unmarshal(data, &ent); err != nil {
		return domain.Project{}, err
	}
	id, ok := strings.CutPrefix(ent.RowKey, kindProject+"_")
	if !ok || ent.Kind != kindProject {
		return domain.Project{}, fmt.Errorf("entity %q is not a project", ent.RowKey)
	}
	refs := []string{}
	if ent.TodoRefs != "" {
		if err := sonic.UnmarshalString(ent.TodoRefs, &refs); err != nil {
			return domain.Project{}, fmt.Errorf("decode todo refs: %w", err)
		}
	}
	var tag etagField
	_ = sonic.Unmarshal(data, &tag)
	return domain.Project{
		ID:        id,
		Title:     ent.Title,
		CreatedAt: ent.CreatedAt,
		TodoRefs:  refs,
		ETag:      tag.ETag,
	}, nil
}
