// ABOUTME: Task MCP tool handlers
// ABOUTME: Implements list_tasks, add_task and toggle_task
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/viewmodel"
)

type TaskListInput struct {
	IncludeCompleted *bool `json:"include_completed,omitempty" jsonschema:"Include completed tasks (default true)"`
}

type AddTaskInput struct {
	Title string `json:"title" jsonschema:"Task title (required)"`
}

type TaskOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
}

type TasksOutput struct {
	Tasks []TaskOutput `json:"tasks"`
}

func taskToOutput(t models.Task) TaskOutput {
	return TaskOutput{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: formatTime(t.CreatedAt),
	}
}

func (h *Handlers) tasks(ctx context.Context) (*viewmodel.TaskList, error) {
	nav := &navRecorder{}
	t := viewmodel.NewTaskList(h.sessions, h.stores.Tasks, nav, viewmodel.AlwaysConfirm{}, h.log)
	if err := mount(ctx, t, nav); err != nil {
		t.Unmount()
		return nil, err
	}
	return t, nil
}

func findTask(tasks []models.Task, id string) (models.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

func (h *Handlers) ListTasks(ctx context.Context, _ *mcp.CallToolRequest, input TaskListInput) (*mcp.CallToolResult, TasksOutput, error) {
	t, err := h.tasks(ctx)
	if err != nil {
		return nil, TasksOutput{}, err
	}
	defer t.Unmount()

	includeCompleted := input.IncludeCompleted == nil || *input.IncludeCompleted
	out := TasksOutput{Tasks: []TaskOutput{}}
	for _, task := range t.Tasks() {
		if task.Completed && !includeCompleted {
			continue
		}
		out.Tasks = append(out.Tasks, taskToOutput(task))
	}
	return nil, out, nil
}

func (h *Handlers) AddTask(ctx context.Context, _ *mcp.CallToolRequest, input AddTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	t, err := h.tasks(ctx)
	if err != nil {
		return nil, TaskOutput{}, err
	}
	defer t.Unmount()

	t.SetNewTitle(input.Title)
	if err := t.Add(ctx); err != nil {
		return nil, TaskOutput{}, toolError(err)
	}

	list := t.Tasks()
	if len(list) == 0 {
		return nil, TaskOutput{}, fmt.Errorf("task was not saved")
	}
	return nil, taskToOutput(list[0]), nil
}

func (h *Handlers) ToggleTask(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, TaskOutput, error) {
	t, err := h.tasks(ctx)
	if err != nil {
		return nil, TaskOutput{}, err
	}
	defer t.Unmount()

	if _, ok := findTask(t.Tasks(), input.ID); !ok {
		return nil, TaskOutput{}, fmt.Errorf("task not found: %s", input.ID)
	}
	if err := t.Toggle(ctx, input.ID); err != nil {
		return nil, TaskOutput{}, toolError(err)
	}

	task, ok := findTask(t.Tasks(), input.ID)
	if !ok {
		return nil, TaskOutput{}, fmt.Errorf("task not found: %s", input.ID)
	}
	return nil, taskToOutput(task), nil
}
