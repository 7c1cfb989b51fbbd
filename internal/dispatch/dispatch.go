// Package dispatch turns user intents into remote writes.
package dispatch

import (
	"context"
	"strings"

	"famjam-cli/internal/model"
	"famjam-cli/internal/remote"

	log "github.com/sirupsen/logrus"
)

// Writer is the write/query half of remote.Store.
type Writer interface {
	Create(ctx context.Context, board string, fields map[string]string) (string, error)
	Update(ctx context.Context, board, id string, fields map[string]string) error
	Delete(ctx context.Context, board, id string) error
	DeleteBatch(ctx context.Context, board string, ids []string) error
	Query(ctx context.Context, board string, where remote.Where) ([]remote.Doc, error)
}

type Dispatcher struct {
	store  Writer
	logger log.FieldLogger
}

func New(store Writer, logger log.FieldLogger) *Dispatcher {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Dispatcher{store: store, logger: logger}
}

// NewTask holds the add-task form. Only Title is required.
type NewTask struct {
	Title     string
	Assignee  string
	DueDate   string // YYYY-MM-DD or empty
	Priority  string // high|med|low or empty
	CreatedBy string
}

// Validate runs the local checks CreateTask applies before any remote call.
func (in NewTask) Validate() error {
	_, err := in.fields()
	return err
}

func (in NewTask) fields() (map[string]string, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, EmptyInputError{Field: "title"}
	}
	due := strings.TrimSpace(in.DueDate)
	if due != "" && !model.ValidDueDate(due) {
		return nil, InvalidInputError{Field: "dueDate", Value: in.DueDate}
	}
	prio := model.PriorityMed
	if s := strings.TrimSpace(in.Priority); s != "" {
		p, ok := model.ParsePriority(s)
		if !ok {
			return nil, InvalidInputError{Field: "priority", Value: in.Priority}
		}
		prio = p
	}
	createdBy := strings.TrimSpace(in.CreatedBy)
	if createdBy == "" {
		createdBy = model.DefaultCreatedBy
	}
	return map[string]string{
		model.FieldTitle:     title,
		model.FieldAssignee:  strings.TrimSpace(in.Assignee),
		model.FieldDueDate:   due,
		model.FieldPriority:  string(prio),
		model.FieldStatus:    string(model.StatusOpen),
		model.FieldCreatedBy: createdBy,
	}, nil
}

// CreateTask validates locally and writes a new open task. Returns the new task id.
func (d *Dispatcher) CreateTask(ctx context.Context, board string, in NewTask) (string, error) {
	if board == "" {
		return "", EmptyInputError{Field: "board"}
	}
	fields, err := in.fields()
	if err != nil {
		return "", err
	}
	id, err := d.store.Create(ctx, board, fields)
	if err != nil {
		d.logger.WithError(err).WithField("board", board).Warn("create task failed")
		return "", WriteError{Op: "create", Board: board, Err: err}
	}
	d.logger.WithFields(log.Fields{"board": board, "task": id}).Debug("task created")
	return id, nil
}

// SetStatus writes status (and the store-side updatedAt) only.
func (d *Dispatcher) SetStatus(ctx context.Context, board, id string, status model.Status) error {
	if board == "" {
		return EmptyInputError{Field: "board"}
	}
	if strings.TrimSpace(id) == "" {
		return EmptyInputError{Field: "task"}
	}
	err := d.store.Update(ctx, board, id, map[string]string{model.FieldStatus: string(status)})
	if err != nil {
		d.logger.WithError(err).WithFields(log.Fields{"board": board, "task": id}).Warn("set status failed")
		return WriteError{Op: "set-status", Board: board, Err: err}
	}
	return nil
}

// DeleteTask removes a task. A task that is already gone counts as deleted.
func (d *Dispatcher) DeleteTask(ctx context.Context, board, id string) error {
	if board == "" {
		return EmptyInputError{Field: "board"}
	}
	if strings.TrimSpace(id) == "" {
		return EmptyInputError{Field: "task"}
	}
	if err := d.store.Delete(ctx, board, id); err != nil {
		d.logger.WithError(err).WithFields(log.Fields{"board": board, "task": id}).Warn("delete failed")
		return WriteError{Op: "delete", Board: board, Err: err}
	}
	return nil
}

type ClearResult struct {
	Removed int `json:"removed"`
}

// ClearDone deletes, in one atomic batch, exactly the tasks that were done when queried.
// It returns ErrNothingToClear (and makes no delete call) when there are none.
func (d *Dispatcher) ClearDone(ctx context.Context, board string) (ClearResult, error) {
	if board == "" {
		return ClearResult{}, EmptyInputError{Field: "board"}
	}
	docs, err := d.store.Query(ctx, board, remote.Where{Field: model.FieldStatus, Value: string(model.StatusDone)})
	if err != nil {
		d.logger.WithError(err).WithField("board", board).Warn("query done tasks failed")
		return ClearResult{}, WriteError{Op: "clear-done", Board: board, Err: err}
	}
	if len(docs) == 0 {
		return ClearResult{}, ErrNothingToClear
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	if err := d.store.DeleteBatch(ctx, board, ids); err != nil {
		d.logger.WithError(err).WithField("board", board).Warn("clear done batch failed")
		return ClearResult{}, WriteError{Op: "clear-done", Board: board, Err: err}
	}
	d.logger.WithFields(log.Fields{"board": board, "removed": len(ids)}).Debug("cleared done tasks")
	return ClearResult{Removed: len(ids)}, nil
}
