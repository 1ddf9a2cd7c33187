package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskman/internal/models"
)

// ErrTaskNotFound is returned both when a task does not exist and when
// it exists under a different owner. Callers must not be able to tell
// those apart.
var ErrTaskNotFound = errors.New("task not found")

const taskColumns = "id, owner_id, title, description, priority, due_date, completed, created_at, updated_at"

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateTaskParams carries the caller-supplied fields for a new task.
// The owner always comes from the authenticated identity, never from
// the request body.
type CreateTaskParams struct {
	Title       string
	Description *string
	Priority    string
	DueDate     *time.Time
}

// TaskFilter narrows List results. A nil/empty field means "no filter
// on that dimension".
type TaskFilter struct {
	Completed *bool
	Priority  string
}

// TaskPatch is a partial update: nil fields are left unchanged, set
// fields overwrite the stored value.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *string
	DueDate     *time.Time
	Completed   *bool
}

// apply merges the patch into the task, field by field.
func (p TaskPatch) apply(t *models.Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

func scanTask(row *sql.Row) (models.Task, error) {
	var task models.Task
	err := row.Scan(&task.ID, &task.OwnerID, &task.Title, &task.Description,
		&task.Priority, &task.DueDate, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
	return task, err
}

func (r *TaskRepository) Create(ownerID int, params CreateTaskParams) (models.Task, error) {
	if params.Priority == "" {
		params.Priority = "medium"
	}
	row := r.db.QueryRow(
		"INSERT INTO tasks (owner_id, title, description, priority, due_date) VALUES ($1, $2, $3, $4, $5) RETURNING "+taskColumns,
		ownerID, params.Title, params.Description, params.Priority, params.DueDate,
	)
	return scanTask(row)
}

func (r *TaskRepository) List(ownerID int, filter TaskFilter) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE owner_id = $1"
	args := []interface{}{ownerID}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		query += fmt.Sprintf(" AND completed = $%d", len(args))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		err := rows.Scan(&task.ID, &task.OwnerID, &task.Title, &task.Description,
			&task.Priority, &task.DueDate, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// getOwned is the single ownership-scoped lookup every per-task
// operation goes through. Missing row and foreign owner both come back
// as ErrTaskNotFound.
func (r *TaskRepository) getOwned(ownerID, taskID int) (models.Task, error) {
	row := r.db.QueryRow(
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1 AND owner_id = $2",
		taskID, ownerID,
	)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (r *TaskRepository) GetByID(ownerID, taskID int) (models.Task, error) {
	return r.getOwned(ownerID, taskID)
}

// Update applies the patch to the owner's task. Unset patch fields
// keep their stored values; updated_at always advances, even for an
// empty patch.
func (r *TaskRepository) Update(ownerID, taskID int, patch TaskPatch) (models.Task, error) {
	task, err := r.getOwned(ownerID, taskID)
	if err != nil {
		return models.Task{}, err
	}

	patch.apply(&task)

	row := r.db.QueryRow(
		`UPDATE tasks
         SET title = $1, description = $2, priority = $3, due_date = $4, completed = $5, updated_at = CURRENT_TIMESTAMP
         WHERE id = $6 AND owner_id = $7
         RETURNING `+taskColumns,
		task.Title, task.Description, task.Priority, task.DueDate, task.Completed,
		taskID, ownerID,
	)
	updated, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		// Deleted between the lookup and the write
		return models.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

func (r *TaskRepository) Delete(ownerID, taskID int) error {
	result, err := r.db.Exec(
		"DELETE FROM tasks WHERE id = $1 AND owner_id = $2",
		taskID, ownerID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ToggleCompletion flips completed in a single statement so two
// concurrent toggles cannot read the same starting value.
func (r *TaskRepository) ToggleCompletion(ownerID, taskID int) (models.Task, error) {
	row := r.db.QueryRow(
		`UPDATE tasks
         SET completed = NOT completed, updated_at = CURRENT_TIMESTAMP
         WHERE id = $1 AND owner_id = $2
         RETURNING `+taskColumns,
		taskID, ownerID,
	)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}
