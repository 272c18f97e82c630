package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

// ErrTaskNotFound is returned when a task lookup or mutation misses.
var ErrTaskNotFound = errors.New("task not found")

// Task is a to-do item. Completing a task credits its point reward to the
// account's points balance.
type Task struct {
	ID          int64
	AccountID   int64
	Title       string
	Notes       string
	DueAt       *time.Time
	Points      int
	Done        bool
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// CreateTask adds a task for an account.
func (d *Database) CreateTask(accountID int64, title, notes string, dueAt *time.Time, points int) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("task title cannot be empty")
	}
	if points < 0 {
		points = 0
	}

	id, err := d.insertReturningID(
		`INSERT INTO tasks (account_id, title, notes, due_at, points) VALUES (?, ?, ?, ?, ?)`,
		accountID, title, notes, dueAt, points)
	if err != nil {
		return nil, err
	}

	return d.GetTask(accountID, id)
}

// GetTask fetches one task, scoped to the owning account.
func (d *Database) GetTask(accountID, taskID int64) (*Task, error) {
	row := d.db.QueryRow(d.dialect.Rebind(
		`SELECT id, account_id, title, notes, due_at, points, done, created_at, completed_at
		FROM tasks WHERE id = ? AND account_id = ?`), taskID, accountID)
	return scanTask(row)
}

// ListTasks returns an account's tasks, pending first, newest first within
// each group.
func (d *Database) ListTasks(accountID int64) ([]*Task, error) {
	rows, err := d.db.Query(d.dialect.Rebind(
		`SELECT id, account_id, title, notes, due_at, points, done, created_at, completed_at
		FROM tasks WHERE account_id = ?
		ORDER BY done ASC, id DESC`), accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// UpdateTask edits a pending task's fields.
func (d *Database) UpdateTask(accountID, taskID int64, title, notes string, dueAt *time.Time, points int) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("task title cannot be empty")
	}

	result, err := d.db.Exec(d.dialect.Rebind(
		`UPDATE tasks SET title = ?, notes = ?, due_at = ?, points = ?
		WHERE id = ? AND account_id = ? AND done = 0`),
		title, notes, dueAt, points, taskID, accountID)
	if err != nil {
		return nil, err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, ErrTaskNotFound
	}
	return d.GetTask(accountID, taskID)
}

// CompleteTask marks a pending task done and credits its points to the
// account's balance in one transaction. Returns the points awarded.
func (d *Database) CompleteTask(accountID, taskID int64) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var points int
	err = tx.QueryRow(d.dialect.Rebind(
		`SELECT points FROM tasks WHERE id = ? AND account_id = ? AND done = 0`),
		taskID, accountID).Scan(&points)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTaskNotFound
		}
		return 0, err
	}

	if _, err := tx.Exec(d.dialect.Rebind(
		`UPDATE tasks SET done = 1, completed_at = CURRENT_TIMESTAMP WHERE id = ?`), taskID); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(d.dialect.Rebind(
		`UPDATE points SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP WHERE account_id = ?`),
		points, accountID); err != nil {
		return 0, err
	}

	return points, tx.Commit()
}

// DeleteTask removes a task.
func (d *Database) DeleteTask(accountID, taskID int64) error {
	result, err := d.db.Exec(d.dialect.Rebind(
		`DELETE FROM tasks WHERE id = ? AND account_id = ?`), taskID, accountID)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*Task, error) {
	var task Task
	var done int
	err := s.Scan(&task.ID, &task.AccountID, &task.Title, &task.Notes,
		&task.DueAt, &task.Points, &done, &task.CreatedAt, &task.CompletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	task.Done = done != 0
	return &task, nil
}
