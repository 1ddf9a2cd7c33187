package repository

import (
	"testing"
	"time"

	"taskman/internal/models"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func timePtr(t time.Time) *time.Time { return &t }

func baseTask() models.Task {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return models.Task{
		ID:          1,
		Title:       "Buy milk",
		Description: strPtr("2 liters"),
		Priority:    "medium",
		DueDate:     nil,
		Completed:   false,
		CreatedAt:   created,
		OwnerID:     7,
	}
}

func TestPatchApplyEmptyLeavesFieldsUnchanged(t *testing.T) {
	task := baseTask()
	original := task

	TaskPatch{}.apply(&task)

	if task.Title != original.Title {
		t.Errorf("title changed: %v", task.Title)
	}
	if *task.Description != *original.Description {
		t.Errorf("description changed: %v", *task.Description)
	}
	if task.Priority != original.Priority {
		t.Errorf("priority changed: %v", task.Priority)
	}
	if task.DueDate != nil {
		t.Errorf("due date changed: %v", task.DueDate)
	}
	if task.Completed != original.Completed {
		t.Errorf("completed changed: %v", task.Completed)
	}
	if task.OwnerID != original.OwnerID {
		t.Errorf("owner changed: %v", task.OwnerID)
	}
}

func TestPatchApplySetsOnlyProvidedFields(t *testing.T) {
	task := baseTask()

	TaskPatch{Completed: boolPtr(true)}.apply(&task)

	if !task.Completed {
		t.Error("completed should be true")
	}
	if task.Title != "Buy milk" {
		t.Errorf("title should be untouched, got %v", task.Title)
	}
	if task.Description == nil || *task.Description != "2 liters" {
		t.Errorf("description should be untouched, got %v", task.Description)
	}
	if task.Priority != "medium" {
		t.Errorf("priority should be untouched, got %v", task.Priority)
	}
}

func TestPatchApplyAllFields(t *testing.T) {
	task := baseTask()
	due := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

	TaskPatch{
		Title:       strPtr("Buy oat milk"),
		Description: strPtr("barista edition"),
		Priority:    strPtr("high"),
		DueDate:     timePtr(due),
		Completed:   boolPtr(true),
	}.apply(&task)

	if task.Title != "Buy oat milk" {
		t.Errorf("title = %v", task.Title)
	}
	if *task.Description != "barista edition" {
		t.Errorf("description = %v", *task.Description)
	}
	if task.Priority != "high" {
		t.Errorf("priority = %v", task.Priority)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Errorf("due date = %v", task.DueDate)
	}
	if !task.Completed {
		t.Error("completed should be true")
	}
	// The patch has no owner field at all; ownership is fixed at creation.
	if task.OwnerID != 7 {
		t.Errorf("owner = %v", task.OwnerID)
	}
}
