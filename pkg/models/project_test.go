package models

import "testing"

func TestProjectStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from ProjectStatus
		to   ProjectStatus
		want bool
	}{
		{"open to in_progress", ProjectStatusOpen, ProjectStatusInProgress, true},
		{"open to cancelled", ProjectStatusOpen, ProjectStatusCancelled, true},
		{"open to completed", ProjectStatusOpen, ProjectStatusCompleted, false},
		{"in_progress to completed", ProjectStatusInProgress, ProjectStatusCompleted, true},
		{"in_progress to cancelled", ProjectStatusInProgress, ProjectStatusCancelled, true},
		{"in_progress to open", ProjectStatusInProgress, ProjectStatusOpen, false},
		{"completed is terminal", ProjectStatusCompleted, ProjectStatusCancelled, false},
		{"cancelled is terminal", ProjectStatusCancelled, ProjectStatusOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestProjectStatus_IsTerminal(t *testing.T) {
	if ProjectStatusOpen.IsTerminal() {
		t.Error("open should not be terminal")
	}
	if ProjectStatusInProgress.IsTerminal() {
		t.Error("in_progress should not be terminal")
	}
	if !ProjectStatusCompleted.IsTerminal() {
		t.Error("completed should be terminal")
	}
	if !ProjectStatusCancelled.IsTerminal() {
		t.Error("cancelled should be terminal")
	}
}

func TestIsValidProjectStatus(t *testing.T) {
	for _, s := range []ProjectStatus{ProjectStatusOpen, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusCancelled} {
		if !IsValidProjectStatus(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if IsValidProjectStatus("archived") {
		t.Error("expected archived to be invalid")
	}
}
