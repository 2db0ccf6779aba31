package service

import "context"

// Authoring event subjects, relative to the publisher's subject prefix.
const (
	EventAssignmentSaved  = "assignment.saved"
	EventSubmissionStaged = "submission.staged"
)

// EventPublisher broadcasts domain events to other services.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

// AssignmentSavedEvent is published after an authoring form is saved.
type AssignmentSavedEvent struct {
	AssignmentID   uint   `json:"assignment_id"`
	ClassID        uint   `json:"class_id"`
	AssignmentType string `json:"assignment_type"`
	Mode           string `json:"mode"`
	ActorID        uint   `json:"actor_id"`
}

// SubmissionStagedEvent is published when a development submission is provisioned.
type SubmissionStagedEvent struct {
	AssignmentID uint `json:"assignment_id"`
	SubmissionID uint `json:"submission_id"`
	StudentID    uint `json:"student_id"`
}
