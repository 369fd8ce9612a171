package repositories

import (
	"context"

	"github.com/yoockh/navai/internal/models"
)

// InterviewRepository is the persistent record store for interviews.
// Lookups of unknown ids return utils.ErrNotFound.
type InterviewRepository interface {
	Create(ctx context.Context, it *models.Interview) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	// AppendTurns adds turns to the end of the transcript, in order.
	AppendTurns(ctx context.Context, id string, turns ...models.Turn) error
	// ListByOwner returns the owner's interviews, newest first. limit <= 0 means all.
	ListByOwner(ctx context.Context, ownerID string, limit int64) ([]models.Interview, error)
}
