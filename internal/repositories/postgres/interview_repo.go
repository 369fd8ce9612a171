package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/navai/internal/models"
	"github.com/yoockh/navai/internal/repositories"
	"github.com/yoockh/navai/internal/utils"
	"gorm.io/gorm"
)

type interviewRow struct {
	ID            string    `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID       string    `gorm:"column:owner_id;type:text;index:idx_interviews_owner_created,priority:1"`
	ResumeText    string    `gorm:"column:resume_text;type:text"`
	ResumeObject  string    `gorm:"column:resume_object;type:text"`
	InterviewType string    `gorm:"column:interview_type;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamptz;index:idx_interviews_owner_created,priority:2,sort:desc"`
	Turns         []turnRow `gorm:"foreignKey:InterviewID;constraint:OnDelete:CASCADE"`
}

func (interviewRow) TableName() string { return "interviews" }

// turnRow.Seq numbers a transcript from 0. AppendTurns continues from
// MAX(seq)+1 read inside its transaction, so appends always land after the
// stored turns; the unique index only rejects two transactions that read the
// same MAX(seq) at once. Ordering between writers comes from the interview lock.
type turnRow struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	InterviewID string    `gorm:"column:interview_id;type:uuid;uniqueIndex:uniq_interview_seq,priority:1"`
	Seq         int       `gorm:"column:seq;uniqueIndex:uniq_interview_seq,priority:2"`
	Role        string    `gorm:"column:role;type:text"`
	Content     string    `gorm:"column:content;type:text"`
	Timestamp   time.Time `gorm:"column:timestamp;type:timestamptz"`
}

func (turnRow) TableName() string { return "interview_turns" }

type interviewRepo struct {
	db *gorm.DB
}

func NewInterviewRepo(db *gorm.DB) repositories.InterviewRepository {
	return &interviewRepo{db: db}
}

// AutoMigrate creates or updates the interview tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&interviewRow{}, &turnRow{})
}

func (r *interviewRepo) Create(ctx context.Context, it *models.Interview) error {
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now().UTC()
	}
	row := toRow(it)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *interviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	// ids are uuid columns; anything else cannot exist
	if _, err := uuid.Parse(id); err != nil {
		return nil, utils.ErrNotFound
	}
	var row interviewRow
	err := r.db.WithContext(ctx).
		Preload("Turns", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Where("id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	it := fromRow(row)
	return &it, nil
}

func (r *interviewRepo) AppendTurns(ctx context.Context, id string, turns ...models.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return utils.ErrNotFound
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&interviewRow{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return utils.ErrNotFound
		}

		var next int
		if err := tx.Model(&turnRow{}).
			Where("interview_id = ?", id).
			Select("COALESCE(MAX(seq), -1) + 1").
			Scan(&next).Error; err != nil {
			return err
		}

		rows := turnRows(id, next, turns)
		return tx.Create(&rows).Error
	})
}

func (r *interviewRepo) ListByOwner(ctx context.Context, ownerID string, limit int64) ([]models.Interview, error) {
	q := r.db.WithContext(ctx).
		Preload("Turns", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(int(limit))
	}

	var rows []interviewRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]models.Interview, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func toRow(it *models.Interview) interviewRow {
	row := interviewRow{
		ID:            it.ID,
		OwnerID:       it.OwnerID,
		ResumeText:    it.ResumeText,
		ResumeObject:  it.ResumeObject,
		InterviewType: string(it.InterviewType),
		CreatedAt:     it.CreatedAt,
	}
	if len(it.Turns) > 0 {
		row.Turns = turnRows(it.ID, 0, it.Turns)
	}
	return row
}

// turnRows numbers turns from first.
func turnRows(interviewID string, first int, turns []models.Turn) []turnRow {
	rows := make([]turnRow, 0, len(turns))
	for i, t := range turns {
		rows = append(rows, turnRow{
			InterviewID: interviewID,
			Seq:         first + i,
			Role:        string(t.Role),
			Content:     t.Content,
			Timestamp:   t.Timestamp,
		})
	}
	return rows
}

func fromRow(row interviewRow) models.Interview {
	it := models.Interview{
		ID:            row.ID,
		OwnerID:       row.OwnerID,
		ResumeText:    row.ResumeText,
		ResumeObject:  row.ResumeObject,
		InterviewType: models.InterviewType(row.InterviewType),
		CreatedAt:     row.CreatedAt,
		Turns:         make([]models.Turn, 0, len(row.Turns)),
	}
	for _, t := range row.Turns {
		it.Turns = append(it.Turns, models.Turn{
			Role:      models.Role(t.Role),
			Content:   t.Content,
			Timestamp: t.Timestamp,
		})
	}
	return it
}
