package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oszuidwest/zwfm-mixdown/internal/models"
)

// MixRepository stores export jobs and the files they produced.
type MixRepository interface {
	Create(ctx context.Context, mix *models.Mix) error
	GetByID(ctx context.Context, id int64) (*models.Mix, error)
	List(ctx context.Context, query *ListQuery) (*ListResult[models.Mix], error)

	// FindReadyBySignature returns the newest stored rendering of a signature.
	FindReadyBySignature(ctx context.Context, signature string) (*models.Mix, error)

	// Transition moves a job from one status to the next and applies fields in the same update.
	// It fails with ErrInvalidTransition when the job is not in status from.
	Transition(ctx context.Context, id int64, from, to models.MixStatus, fields map[string]any) error

	// GetExpired returns stored mixes created before cutoff whose file is not yet purged.
	GetExpired(ctx context.Context, cutoff time.Time) ([]models.Mix, error)
	MarkFilePurged(ctx context.Context, id int64) error
	// GetAllFilenames returns the file names of all mixes with an unpurged file.
	GetAllFilenames(ctx context.Context) ([]string, error)
}

type mixRepository struct {
	*GormRepository[models.Mix]
}

// NewMixRepository creates a new mix repository.
func NewMixRepository(db *gorm.DB) MixRepository {
	return &mixRepository{GormRepository: NewGormRepository[models.Mix](db)}
}

var mixFieldMapping = FieldMapping{
	"id":               "id",
	"status":           "status",
	"signature":        "signature",
	"duration_seconds": "duration_seconds",
	"created_at":       "created_at",
}

func (r *mixRepository) List(ctx context.Context, query *ListQuery) (*ListResult[models.Mix], error) {
	db := r.conn(ctx).Model(&models.Mix{})
	return ApplyListQuery[models.Mix](db, query, mixFieldMapping, []string{"filename"}, "created_at DESC")
}

func (r *mixRepository) FindReadyBySignature(ctx context.Context, signature string) (*models.Mix, error) {
	var mix models.Mix
	err := r.conn(ctx).
		Where("signature = ? AND status = ? AND file_purged_at IS NULL", signature, models.MixStatusReady).
		Order("created_at DESC").
		First(&mix).Error
	if err != nil {
		return nil, ParseDBError(err)
	}
	return &mix, nil
}

func (r *mixRepository) Transition(ctx context.Context, id int64, from, to models.MixStatus, fields map[string]any) error {
	if !from.CanTransition(to) {
		return ErrInvalidTransition
	}

	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	result := r.conn(ctx).Model(&models.Mix{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return ParseDBError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrInvalidTransition
}

func (r *mixRepository) GetExpired(ctx context.Context, cutoff time.Time) ([]models.Mix, error) {
	var mixes []models.Mix
	err := r.conn(ctx).
		Where("created_at < ? AND file_purged_at IS NULL AND filename <> ''", cutoff).
		Find(&mixes).Error
	return mixes, ParseDBError(err)
}

func (r *mixRepository) MarkFilePurged(ctx context.Context, id int64) error {
	return r.UpdateFields(ctx, id, map[string]any{"file_purged_at": time.Now()})
}

func (r *mixRepository) GetAllFilenames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.conn(ctx).Model(&models.Mix{}).
		Where("file_purged_at IS NULL AND filename <> ''").
		Pluck("filename", &names).Error
	return names, ParseDBError(err)
}
