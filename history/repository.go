package history

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lablens/apierrors"
	"lablens/models"
)

const DefaultListLimit = 100

var ErrNotFound = apierrors.NotFound("Scan not found")

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.ScanRecord{}, &models.Detection{}); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}
	return nil
}

// Repository stores the audit trail of scans.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record saves rec together with its detections and sets rec.ID.
func (r *Repository) Record(ctx context.Context, rec *models.ScanRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return errors.Wrap(err, "failed to save scan record")
	}
	return nil
}

// List returns the newest scans of a session first.
func (r *Repository) List(ctx context.Context, sessionID string, limit int) ([]models.ScanRecord, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	scans := []models.ScanRecord{}
	err := r.db.WithContext(ctx).
		Preload("Detections", orderByPosition).
		Where("session_id = ?", sessionID).
		Order("id desc").
		Limit(limit).
		Find(&scans).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch scan results")
	}
	return scans, nil
}

// Get returns one scan of a session. Scans of other sessions are reported as not found.
func (r *Repository) Get(ctx context.Context, sessionID string, id uint) (*models.ScanRecord, error) {
	var scan models.ScanRecord
	err := r.db.WithContext(ctx).
		Preload("Detections", orderByPosition).
		Where("session_id = ?", sessionID).
		First(&scan, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch scan %d", id)
	}
	return &scan, nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
