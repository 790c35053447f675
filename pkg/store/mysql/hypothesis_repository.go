package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"charterlens/pkg/store/mysql/model"
)

// HypothesisRepository handles hypothesis persistence in MySQL
type HypothesisRepository struct {
	ds *Datastore
}

// NewHypothesisRepository creates a new hypothesis repository
func NewHypothesisRepository(ds *Datastore) *HypothesisRepository {
	return &HypothesisRepository{ds: ds}
}

// CreateBatch inserts hypothesis rows in one statement
func (r *HypothesisRepository) CreateBatch(ctx context.Context, rows []*model.Hypothesis) error {
	if len(rows) == 0 {
		return nil
	}
	return r.ds.DB(ctx).Create(rows).Error
}

// Get retrieves a hypothesis by its public id, nil if not found
func (r *HypothesisRepository) Get(ctx context.Context, hypothesisID string) (*model.Hypothesis, error) {
	var row model.Hypothesis
	err := r.ds.DB(ctx).Where("hypothesis_id = ?", hypothesisID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get hypothesis: %w", err)
	}
	return &row, nil
}

// List returns hypotheses newest first with optional equality filters
func (r *HypothesisRepository) List(ctx context.Context, reportID, status string, limit int) ([]*model.Hypothesis, error) {
	query := r.ds.DB(ctx).Model(&model.Hypothesis{})
	if reportID != "" {
		query = query.Where("report_id = ?", reportID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []*model.Hypothesis
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list hypotheses: %w", err)
	}
	return rows, nil
}

// ListByReport returns all hypotheses belonging to one report
func (r *HypothesisRepository) ListByReport(ctx context.Context, reportID string) ([]*model.Hypothesis, error) {
	var rows []*model.Hypothesis
	err := r.ds.DB(ctx).
		Where("report_id = ?", reportID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list hypotheses by report: %w", err)
	}
	return rows, nil
}

// UpdateFields updates specific fields of a hypothesis by its public id
func (r *HypothesisRepository) UpdateFields(ctx context.Context, hypothesisID string, updates map[string]interface{}) error {
	result := r.ds.DB(ctx).Model(&model.Hypothesis{}).
		Where("hypothesis_id = ?", hypothesisID).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update hypothesis: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("hypothesis not found: hypothesis_id=%s", hypothesisID)
	}
	return nil
}
