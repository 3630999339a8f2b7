package sql

import (
	"context"
	"fmt"
	"insurance/internal/entity/db"
)

// CreateOperationLog appends an operation log entry.
func (r *GormRepository) CreateOperationLog(ctx context.Context, log *db.OperationLog) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if log == nil {
		return fmt.Errorf("operation log is nil")
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// ListOperationLogs returns the log of one record, newest first.
func (r *GormRepository) ListOperationLogs(ctx context.Context, module string, relatedID uint) ([]db.OperationLog, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var logs []db.OperationLog
	err := r.db.WithContext(ctx).
		Where("module = ? AND related_id = ?", module, relatedID).
		Order("operation_time DESC, id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
