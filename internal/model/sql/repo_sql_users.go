package sql

import (
	"context"
	"fmt"
	"insurance/internal/entity/common"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"strings"
)

// CreateUser persists a new user record.
func (r *GormRepository) CreateUser(ctx context.Context, user *db.User) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateUser updates an existing user entry.
func (r *GormRepository) UpdateUser(ctx context.Context, id uint, updates db.UserUpdates) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid user id")
	}
	if updates.IsEmpty() {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Updates(updates.ToMap())
	return r.checkUpdated(ctx, result, &db.User{}, id)
}

// GetUserByID loads a user by ID.
func (r *GormRepository) GetUserByID(ctx context.Context, id uint) (*db.User, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername loads a user by its login name.
func (r *GormRepository) GetUserByUsername(ctx context.Context, username string) (*db.User, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return nil, fmt.Errorf("username is empty")
	}

	var user db.User
	if err := r.db.WithContext(ctx).Where("username = ?", trimmed).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns paginated users.
func (r *GormRepository) ListUsers(ctx context.Context, params *dto.UserQuery) ([]db.User, *common.Pagination, error) {
	if r == nil || r.db == nil {
		return nil, nil, errNotInitialised
	}

	query := r.db.WithContext(ctx).Model(&db.User{})
	var base common.BaseParams
	if params != nil {
		base = params.BaseParams
		if trimmed := strings.TrimSpace(params.Role); trimmed != "" {
			query = query.Where("role = ?", trimmed)
		}
		if keyword := strings.TrimSpace(params.Keyword); keyword != "" {
			kw := "%" + strings.ToLower(keyword) + "%"
			query = query.Where("(LOWER(name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?)", kw, kw, kw, kw)
		}
		if params.Status != nil {
			query = query.Where("status = ?", *params.Status)
		}
	}

	var users []db.User
	meta, err := r.paginate(query, base, "id DESC", &users)
	if err != nil {
		return nil, nil, err
	}
	return users, meta, nil
}

// ListUsersByIDs loads users by ids, in no particular order.
func (r *GormRepository) ListUsersByIDs(ctx context.Context, ids []uint) ([]db.User, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if len(ids) == 0 {
		return []db.User{}, nil
	}
	var users []db.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes a user by ID.
func (r *GormRepository) DeleteUser(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid user id")
	}
	return notFoundIfNone(r.db.WithContext(ctx).Delete(&db.User{}, id))
}

// DeleteUsers removes users of the given role by ids and returns how many were deleted.
func (r *GormRepository) DeleteUsers(ctx context.Context, role string, ids []uint) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errNotInitialised
	}
	if len(ids) == 0 {
		return 0, nil
	}
	query := r.db.WithContext(ctx).Where("id IN ?", ids)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	result := query.Delete(&db.User{})
	return result.RowsAffected, result.Error
}

// CountUsers returns the number of users, optionally restricted to one role.
func (r *GormRepository) CountUsers(ctx context.Context, role string) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errNotInitialised
	}
	query := r.db.WithContext(ctx).Model(&db.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
