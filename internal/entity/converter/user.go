package converter

import (
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
)

// UserToSummary converts a db.User to dto.UserSummary.
func UserToSummary(u *db.User) dto.UserSummary {
	if u == nil {
		return dto.UserSummary{}
	}
	return dto.UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		Role:       u.Role,
		Email:      u.Email,
		Phone:      u.Phone,
		Department: u.Department,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UsersToSummaries converts a slice of db.User to dto.UserSummary.
func UsersToSummaries(users []db.User) []dto.UserSummary {
	summaries := make([]dto.UserSummary, len(users))
	for i := range users {
		summaries[i] = UserToSummary(&users[i])
	}
	return summaries
}

// StaffUpdatesFromRequest maps a staff update payload onto repository update fields.
// The password must already be hashed by the caller.
func StaffUpdatesFromRequest(req dto.StaffUpdateRequest, hashedPassword *string) db.UserUpdates {
	return db.UserUpdates{
		Name:       req.Name,
		Password:   hashedPassword,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: req.Department,
		Status:     req.Status,
	}
}
