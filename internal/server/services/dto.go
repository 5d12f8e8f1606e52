package services

import (
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/timex"
)

// UserRequest is the body of a registration request.
type UserRequest struct {
	Email       string     `json:"email" validate:"omitempty,email"`
	FirstName   string     `json:"firstName" validate:"notblank"`
	LastName    string     `json:"lastName" validate:"notblank"`
	BirthDate   timex.Date `json:"birthDate" validate:"required"`
	Address     string     `json:"address,omitempty"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
}

// ReplaceUserRequest carries every replaceable field. Address and phone
// number are not part of it, so a replace leaves them empty.
type ReplaceUserRequest struct {
	Email     string     `json:"email" validate:"omitempty,email"`
	FirstName string     `json:"firstName" validate:"notblank"`
	LastName  string     `json:"lastName" validate:"notblank"`
	BirthDate timex.Date `json:"birthDate" validate:"required"`
}

// PatchUserRequest changes names only. A nil field keeps the stored value.
type PatchUserRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

type UserResponse struct {
	ID          uint64     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	BirthDate   timex.Date `json:"birthDate"`
	Address     string     `json:"address"`
	PhoneNumber string     `json:"phoneNumber"`
}

func (r *UserRequest) toModel() *models.User {
	return &models.User{
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		BirthDate:   r.BirthDate,
		Address:     r.Address,
		PhoneNumber: r.PhoneNumber,
	}
}

func (r *ReplaceUserRequest) toModel(id uint64) *models.User {
	return &models.User{
		ID:        id,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		BirthDate: r.BirthDate,
	}
}

func toResponse(u *models.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		BirthDate:   u.BirthDate,
		Address:     u.Address,
		PhoneNumber: u.PhoneNumber,
	}
}

func toResponses(list []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toResponse(u))
	}
	return out
}
