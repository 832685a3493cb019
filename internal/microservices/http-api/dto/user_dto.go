package dto

import "yamdb/internal/microservices/http-api/models"

// CreateUserRequest for admin-created accounts
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,max=150,username"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Role      string `json:"role" binding:"omitempty,oneof=user moderator admin"`
	Bio       string `json:"bio" binding:"max=500"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

// UpdateUserRequest is a partial update; nil fields are left untouched
type UpdateUserRequest struct {
	Username  *string `json:"username" binding:"omitempty,max=150,username"`
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	Role      *string `json:"role" binding:"omitempty,oneof=user moderator admin"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
}

// UpdateMeRequest has no role field: a role sent to /users/me is dropped while decoding
type UpdateMeRequest struct {
	Username  *string `json:"username" binding:"omitempty,max=150,username"`
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
}

// AsUserUpdate widens the self-service payload to the admin shape with Role unset
func (r UpdateMeRequest) AsUserUpdate() UpdateUserRequest {
	return UpdateUserRequest{
		Username:  r.Username,
		Email:     r.Email,
		Bio:       r.Bio,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

type UserResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

func FromModelToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}
