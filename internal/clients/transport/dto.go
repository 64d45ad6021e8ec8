package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateClientRequest struct {
	Name           string `json:"name" validate:"required,min=1,max=200"`
	ContactName    string `json:"contactName" validate:"max=100"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"max=30"`
	BusinessNumber string `json:"businessNumber" validate:"max=20"`
}

type UpdateClientRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=200"`
	ContactName    *string `json:"contactName" validate:"omitempty,max=100"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=30"`
	BusinessNumber *string `json:"businessNumber" validate:"omitempty,max=20"`
}

type ListClientsRequest struct {
	Search    string `form:"search" validate:"max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=name createdAt"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type ClientResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ContactName    *string   `json:"contactName,omitempty"`
	Email          *string   `json:"email,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	BusinessNumber *string   `json:"businessNumber,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type ClientListResponse struct {
	Items      []ClientResponse `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}
