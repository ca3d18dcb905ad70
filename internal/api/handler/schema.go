package handler

import (
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type signupRequest struct {
	Name     string   `json:"name"     validate:"required,max=100"`
	Email    string   `json:"email"    validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6,max=72"`
	Roles    []string `json:"roles"    validate:"omitempty,dive,oneof=admin editor viewer user"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type signupResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type loginResponse struct {
	Message     string           `json:"message"`
	AccessToken string           `json:"accessToken"`
	ExpiresAt   time.Time        `json:"expiresAt"`
	User        userResponse     `json:"user"`
	TaskStats   domain.TaskStats `json:"taskStats"`
}

type tokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// --- Users ---

type updateOwnProfileRequest struct {
	Name            *string `json:"name"            validate:"omitempty,min=1,max=100"`
	Avatar          *string `json:"avatar"          validate:"omitempty,max=512"`
	CurrentPassword string  `json:"currentPassword" validate:"required_with=NewPassword"`
	NewPassword     string  `json:"newPassword"     validate:"omitempty,min=6,max=72"`
}

type updateProfileRequest struct {
	Name   *string `json:"name"   validate:"omitempty,min=1,max=100"`
	Avatar *string `json:"avatar" validate:"omitempty,max=512"`
}

type listUsersQuery struct {
	Page  int `query:"page"  validate:"omitempty,min=1,max=1000000"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

type userPageResponse struct {
	Users      []userResponse `json:"users"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

// --- Tasks ---

type createTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	DueDate     *time.Time `json:"dueDate"`
	Status      bool       `json:"status"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	DueDate     *time.Time `json:"dueDate"`
	Status      *bool      `json:"status"`
}

type listTasksQuery struct {
	Search string `query:"search"`
	Status string `query:"status" validate:"omitempty,oneof=true false completed pending"`
	Range  string `query:"range"  validate:"omitempty,oneof=weekly monthly"`
	Sort   string `query:"sort"`
	Page   int    `query:"page"   validate:"omitempty,min=1,max=1000000"`
	Limit  int    `query:"limit"  validate:"omitempty,min=1,max=100"`
}

type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Status      bool       `json:"status"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type taskPageResponse struct {
	Tasks      []taskResponse `json:"tasks"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

type deleteTaskResponse struct {
	Message string       `json:"message"`
	Task    taskResponse `json:"task"`
}
