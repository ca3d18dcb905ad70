package handler

import (
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// --- Request → Service input ---

func toSignupInput(req signupRequest) ports.SignupInput {
	return ports.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	}
}

func toCreateTaskInput(req createTaskRequest) ports.CreateTaskInput {
	return ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
	}
}

func toTaskUpdate(req updateTaskRequest) ports.TaskUpdate {
	return ports.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
	}
}

func toListTasksInput(q listTasksQuery) ports.ListTasksInput {
	in := ports.ListTasksInput{
		Search: q.Search,
		Range:  domain.DateRange(q.Range),
		Sort:   q.Sort,
		Page:   q.Page,
		Limit:  q.Limit,
	}
	switch q.Status {
	case "true", "completed":
		done := true
		in.Status = &done
	case "false", "pending":
		done := false
		in.Status = &done
	}
	return in
}

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Roles:     u.RoleLabels(),
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      t.Status,
		CreatedBy:   t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toUserPage(p *ports.Page[*domain.User]) userPageResponse {
	users := make([]userResponse, 0, len(p.Items))
	for _, u := range p.Items {
		users = append(users, toUserResponse(u))
	}
	return userPageResponse{Users: users, Total: p.Total, Page: p.Page, Limit: p.Limit, TotalPages: p.TotalPages}
}

func toTaskPage(p *ports.Page[*domain.Task]) taskPageResponse {
	tasks := make([]taskResponse, 0, len(p.Items))
	for _, t := range p.Items {
		tasks = append(tasks, toTaskResponse(t))
	}
	return taskPageResponse{Tasks: tasks, Total: p.Total, Page: p.Page, Limit: p.Limit, TotalPages: p.TotalPages}
}
