package domain

import "time"

// User representa a entidade de usuário do painel administrativo.
// O hash da senha nunca é serializado nas respostas da API (tag `json:"-"`).
type User struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Name            string    `json:"name"`
	Role            Role      `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// UserRegistration representa o payload de entrada do cadastro público (signup).
// O papel nunca vem do cliente: todo signup nasce como USER.
type UserRegistration struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password"`
}

// UserCreate representa o payload da criação de usuário pelo admin
// (POST /api/users), onde o papel pode ser informado.
type UserCreate struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password"`
	Role     Role   `json:"role" validate:"required,role"`
}

// UserUpdate representa uma atualização parcial de usuário (PATCH).
// Campos nil são ignorados; apenas os presentes no payload são aplicados.
type UserUpdate struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Password        *string `json:"password" validate:"omitempty,min=8,password"`
	Role            *Role   `json:"role" validate:"omitempty,role"`
	IsEmailVerified *bool   `json:"isEmailVerified"`
}

// UserFilter define o conjunto fechado de campos filtráveis na listagem de usuários.
type UserFilter struct {
	Name string
	Role Role
}
