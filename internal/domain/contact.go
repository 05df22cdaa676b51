package domain

import "time"

// ContactSubmission representa uma mensagem enviada pelo formulário de contato.
// Imutável após a criação, exceto pela exclusão.
type ContactSubmission struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactSubmissionCreate representa o payload do formulário público de contato.
// Limites espelham a validação do frontend.
type ContactSubmissionCreate struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=255"`
	Message string `json:"message" validate:"required,max=2000"`
}

// ContactFilter define o conjunto fechado de campos filtráveis na listagem.
type ContactFilter struct {
	Email string
}
