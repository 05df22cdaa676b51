package domain

import "time"

// NewsletterSubscriber representa uma inscrição na newsletter.
// Invariante: nunca existem duas inscrições ativas com o mesmo e-mail —
// garantido pela constraint UNIQUE no banco, não apenas pela pré-checagem.
type NewsletterSubscriber struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewsletterSubscribe representa o payload do endpoint público de inscrição.
type NewsletterSubscribe struct {
	Email string `json:"email" validate:"required,email"`
}

// SubscriberFilter define o conjunto fechado de campos filtráveis na listagem.
type SubscriberFilter struct {
	Email string
}
