package models

// Виды писем, которые отправляет sender.
const (
	EmailActivation      = "activation"
	EmailConfirmation    = "confirmation"
	EmailPasswordReset   = "password_reset"
	EmailPasswordChanged = "password_changed"
	EmailNewsletter      = "newsletter"
)

// EmailTask задача на отправку письма, публикуется в RabbitMQ.
type EmailTask struct {
	Kind    string            `json:"kind"`
	To      string            `json:"to"`
	Context map[string]string `json:"context"`
}
