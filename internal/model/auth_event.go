package model

import "time"

const (
	AuthEventSignup = "signup"
	AuthEventLogin  = "login"
)

// AuthEvent is an audit record of a successful signup or login. Events are
// published to RabbitMQ at request time and persisted asynchronously by the
// auth event worker.
type AuthEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Kind      string    `gorm:"size:16;not null;index" json:"kind"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Username  string    `gorm:"size:64;not null" json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
