package model

import "time"

// Session binds a signed-in device (by IP) to a user. Token is a
// random identifier carried in the access token's jti claim.
type Session struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey"`
	IP        string    `json:"ip" gorm:"primaryKey"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
