package model

import "time"

// Relationship is a directed follow edge. The composite primary key
// makes (follower, followed) unique, so a concurrent double follow
// cannot create two edges.
type Relationship struct {
	FollowerID uint      `gorm:"primaryKey" json:"follower_id"`
	FollowedID uint      `gorm:"primaryKey" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
	Follower   *User     `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followed   *User     `gorm:"foreignKey:FollowedID" json:"followed,omitempty"`
}
