package model

const ContentMaxLen = 140

type Micropost struct {
	Base
	Content string `gorm:"size:140" json:"content"`
	UserID  uint   `gorm:"index" json:"user_id"`
	User    *User  `json:"user,omitempty"`
}
