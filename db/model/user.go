package model

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	NameMaxLen     = 50
	PasswordMinLen = 6
	PasswordMaxLen = 40
)

type User struct {
	Base
	Name         string      `gorm:"size:50" json:"name"`
	Email        string      `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string      `json:"-"`
	Admin        bool        `gorm:"default:false" json:"admin"`
	Microposts   []Micropost `json:"-"`
	Sessions     []Session   `json:"-"`
}

// SetPassword derives and stores the bcrypt hash, never the plaintext.
func (u *User) SetPassword(password string) error {
	b, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		return err
	}
	u.PasswordHash = string(b)
	return nil
}

// HasPassword reports whether candidate matches the stored hash.
func (u *User) HasPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(candidate)) == nil
}
