package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lamwh/microblog-backend/db/model"
	"github.com/lamwh/microblog-backend/db/repo"
)

// OutUser is the public shape of a user. The password hash never
// leaves the model layer.
type OutUser struct {
	model.Base
	Name  string `json:"name"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

func NewOutUser(u *model.User) *OutUser {
	return &OutUser{Base: u.Base, Name: u.Name, Email: u.Email, Admin: u.Admin}
}

func NewOutUsers(users []model.User) []*OutUser {
	out := make([]*OutUser, len(users))
	for i := range users {
		out[i] = NewOutUser(&users[i])
	}
	return out
}

type OutMicropost struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	User      *OutUser  `json:"user,omitempty"`
}

func NewOutMicropost(m *model.Micropost) *OutMicropost {
	out := &OutMicropost{ID: m.ID, Content: m.Content, CreatedAt: m.CreatedAt}
	if m.User != nil {
		out.User = NewOutUser(m.User)
	}
	return out
}

func NewOutMicroposts(posts []model.Micropost) []*OutMicropost {
	out := make([]*OutMicropost, len(posts))
	for i := range posts {
		out[i] = NewOutMicropost(&posts[i])
	}
	return out
}

// WriteValidationErrors renders a 422 with per-field messages when err
// is a repo.ValidationErrors and reports whether it did.
func WriteValidationErrors(w http.ResponseWriter, err error) bool {
	var verrs repo.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(map[string]any{"errors": verrs})
	return true
}
