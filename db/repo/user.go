package repo

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/lamwh/microblog-backend/db"
	"github.com/lamwh/microblog-backend/db/model"
	"gorm.io/gorm"
)

// CreateUserInput carries the signup form fields.
type CreateUserInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

func validEmail(addr string) bool {
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return false
	}
	// reject display-name forms like "Foo <a@b.com>"
	return parsed.Address == addr
}

// CreateUser validates the input and inserts a new user. Emails are
// normalized to lower case so uniqueness is case-insensitive.
func CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	errs := ValidationErrors{}
	if strings.TrimSpace(in.Name) == "" {
		errs.add("name", "can't be blank")
	} else if utf8.RuneCountInString(in.Name) > model.NameMaxLen {
		errs.add("name", "is too long (maximum is 50 characters)")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		errs.add("email", "can't be blank")
	} else if !validEmail(email) {
		errs.add("email", "is invalid")
	}

	switch n := utf8.RuneCountInString(in.Password); {
	case n == 0:
		errs.add("password", "can't be blank")
	case n < model.PasswordMinLen:
		errs.add("password", "is too short (minimum is 6 characters)")
	case n > model.PasswordMaxLen:
		errs.add("password", "is too long (maximum is 40 characters)")
	}
	if in.Password != in.PasswordConfirmation {
		errs.add("password_confirmation", "doesn't match password")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if existing, err := UserByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		errs.add("email", "has already been taken")
		return nil, errs
	}

	u := &model.User{Name: in.Name, Email: email}
	if err := u.SetPassword(in.Password); err != nil {
		return nil, err
	}
	if err := db.GetDB(ctx).Create(u).Error; err != nil {
		// the unique index closes the check-then-insert race
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs.add("email", "has already been taken")
			return nil, errs
		}
		return nil, err
	}
	return u, nil
}

// AuthenticateUser returns the user matching email and password, or
// (nil, nil) when either is wrong. Unknown email and bad password are
// indistinguishable to the caller.
func AuthenticateUser(ctx context.Context, email, password string) (*model.User, error) {
	u, err := UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || u == nil {
		return nil, err
	}
	if !u.HasPassword(password) {
		return nil, nil
	}
	return u, nil
}

// UserByID returns the user or nil when absent.
func UserByID(ctx context.Context, id uint) (*model.User, error) {
	u := &model.User{}
	if err := db.GetDB(ctx).First(u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// UserByEmail returns the user or nil when absent.
func UserByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	if err := db.GetDB(ctx).First(u, "email = ?", strings.ToLower(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// ListUsers returns a page of users ordered by id.
func ListUsers(ctx context.Context, limit, offset int) ([]model.User, error) {
	users := make([]model.User, 0)
	err := db.GetDB(ctx).Order("id").Limit(limit).Offset(offset).Find(&users).Error
	return users, err
}

// ToggleAdmin flips the admin flag. No other side effects.
func ToggleAdmin(ctx context.Context, id uint) (*model.User, error) {
	u, err := UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	u.Admin = !u.Admin
	if err := db.GetDB(ctx).Model(u).Update("admin", u.Admin).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser destroys the user and everything referencing it in one
// transaction: microposts, follow edges in both directions, sessions.
func DeleteUser(ctx context.Context, id uint) error {
	return db.GetDB(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Micropost{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).Delete(&model.Relationship{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", id).Delete(&model.Session{}).Error
	})
}
