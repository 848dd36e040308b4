package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lamwh/microblog-backend/api"
	"github.com/lamwh/microblog-backend/db"
	"github.com/lamwh/microblog-backend/db/model"
	"github.com/lamwh/microblog-backend/db/repo"
	"github.com/lamwh/microblog-backend/middleware"
	"github.com/lamwh/microblog-backend/monitoring"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Handlers struct {
	logger *logrus.Logger
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name                 string `json:"name"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	u, err := repo.CreateUser(r.Context(), repo.CreateUserInput{
		Name:                 body.Name,
		Email:                body.Email,
		Password:             body.Password,
		PasswordConfirmation: body.PasswordConfirmation,
	})
	if err != nil {
		if api.WriteValidationErrors(w, err) {
			return
		}
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	monitoring.RegisterSuccess.Inc()
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(api.NewOutUser(u))
}

func (h *Handlers) signin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if len(body.Email) < 1 || len(body.Password) < 1 {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid input"))
		return
	}

	c := r.Context()
	u, err := repo.AuthenticateUser(c, body.Email, body.Password)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if u == nil {
		// unknown email and wrong password are indistinguishable
		monitoring.SigninFailure.WithLabelValues("bad_credentials").Inc()
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid email or password"))
		return
	}

	ip, _ := c.Value("deviceIP").(string)
	s, err := findOrCreateSession(c, u.ID, ip)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	accessToken, err := genAccessToken(ip, strconv.FormatUint(uint64(u.ID), 10), s.Token)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	monitoring.SigninSuccess.Inc()
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		Expires:  time.Now().Add(tokenTTL),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	json.NewEncoder(w).Encode(struct {
		AccessToken string       `json:"access_token"`
		User        *api.OutUser `json:"user"`
	}{
		AccessToken: accessToken,
		User:        api.NewOutUser(u),
	})
}

func (h *Handlers) signout(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value("session").(*model.Session)
	err := db.GetDB(r.Context()).
		Where("user_id = ? AND ip = ?", s.UserID, s.IP).
		Delete(&model.Session{}).Error
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) user(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	json.NewEncoder(w).Encode(api.NewOutUser(u))
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/signin", h.signin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(h.logger))
			r.With(middleware.NoCache).Get("/user", h.user)
			r.Post("/signout", h.signout)
		})
	})
}

func findOrCreateSession(ctx context.Context, userID uint, ip string) (*model.Session, error) {
	s := &model.Session{}
	err := db.GetDB(ctx).Where("user_id = ? AND ip = ?", userID, ip).First(s).Error
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	s = &model.Session{
		UserID: userID,
		IP:     ip,
		Token:  uuid.NewString(),
	}
	if err := db.GetDB(ctx).Create(s).Error; err != nil {
		// a concurrent signin from the same device won the insert
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s = &model.Session{}
			if err := db.GetDB(ctx).Where("user_id = ? AND ip = ?", userID, ip).First(s).Error; err != nil {
				return nil, err
			}
			return s, nil
		}
		return nil, err
	}
	return s, nil
}

func NewHandlers(logger *logrus.Logger) *Handlers {
	return &Handlers{logger}
}
