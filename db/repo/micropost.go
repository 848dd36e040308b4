package repo

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/lamwh/microblog-backend/db"
	"github.com/lamwh/microblog-backend/db/model"
	"gorm.io/gorm"
)

// CreateMicropost validates and persists a post with a server-assigned
// timestamp. Posts are immutable once created.
func CreateMicropost(ctx context.Context, userID uint, content string) (*model.Micropost, error) {
	errs := ValidationErrors{}
	if strings.TrimSpace(content) == "" {
		errs.add("content", "can't be blank")
	} else if utf8.RuneCountInString(content) > model.ContentMaxLen {
		errs.add("content", "is too long (maximum is 140 characters)")
	}
	if len(errs) > 0 {
		return nil, errs
	}
	m := &model.Micropost{Content: content, UserID: userID}
	if err := db.GetDB(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// DestroyMicropost deletes the post only when requesterID owns it.
func DestroyMicropost(ctx context.Context, postID, requesterID uint) error {
	m := &model.Micropost{}
	if err := db.GetDB(ctx).First(m, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if m.UserID != requesterID {
		return ErrNotOwner
	}
	return db.GetDB(ctx).Delete(m).Error
}

// MicropostsByUser returns the user's own posts, newest first.
func MicropostsByUser(ctx context.Context, userID uint, limit int) ([]model.Micropost, error) {
	posts := make([]model.Micropost, 0)
	err := db.GetDB(ctx).Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// Feed returns the user's posts plus posts from everyone they follow,
// newest first. A single query with a subselect on the follow edges,
// so cost does not grow with the follow count.
func Feed(ctx context.Context, userID uint, limit int) ([]model.Micropost, error) {
	conn := db.GetDB(ctx)
	followed := conn.Model(&model.Relationship{}).
		Select("followed_id").
		Where("follower_id = ?", userID)

	posts := make([]model.Micropost, 0)
	err := conn.Preload("User").
		Where("user_id = ? OR user_id IN (?)", userID, followed).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}
