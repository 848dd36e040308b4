package repo

import (
	"context"

	"github.com/lamwh/microblog-backend/db"
	"github.com/lamwh/microblog-backend/db/model"
	"gorm.io/gorm/clause"
)

// Follow creates the directed edge follower -> followed. Re-following
// is a no-op, following oneself is rejected, following a user that
// does not exist is ErrNotFound.
func Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return ErrSelfFollow
	}
	if u, err := UserByID(ctx, followedID); err != nil {
		return err
	} else if u == nil {
		return ErrNotFound
	}
	rel := &model.Relationship{FollowerID: followerID, FollowedID: followedID}
	return db.GetDB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rel).Error
}

// Unfollow removes the edge. Removing an absent edge is a no-op.
func Unfollow(ctx context.Context, followerID, followedID uint) error {
	return db.GetDB(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&model.Relationship{}).Error
}

// IsFollowing reports whether the follower -> followed edge exists.
func IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	var exists bool
	err := db.GetDB(ctx).
		Raw("SELECT EXISTS(SELECT 1 FROM relationships WHERE follower_id = ? AND followed_id = ?)", followerID, followedID).
		Scan(&exists).Error
	return exists, err
}

// Following returns the users that userID follows.
func Following(ctx context.Context, userID uint) ([]model.User, error) {
	users := make([]model.User, 0)
	err := db.GetDB(ctx).Model(&model.User{}).
		Joins("INNER JOIN relationships ON relationships.followed_id = users.id").
		Where("relationships.follower_id = ?", userID).
		Order("users.id").
		Find(&users).Error
	return users, err
}

// Followers returns the users following userID.
func Followers(ctx context.Context, userID uint) ([]model.User, error) {
	users := make([]model.User, 0)
	err := db.GetDB(ctx).Model(&model.User{}).
		Joins("INNER JOIN relationships ON relationships.follower_id = users.id").
		Where("relationships.followed_id = ?", userID).
		Order("users.id").
		Find(&users).Error
	return users, err
}

// FollowerIDs returns just the ids of users following userID. The
// websocket hub uses it to decide who receives a live post.
func FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := make([]uint, 0)
	err := db.GetDB(ctx).Model(&model.Relationship{}).
		Where("followed_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}
