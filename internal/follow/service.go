package follow

import (
	"context"
	"errors"
	"log"

	"backend-glimpse/internal/db"
)

// ErrSelfFollow rejects a follow of oneself before any write happens.
var ErrSelfFollow = errors.New("cannot follow yourself")

// Emitter receives the new-follower event after an edge is written.
// Implemented by notification.Service.
type Emitter interface {
	NotifyFollow(ctx context.Context, recipientID, actorID string) error
}

type Service struct {
	db      db.Querier
	emitter Emitter
}

func NewService(db db.Querier, emitter Emitter) *Service {
	return &Service{db: db, emitter: emitter}
}

// Follow inserts the follower->following edge. Repeating the call for an
// existing edge is a no-op. A notification is emitted only when the edge is
// new, so follow/unfollow/follow cycles cannot spam the recipient. The edge
// write is authoritative: an emitter failure is logged and never unwinds it.
func (s *Service) Follow(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return ErrSelfFollow
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO follows (follower_id, following_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, followerID, followingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	if s.emitter != nil {
		if err := s.emitter.NotifyFollow(ctx, followingID, followerID); err != nil {
			log.Printf("follow notification for %s failed: %v", followingID, err)
		}
	}
	return nil
}

// Unfollow removes the edge if present; a missing edge is not an error.
// Previously emitted notifications stay.
func (s *Service) Unfollow(ctx context.Context, followerID, followingID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM follows
		WHERE follower_id=$1 AND following_id=$2
	`, followerID, followingID)
	return err
}

// IsFollowing reports whether followerID follows followingID. Sits on the hot
// path of every protected-content view; the composite primary key keeps it an
// index lookup.
func (s *Service) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id=$1 AND following_id=$2
		)
	`, followerID, followingID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Service) Followers(ctx context.Context, userID string) ([]UserRef, error) {
	return s.listEdgeUsers(ctx, `
		SELECT u.id, u.username, u.display_name, COALESCE(u.avatar_url,'')
		FROM follows f JOIN users u ON u.id = f.follower_id
		WHERE f.following_id=$1
		ORDER BY f.created_at DESC
	`, userID)
}

func (s *Service) Following(ctx context.Context, userID string) ([]UserRef, error) {
	return s.listEdgeUsers(ctx, `
		SELECT u.id, u.username, u.display_name, COALESCE(u.avatar_url,'')
		FROM follows f JOIN users u ON u.id = f.following_id
		WHERE f.follower_id=$1
		ORDER BY f.created_at DESC
	`, userID)
}

func (s *Service) listEdgeUsers(ctx context.Context, query, userID string) ([]UserRef, error) {
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserRef
	for rows.Next() {
		var u UserRef
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}
