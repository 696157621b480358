package notification

import (
	"context"
	"encoding/json"

	"backend-glimpse/internal/db"
	"backend-glimpse/internal/stream"

	"github.com/google/uuid"
)

// pageSize bounds notification listings; older entries stay queryable only
// through the unread count until read.
const pageSize = 20

type Service struct {
	db  db.Querier
	hub *stream.Hub
}

func NewService(db db.Querier, hub *stream.Hub) *Service {
	return &Service{db: db, hub: hub}
}

// NotifyFollow appends one NEW_FOLLOWER record for recipientID and pushes it
// to any connected clients. Called once per new follow edge.
func (s *Service) NotifyFollow(ctx context.Context, recipientID, actorID string) error {
	n := Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        TypeNewFollower,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO notifications (id, recipient_id, actor_id, type)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, n.ID, n.RecipientID, n.ActorID, n.Type)
	if err := row.Scan(&n.CreatedAt); err != nil {
		return err
	}

	if s.hub != nil {
		payload, _ := json.Marshal(n)
		s.hub.Broadcast(recipientID, payload)
	}
	return nil
}

// List returns the newest page of notifications for recipientID.
func (s *Service) List(ctx context.Context, recipientID string) ([]Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, recipient_id, actor_id, type, is_read, created_at
		FROM notifications
		WHERE recipient_id=$1
		ORDER BY created_at DESC
		LIMIT $2
	`, recipientID, pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.ActorID, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id=$1 AND is_read=FALSE
	`, recipientID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkAllRead flips every unread record for recipientID in one set-based
// statement, so a concurrent reader never observes a partially read page.
func (s *Service) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE notifications
		SET is_read=TRUE
		WHERE recipient_id=$1 AND is_read=FALSE
	`, recipientID)
	return err
}
