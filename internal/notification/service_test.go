package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"backend-glimpse/internal/stream"

	"github.com/pashagolub/pgxmock/v3"
)

func TestNotifyFollowAppendsAndPushes(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(pgxmock.AnyArg(), "user-2", "user-1", TypeNewFollower).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	hub := stream.NewHub(nil)
	client := hub.Register("user-2")
	defer hub.Unregister(client)

	svc := NewService(mock, hub)
	if err := svc.NotifyFollow(context.Background(), "user-2", "user-1"); err != nil {
		t.Fatalf("notify follow: %v", err)
	}

	select {
	case payload := <-client.Send:
		var n Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			t.Fatalf("unmarshal pushed event: %v", err)
		}
		if n.Type != TypeNewFollower || n.ActorID != "user-1" {
			t.Fatalf("unexpected pushed notification: %+v", n)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("expected pushed event")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNotifyFollowInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(pgxmock.AnyArg(), "user-2", "user-1", TypeNewFollower).
		WillReturnError(errNotification)

	svc := NewService(mock, nil)
	if err := svc.NotifyFollow(context.Background(), "user-2", "user-1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestListNewestFirstPage(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, recipient_id, actor_id, type, is_read, created_at`).
		WithArgs("user-2", pageSize).
		WillReturnRows(pgxmock.NewRows([]string{"id", "recipient_id", "actor_id", "type", "is_read", "created_at"}).
			AddRow("n-2", "user-2", "user-3", TypeNewFollower, false, now).
			AddRow("n-1", "user-2", "user-1", TypeNewFollower, true, now.Add(-time.Hour)))

	svc := NewService(mock, nil)
	notifications, err := svc.List(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notifications) != 2 || notifications[0].ID != "n-2" {
		t.Fatalf("expected newest first, got %v", notifications)
	}
}

func TestListScanError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, recipient_id, actor_id, type, is_read, created_at`).
		WithArgs("user-2", pageSize).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("n-1"))

	svc := NewService(mock, nil)
	if _, err := svc.List(context.Background(), "user-2"); err == nil {
		t.Fatalf("expected scan error")
	}
}

func TestUnreadCount(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications`).
		WithArgs("user-2").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	svc := NewService(mock, nil)
	count, err := svc.UnreadCount(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}
}

func TestMarkAllRead(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`UPDATE notifications`).
		WithArgs("user-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 5))

	svc := NewService(mock, nil)
	if err := svc.MarkAllRead(context.Background(), "user-2"); err != nil {
		t.Fatalf("mark all read: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

var errNotification = errors.New("notification error")
