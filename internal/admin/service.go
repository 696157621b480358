package admin

import (
	"context"
	"time"

	"backend-glimpse/internal/db"
)

type Overview struct {
	Users         int            `json:"users"`
	Contents      int            `json:"contents"`
	Follows       int            `json:"follows"`
	Notifications int            `json:"notifications"`
	RecentSignups []RecentSignup `json:"recent_signups"`
}

type RecentSignup struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

const recentSignupLimit = 10

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Overview gathers table counts and the latest signups in one pass. Counts
// are point-in-time reads, not a transaction; drift between them is fine for
// a dashboard.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var o Overview
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM contents),
			(SELECT COUNT(*) FROM follows),
			(SELECT COUNT(*) FROM notifications)
	`).Scan(&o.Users, &o.Contents, &o.Follows, &o.Notifications)
	if err != nil {
		return Overview{}, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, username, created_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1
	`, recentSignupLimit)
	if err != nil {
		return Overview{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var r RecentSignup
		if err := rows.Scan(&r.ID, &r.Username, &r.CreatedAt); err != nil {
			return Overview{}, err
		}
		o.RecentSignups = append(o.RecentSignups, r)
	}
	return o, nil
}
