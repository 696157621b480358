package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"backend-glimpse/internal/db"

	"github.com/google/uuid"
)

// Upload kinds accepted by the API. Anything else is rejected before a row is
// written.
const (
	KindAvatar = "avatar"
	KindHeader = "header"
	KindPhoto  = "photo"
)

// linkTTL is how long the returned upload URL stays valid for the client.
const linkTTL = 15 * time.Minute

var ErrUnknownKind = errors.New("unknown upload kind")

type Object struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	URL       string    `json:"url"`
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	db      db.Querier
	baseURL string
}

func NewService(db db.Querier, baseURL string) *Service {
	return &Service{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

// SaveObject records an upload destination for userID and returns it with the
// link expiry. The blob itself goes straight to object storage; only the
// record lives here.
func (s *Service) SaveObject(ctx context.Context, userID, fileName, kind string) (Object, error) {
	switch kind {
	case KindAvatar, KindHeader, KindPhoto:
	default:
		return Object{}, ErrUnknownKind
	}
	if fileName == "" {
		fileName = "upload"
	}

	obj := Object{
		ID:        uuid.NewString(),
		UserID:    userID,
		URL:       s.baseURL + "/" + kind + "/" + fileName,
		Kind:      kind,
		ExpiresAt: time.Now().Add(linkTTL),
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO storage_objects (id, user_id, url, kind)
		VALUES ($1,$2,$3,$4)
	`, obj.ID, obj.UserID, obj.URL, obj.Kind)
	if err != nil {
		return Object{}, err
	}
	return obj, nil
}
