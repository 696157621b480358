package preview

import (
	"context"
	"encoding/json"
	"time"

	"backend-glimpse/internal/db"
	"backend-glimpse/internal/permission"

	"github.com/redis/go-redis/v9"
)

// Card is the unauthenticated link-unfurl payload. It carries public metadata
// only; Blurred tells the renderer to obscure the thumbnail for anything that
// is not public.
type Card struct {
	ContentID string `json:"content_id"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	OwnerName string `json:"owner_name"`
	NSFW      bool   `json:"nsfw"`
	ImageURL  string `json:"image_url,omitempty"`
	Blurred   bool   `json:"blurred"`
}

// cacheTTL is deliberately short: preview scrapers refetch aggressively but a
// visibility change must not stay servable for long.
const cacheTTL = 5 * time.Minute

type Service struct {
	db    db.Querier
	redis *redis.Client
}

func NewService(db db.Querier, redisClient *redis.Client) *Service {
	return &Service{db: db, redis: redisClient}
}

func cacheKey(contentID string) string {
	return "preview:" + contentID
}

// Card builds the preview card for contentID, serving from the redis cache
// when warm. Cache failures fall through to Postgres.
func (s *Service) Card(ctx context.Context, contentID string) (Card, error) {
	key := cacheKey(contentID)
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			var card Card
			if json.Unmarshal(raw, &card) == nil {
				return card, nil
			}
		}
	}

	card, err := s.load(ctx, contentID)
	if err != nil {
		return Card{}, err
	}

	if s.redis != nil {
		if raw, err := json.Marshal(card); err == nil {
			s.redis.Set(ctx, key, raw, cacheTTL)
		}
	}
	return card, nil
}

func (s *Service) load(ctx context.Context, contentID string) (Card, error) {
	var card Card
	var visibility string
	err := s.db.QueryRow(ctx, `
		SELECT c.id, c.kind, COALESCE(c.title,''), c.nsfw, COALESCE(c.visibility,''),
		       u.display_name,
		       COALESCE((SELECT i.image_url FROM content_images i
		                 WHERE i.content_id=c.id
		                 ORDER BY i.created_at ASC LIMIT 1), '')
		FROM contents c
		JOIN users u ON u.id = c.owner_id
		WHERE c.id=$1
	`, contentID).Scan(&card.ContentID, &card.Kind, &card.Title, &card.NSFW,
		&visibility, &card.OwnerName, &card.ImageURL)
	if err != nil {
		return Card{}, err
	}

	card.Blurred = permission.NormalizeVisibility(visibility) != permission.VisibilityPublic
	if card.Blurred {
		// non-public thumbnails never leave the server, blurred or not
		card.ImageURL = ""
	}
	return card, nil
}
