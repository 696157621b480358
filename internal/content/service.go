package content

import (
	"context"
	"errors"

	"backend-glimpse/internal/db"
	"backend-glimpse/internal/permission"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost for content secrets. Content passwords are shared more casually
// than account passwords, so the cost stays above the library default.
const bcryptCost = 12

var (
	ErrNotOwner          = errors.New("only the owner can modify this content")
	ErrUnknownVisibility = errors.New("unknown visibility")
	ErrSecretRequired    = errors.New("password visibility requires a secret")
)

type Service struct {
	db           db.Querier
	unlockSecret []byte
}

// NewService builds the content service. unlockSecret signs the short-lived
// unlock tokens issued by the secret gate.
func NewService(db db.Querier, unlockSecret string) *Service {
	return &Service{db: db, unlockSecret: []byte(unlockSecret)}
}

// Create stores a new post or memo. Ids come from a collision-resistant
// random generator so share links are not guessable. Visibility is always
// written explicitly; the legacy NULL-means-public case exists only in old
// rows.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (Content, error) {
	if ownerID == "" || req.Body == "" {
		return Content{}, errors.New("owner and body required")
	}

	kind := req.Kind
	if kind == "" {
		kind = KindPost
	}
	if kind != KindPost && kind != KindMemo {
		return Content{}, errors.New("kind must be post or memo")
	}

	vis := permission.NormalizeVisibility(req.Visibility)
	if !vis.Known() {
		return Content{}, ErrUnknownVisibility
	}

	var secretHash string
	if vis.RequiresSecretAtCreate() {
		if req.Secret == "" {
			return Content{}, ErrSecretRequired
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Secret), bcryptCost)
		if err != nil {
			return Content{}, err
		}
		secretHash = string(hash)
	}

	item := Content{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Kind:       kind,
		Title:      req.Title,
		Body:       req.Body,
		NSFW:       req.NSFW,
		Visibility: string(vis),
		SecretHash: secretHash,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO contents (id, owner_id, kind, title, body, nsfw, visibility, password)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''))
		RETURNING created_at, updated_at
	`, item.ID, item.OwnerID, item.Kind, item.Title, item.Body, item.NSFW, item.Visibility, item.SecretHash)
	if err := row.Scan(&item.CreatedAt, &item.UpdatedAt); err != nil {
		return Content{}, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, id string) (Content, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, owner_id, kind, title, body, nsfw, COALESCE(visibility,''), COALESCE(password,''), created_at, updated_at
		FROM contents WHERE id=$1
	`, id)
	var item Content
	if err := row.Scan(&item.ID, &item.OwnerID, &item.Kind, &item.Title, &item.Body, &item.NSFW, &item.Visibility, &item.SecretHash, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return Content{}, err
	}

	images, err := s.loadImages(ctx, []string{item.ID})
	if err != nil {
		return Content{}, err
	}
	item.Images = images[item.ID]
	return item, nil
}

// Update patches a content item. Only the owner may edit. The secret is
// replaceable or clearable but never read back; the final state must keep the
// password-visibility-implies-hash invariant.
func (s *Service) Update(ctx context.Context, id, callerID string, req UpdateRequest) (Content, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return Content{}, err
	}
	if item.OwnerID != callerID {
		return Content{}, ErrNotOwner
	}

	if req.Title != "" {
		item.Title = req.Title
	}
	if req.Body != "" {
		item.Body = req.Body
	}
	if req.NSFW != nil {
		item.NSFW = *req.NSFW
	}
	if req.Visibility != "" {
		vis := permission.Visibility(req.Visibility)
		if !vis.Known() {
			return Content{}, ErrUnknownVisibility
		}
		item.Visibility = string(vis)
	}

	if req.ClearSecret {
		item.SecretHash = ""
	}
	if req.Secret != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Secret), bcryptCost)
		if err != nil {
			return Content{}, err
		}
		item.SecretHash = string(hash)
	}
	if permission.Visibility(item.Visibility) == permission.VisibilityPassword && item.SecretHash == "" {
		return Content{}, ErrSecretRequired
	}

	_, err = s.db.Exec(ctx, `
		UPDATE contents
		SET title=$2, body=$3, nsfw=$4, visibility=$5, password=NULLIF($6,''), updated_at=now()
		WHERE id=$1
	`, item.ID, item.Title, item.Body, item.NSFW, item.Visibility, item.SecretHash)
	if err != nil {
		return Content{}, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id, callerID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM contents WHERE id=$1 AND owner_id=$2
	`, id, callerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotOwner
	}
	return nil
}

func (s *Service) AddImage(ctx context.Context, contentID, callerID, url string) (Image, error) {
	item, err := s.Get(ctx, contentID)
	if err != nil {
		return Image{}, err
	}
	if item.OwnerID != callerID {
		return Image{}, ErrNotOwner
	}

	img := Image{
		ID:        uuid.NewString(),
		ContentID: contentID,
		URL:       url,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO content_images (id, content_id, image_url)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, img.ID, img.ContentID, img.URL)
	if err := row.Scan(&img.CreatedAt); err != nil {
		return Image{}, err
	}
	return img, nil
}

// Feed lists the viewer's own content plus what followed users shared with
// them. Follower-gated rows are admitted by the join itself; mutuals-only rows
// need the back edge. Password-gated rows stay listed (their metadata is
// always reachable) with the body withheld.
func (s *Service) Feed(ctx context.Context, viewerID string) ([]Content, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, owner_id, kind, title, body, nsfw, COALESCE(visibility,''), COALESCE(password,''), created_at, updated_at
		FROM contents c
		WHERE c.owner_id=$1
		   OR (c.owner_id IN (SELECT following_id FROM follows WHERE follower_id=$1)
		       AND (COALESCE(c.visibility,'public') IN ('public','password','followers_only')
		            OR (c.visibility='mutuals_only' AND EXISTS (
		                SELECT 1 FROM follows f2 WHERE f2.follower_id=c.owner_id AND f2.following_id=$1))))
		ORDER BY created_at DESC
		LIMIT 50
	`, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Content
	var ids []string
	for rows.Next() {
		var item Content
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Kind, &item.Title, &item.Body, &item.NSFW, &item.Visibility, &item.SecretHash, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if item.SecretHash != "" && item.OwnerID != viewerID {
			item.Body = ""
		}
		ids = append(ids, item.ID)
		items = append(items, item)
	}

	images, err := s.loadImages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Images = images[items[i].ID]
	}
	return items, nil
}

func (s *Service) loadImages(ctx context.Context, contentIDs []string) (map[string][]Image, error) {
	if len(contentIDs) == 0 {
		return map[string][]Image{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, content_id, image_url, created_at
		FROM content_images WHERE content_id = ANY($1)
		ORDER BY created_at
	`, contentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	images := map[string][]Image{}
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ContentID, &img.URL, &img.CreatedAt); err != nil {
			return nil, err
		}
		images[img.ContentID] = append(images[img.ContentID], img)
	}
	return images, nil
}
