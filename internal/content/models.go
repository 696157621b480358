package content

import (
	"time"

	"backend-glimpse/internal/permission"
)

const (
	KindPost = "post"
	KindMemo = "memo"
)

type Content struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Kind       string    `json:"kind"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	NSFW       bool      `json:"nsfw"`
	Visibility string    `json:"visibility"`
	SecretHash string    `json:"-"`
	Images     []Image   `json:"images,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Descriptor projects the fields the permission evaluator needs.
func (c Content) Descriptor() permission.Descriptor {
	return permission.Descriptor{
		ContentID:  c.ID,
		OwnerID:    c.OwnerID,
		Visibility: permission.NormalizeVisibility(c.Visibility),
		HasSecret:  c.SecretHash != "",
	}
}

type Image struct {
	ID        string    `json:"id"`
	ContentID string    `json:"content_id"`
	URL       string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateRequest struct {
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Visibility string `json:"visibility"`
	Secret     string `json:"secret"`
	NSFW       bool   `json:"nsfw"`
}

type UpdateRequest struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	Visibility  string `json:"visibility"`
	Secret      string `json:"secret"`
	ClearSecret bool   `json:"clear_secret"`
	NSFW        *bool  `json:"nsfw"`
}

type UnlockRequest struct {
	Secret string `json:"secret"`
}
