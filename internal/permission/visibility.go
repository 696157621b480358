package permission

// Visibility is the access policy attached to a content item. The set is
// closed: anything outside it denies.
type Visibility string

const (
	VisibilityPublic        Visibility = "public"
	VisibilityPassword      Visibility = "password"
	VisibilityFollowersOnly Visibility = "followers_only"
	VisibilityMutualsOnly   Visibility = "mutuals_only"
)

// NormalizeVisibility maps a raw column value to a Visibility. Legacy rows
// predate the visibility column and carry NULL/empty, which has always meant
// public; that default lives here and nowhere else. The write path stores an
// explicit value, so only old data hits the empty arm.
func NormalizeVisibility(raw string) Visibility {
	if raw == "" {
		return VisibilityPublic
	}
	return Visibility(raw)
}

// Known reports whether v is one of the recognized visibility modes.
func (v Visibility) Known() bool {
	switch v {
	case VisibilityPublic, VisibilityPassword, VisibilityFollowersOnly, VisibilityMutualsOnly:
		return true
	}
	return false
}

// RequiresSecretAtCreate reports whether content with this visibility must be
// given a secret when it is created or edited into this mode.
func (v Visibility) RequiresSecretAtCreate() bool {
	return v == VisibilityPassword
}
