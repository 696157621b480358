package preview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func cardRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "kind", "title", "nsfw", "visibility", "display_name", "image_url"})
}

func TestCardPublic(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM contents c`).
		WithArgs("c-1").
		WillReturnRows(cardRows().
			AddRow("c-1", "post", "hello", false, "public", "Alice", "https://cdn/1.jpg"))

	svc := NewService(mock, nil)
	card, err := svc.Card(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	if card.Blurred || card.ImageURL != "https://cdn/1.jpg" || card.OwnerName != "Alice" {
		t.Fatalf("unexpected card: %+v", card)
	}
}

func TestCardNonPublicBlursAndDropsImage(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM contents c`).
		WithArgs("c-1").
		WillReturnRows(cardRows().
			AddRow("c-1", "post", "hidden", true, "followers_only", "Alice", "https://cdn/1.jpg"))

	svc := NewService(mock, nil)
	card, err := svc.Card(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	if !card.Blurred {
		t.Fatalf("non-public content must be blurred")
	}
	if card.ImageURL != "" {
		t.Fatalf("non-public thumbnail leaked: %s", card.ImageURL)
	}
	if card.Title != "hidden" || !card.NSFW {
		t.Fatalf("metadata must still render: %+v", card)
	}
}

func TestCardLegacyNullVisibilityIsPublic(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM contents c`).
		WithArgs("c-old").
		WillReturnRows(cardRows().
			AddRow("c-old", "memo", "", false, "", "Bob", ""))

	svc := NewService(mock, nil)
	card, err := svc.Card(context.Background(), "c-old")
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	if card.Blurred {
		t.Fatalf("legacy null visibility must render as public")
	}
}

func TestCardCachesInRedis(t *testing.T) {
	mock := newMock(t)
	rdb := newRedis(t)

	// one DB hit only; the second call must come from cache
	mock.ExpectQuery(`FROM contents c`).
		WithArgs("c-1").
		WillReturnRows(cardRows().
			AddRow("c-1", "post", "hello", false, "public", "Alice", ""))

	svc := NewService(mock, rdb)
	first, err := svc.Card(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	second, err := svc.Card(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("cached card: %v", err)
	}
	if first != second {
		t.Fatalf("cache served a different card: %+v vs %+v", first, second)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCardHandler(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM contents c`).
		WithArgs("c-1").
		WillReturnRows(cardRows().
			AddRow("c-1", "post", "hello", false, "public", "Alice", ""))

	app := fiber.New()
	RegisterRoutes(app.Group("/preview"), NewService(mock, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/preview/c-1", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok, got %d (%v)", resp.StatusCode, err)
	}
}

func TestCardHandlerStoreError(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM contents c`).
		WithArgs("c-1").
		WillReturnError(errors.New("db down"))

	app := fiber.New()
	RegisterRoutes(app.Group("/preview"), NewService(mock, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/preview/c-1", nil))
	if err != nil || resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected internal error, got %d (%v)", resp.StatusCode, err)
	}
}
