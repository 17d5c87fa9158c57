package controllers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"cafe-backend/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func newMenuTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mc := NewMenuController(db, logger)

	r := gin.New()
	r.GET("/menu", mc.GetMenu)
	return r, mock
}

func TestGetMenu(t *testing.T) {
	t.Run("places every item under exactly one category", func(t *testing.T) {
		r, mock := newMenuTestRouter(t)

		mock.ExpectQuery("SELECT id, name FROM categories").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
				AddRow(1, "Coffee").
				AddRow(2, "Pastries").
				AddRow(3, "Tea"))
		mock.ExpectQuery("SELECT id, name, price, category_id FROM items").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "category_id"}).
				AddRow(10, "Espresso", 2.5, 1).
				AddRow(11, "Latte", 4.5, 1).
				AddRow(12, "Croissant", 3.0, 2))

		rec := doJSON(r, http.MethodGet, "/menu", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var menu models.Menu
		if err := json.Unmarshal(rec.Body.Bytes(), &menu); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if len(menu) != 3 {
			t.Fatalf("expected 3 categories, got %d", len(menu))
		}
		if len(menu["Coffee"]) != 2 {
			t.Errorf("expected 2 coffee items, got %d", len(menu["Coffee"]))
		}
		if len(menu["Pastries"]) != 1 {
			t.Errorf("expected 1 pastry, got %d", len(menu["Pastries"]))
		}
		if len(menu["Tea"]) != 0 {
			t.Errorf("expected empty tea list, got %d items", len(menu["Tea"]))
		}

		total := 0
		for _, items := range menu {
			total += len(items)
		}
		if total != 3 {
			t.Errorf("expected 3 items across the menu, got %d", total)
		}

		if menu["Coffee"][1].Name != "Latte" || menu["Coffee"][1].Price != 4.5 {
			t.Errorf("unexpected item: %+v", menu["Coffee"][1])
		}
	})

	t.Run("returns an empty object for an empty menu", func(t *testing.T) {
		r, mock := newMenuTestRouter(t)

		mock.ExpectQuery("SELECT id, name FROM categories").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
		mock.ExpectQuery("SELECT id, name, price, category_id FROM items").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "category_id"}))

		rec := doJSON(r, http.MethodGet, "/menu", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if body := rec.Body.String(); body != "{}" {
			t.Errorf("expected empty JSON object, got %s", body)
		}
	})

	t.Run("fails closed on store errors", func(t *testing.T) {
		r, mock := newMenuTestRouter(t)

		mock.ExpectQuery("SELECT id, name FROM categories").
			WillReturnError(sqlmock.ErrCancelled)

		rec := doJSON(r, http.MethodGet, "/menu", nil)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
	})
}
