package controllers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"cafe-backend/models"

	"github.com/gin-gonic/gin"
)

type MenuController struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewMenuController(db *sql.DB, logger *slog.Logger) *MenuController {
	return &MenuController{db: db, logger: logger}
}

// GetMenu returns the whole menu grouped by category name. Categories with
// no items appear as empty lists.
func (mc *MenuController) GetMenu(c *gin.Context) {
	catRows, err := mc.db.Query("SELECT id, name FROM categories")
	if err != nil {
		mc.logger.Error("failed to read categories", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	defer func() { _ = catRows.Close() }()

	categoryNames := make(map[int]string)
	menu := models.Menu{}
	for catRows.Next() {
		var cat models.Category
		if err := catRows.Scan(&cat.ID, &cat.Name); err != nil {
			mc.logger.Error("failed to scan category", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		categoryNames[cat.ID] = cat.Name
		menu[cat.Name] = []models.Item{}
	}
	if err := catRows.Err(); err != nil {
		mc.logger.Error("failed to read categories", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	itemRows, err := mc.db.Query("SELECT id, name, price, category_id FROM items")
	if err != nil {
		mc.logger.Error("failed to read items", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var item models.Item
		if err := itemRows.Scan(&item.ID, &item.Name, &item.Price, &item.CategoryID); err != nil {
			mc.logger.Error("failed to scan item", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		name, known := categoryNames[item.CategoryID]
		if !known {
			// Orphaned item; referential integrity should prevent this.
			continue
		}
		menu[name] = append(menu[name], item)
	}
	if err := itemRows.Err(); err != nil {
		mc.logger.Error("failed to read items", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, menu)
}
