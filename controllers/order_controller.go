package controllers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"cafe-backend/middlewares"
	"cafe-backend/models"

	"github.com/gin-gonic/gin"
)

// EventPublisher is the slice of the broker the order controller needs.
// A nil publisher disables events without touching the order flow.
type EventPublisher interface {
	PublishOrderEvent(event models.OrderEvent, priority int) error
	PublishDelayedEvent(event models.OrderEvent, delay time.Duration) error
}

type OrderController struct {
	db             *sql.DB
	publisher      EventPublisher
	logger         *slog.Logger
	prepCheckDelay time.Duration
}

func NewOrderController(db *sql.DB, publisher EventPublisher, logger *slog.Logger, prepCheckDelay time.Duration) *OrderController {
	return &OrderController{
		db:             db,
		publisher:      publisher,
		logger:         logger,
		prepCheckDelay: prepCheckDelay,
	}
}

// CreateOrder persists the order header and all of its line items in one
// transaction: a failed item insert rolls the whole order back.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("create", ok)
	}()

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderTime := time.Now()

	tx, err := oc.db.Begin()
	if err != nil {
		oc.logger.Error("failed to begin transaction", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	result, err := tx.Exec(
		"INSERT INTO orders (order_time, status) VALUES (?, ?)",
		orderTime, models.StatusPending,
	)
	if err != nil {
		_ = tx.Rollback()
		oc.logger.Error("failed to insert order", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		oc.logger.Error("failed to get order id", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var total float64
	for _, line := range req.Items {
		if _, err := tx.Exec(
			"INSERT INTO order_items (order_id, item_id, qty, price) VALUES (?, ?, ?, ?)",
			orderID, line.ItemID, line.Qty, line.Price,
		); err != nil {
			_ = tx.Rollback()
			oc.logger.Error("failed to insert order item", "error", err, "order_no", orderID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		total += line.Price * float64(line.Qty)
	}

	if err := tx.Commit(); err != nil {
		oc.logger.Error("failed to commit order", "error", err, "order_no", orderID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	oc.logger.Info("order created", "order_no", orderID, "items", len(req.Items), "total", total)
	c.JSON(http.StatusOK, models.CreateOrderResponse{
		OrderNo:   int(orderID),
		OrderTime: orderTime,
		Status:    models.StatusPending,
	})

	if oc.publisher != nil {
		priority := 5
		if total > 100 {
			priority = 9
		}

		event := models.OrderEvent{
			OrderNo:  int(orderID),
			Type:     "created",
			Status:   models.StatusPending,
			Total:    total,
			Occurred: orderTime,
		}
		if err := oc.publisher.PublishOrderEvent(event, priority); err != nil {
			oc.logger.Error("failed to publish order created event", "error", err, "order_no", orderID)
		}

		check := models.OrderEvent{
			OrderNo:  int(orderID),
			Type:     "prep_check",
			Occurred: orderTime,
		}
		if err := oc.publisher.PublishDelayedEvent(check, oc.prepCheckDelay); err != nil {
			oc.logger.Error("failed to publish prep check event", "error", err, "order_no", orderID)
		}
	}
}

// ListOrders returns every order newest first, each with its line items.
// One joined query, grouped here into the nested shape.
func (oc *OrderController) ListOrders(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("list", ok)
	}()

	rows, err := oc.db.Query(`
		SELECT o.id, o.order_time, o.status, i.name, oi.qty, oi.price
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN items i ON i.id = oi.item_id
		ORDER BY o.order_time DESC, o.id DESC, oi.id ASC
	`)
	if err != nil {
		oc.logger.Error("failed to list orders", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	defer func() { _ = rows.Close() }()

	ordersMap := make(map[int]*models.OrderSummary)
	var orderIDs []int

	for rows.Next() {
		var (
			orderID   int
			orderTime time.Time
			status    string
			item      models.OrderItemView
		)
		if err := rows.Scan(&orderID, &orderTime, &status, &item.Name, &item.Qty, &item.Price); err != nil {
			oc.logger.Error("failed to scan order row", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		if _, exists := ordersMap[orderID]; !exists {
			ordersMap[orderID] = &models.OrderSummary{
				OrderNo:   orderID,
				OrderTime: orderTime,
				Status:    status,
				Items:     []models.OrderItemView{},
			}
			orderIDs = append(orderIDs, orderID)
		}
		ordersMap[orderID].Items = append(ordersMap[orderID].Items, item)
	}

	if err := rows.Err(); err != nil {
		oc.logger.Error("failed to read order rows", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	orders := make([]models.OrderSummary, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *ordersMap[id])
	}

	c.JSON(http.StatusOK, orders)
}

// UpdateStatus overwrites an order's status with one of the four allowed
// values. No transition rules: any value may follow any other.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("update_status", ok)
	}()

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	result, err := oc.db.Exec("UPDATE orders SET status = ? WHERE id = ?", req.Status, req.OrderNo)
	if err != nil {
		oc.logger.Error("failed to update order status", "error", err, "order_no", req.OrderNo)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	oc.logger.Info("order status updated", "order_no", req.OrderNo, "status", req.Status)
	c.JSON(http.StatusOK, gin.H{"success": true, "orderNo": req.OrderNo, "status": req.Status})

	if oc.publisher != nil {
		event := models.OrderEvent{
			OrderNo:  req.OrderNo,
			Type:     "status_updated",
			Status:   req.Status,
			Occurred: time.Now(),
		}
		if err := oc.publisher.PublishOrderEvent(event, 5); err != nil {
			oc.logger.Error("failed to publish status update event", "error", err, "order_no", req.OrderNo)
		}
	}
}
