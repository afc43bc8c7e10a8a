package orders

import (
	"errors"

	"cafepos-backend/internal/auth"
	"cafepos-backend/internal/database"
	"cafepos-backend/internal/metrics"
	"cafepos-backend/internal/models"
	"cafepos-backend/internal/notify"

	"github.com/gofiber/fiber/v2"
)

type CreateOrderRequest struct {
	Items   []OrderItemRequest `json:"items"`
	TableID *uint              `json:"table_id"`
}

type OrderItemRequest struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type EditItemRequest struct {
	Action      models.OrderItemAuditAction `json:"action"`
	NewQuantity *int                        `json:"new_quantity"`
	NewNote     *string                     `json:"new_note"`
	Reason      string                      `json:"reason"`
}

type OrderItemResponse struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Note        string  `json:"note"`
	IsServed    bool    `json:"is_served"`
}

type OrderResponse struct {
	ID        uint                `json:"id"`
	TableID   *uint               `json:"table_id"`
	TableName string              `json:"table_name,omitempty"`
	Status    models.OrderStatus  `json:"status"`
	Total     float64             `json:"total"`
	CreatedAt string              `json:"created_at"`
	Items     []OrderItemResponse `json:"items"`
}

func toOrderResponse(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		TableID:   o.TableID,
		Status:    o.Status,
		Total:     o.Total,
		CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
		Items:     make([]OrderItemResponse, 0, len(o.Items)),
	}
	if o.Table != nil {
		resp.TableName = o.Table.Name
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Note:        it.Note,
			IsServed:    it.IsServed,
		})
	}
	return resp
}

// toHTTPError: Servis hatalarını HTTP durum kodlarına çevirir.
// Bilinmeyen hatalar merkezi error handler'da 500 olur.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
	case errors.Is(err, ErrItemNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Sipariş satırı bulunamadı")
	case errors.Is(err, ErrTableNotFound):
		return fiber.NewError(fiber.StatusBadRequest, "Masa bulunamadı")
	case errors.Is(err, ErrProductNotFound):
		return fiber.NewError(fiber.StatusBadRequest, "Sepette menüde bulunmayan ürün var")
	case errors.Is(err, ErrEmptyOrder):
		return fiber.NewError(fiber.StatusBadRequest, "Sipariş en az bir satır içermeli")
	case errors.Is(err, ErrInvalidQuantity):
		return fiber.NewError(fiber.StatusBadRequest, "Adet pozitif bir sayı olmalı")
	case errors.Is(err, ErrInvalidStatus):
		return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş durumu")
	case errors.Is(err, ErrInvalidTransition):
		return fiber.NewError(fiber.StatusConflict, "Bu durum geçişine izin verilmiyor")
	case errors.Is(err, ErrOrderClosed):
		return fiber.NewError(fiber.StatusConflict, "Kapanmış siparişte işlem yapılamaz")
	case errors.Is(err, ErrItemLocked):
		return fiber.NewError(fiber.StatusConflict, "Servis edilmiş satır düzenlenemez")
	case errors.Is(err, ErrReasonRequired):
		return fiber.NewError(fiber.StatusBadRequest, "Düzenleme gerekçesi zorunlu")
	case errors.Is(err, ErrInvalidAction):
		return fiber.NewError(fiber.StatusBadRequest, "Geçersiz düzenleme işlemi")
	}
	return err
}

// POST /api/orders
func CreateOrderHandler(svc *Service, pub *notify.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		items := make([]NewOrderItem, 0, len(body.Items))
		for _, it := range body.Items {
			items = append(items, NewOrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Note:      it.Note,
			})
		}

		order, err := svc.Create(items, body.TableID)
		metrics.RecordOrderOperation("create", err == nil)
		if err != nil {
			return toHTTPError(err)
		}

		pub.OrderCreated(order)

		return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
	}
}

// GET /api/orders
func ListOrdersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := models.OrderStatus(c.Query("status"))

		var tableID *uint
		if v := c.QueryInt("table_id"); v > 0 {
			id := uint(v)
			tableID = &id
		}

		orders, err := svc.List(status, tableID)
		if err != nil {
			return toHTTPError(err)
		}

		resp := make([]OrderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, toOrderResponse(&orders[i]))
		}

		return c.JSON(resp)
	}
}

// GET /api/orders/:id
func GetOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş id")
		}

		order, err := svc.Get(uint(id))
		if err != nil {
			return toHTTPError(err)
		}

		return c.JSON(toOrderResponse(order))
	}
}

// PUT /api/orders/:id/status
func UpdateStatusHandler(svc *Service, pub *notify.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş id")
		}

		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		order, err := svc.UpdateStatus(uint(id), body.Status)
		metrics.RecordOrderOperation("status_update", err == nil)
		if err != nil {
			return toHTTPError(err)
		}

		pub.OrderStatusChanged(order)

		return c.JSON(toOrderResponse(order))
	}
}

// PUT /api/orders/:id/items/:itemId/served
func MarkItemServedHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID, err := c.ParamsInt("id")
		if err != nil || orderID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş id")
		}
		itemID, err := c.ParamsInt("itemId")
		if err != nil || itemID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz satır id")
		}

		order, err := svc.MarkItemServed(uint(orderID), uint(itemID))
		if err != nil {
			return toHTTPError(err)
		}

		return c.JSON(toOrderResponse(order))
	}
}

// PUT /api/orders/:id/items/:itemId
func EditItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID, err := c.ParamsInt("id")
		if err != nil || orderID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş id")
		}
		itemID, err := c.ParamsInt("itemId")
		if err != nil || itemID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz satır id")
		}

		var body EditItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
		}

		order, err := svc.EditItem(uint(orderID), uint(itemID), EditItemInput{
			Action:      body.Action,
			NewQuantity: body.NewQuantity,
			NewNote:     body.NewNote,
			Reason:      body.Reason,
			ActorID:     user.ID,
			ActorName:   user.Name,
		})
		metrics.RecordOrderOperation("edit_item", err == nil)
		if err != nil {
			return toHTTPError(err)
		}

		return c.JSON(toOrderResponse(order))
	}
}
