package audit

import (
	"cafepos-backend/internal/database"
	"cafepos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit/order-items?order_id=
func ListItemEditsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Order("created_at DESC, id DESC")

		if orderID := c.QueryInt("order_id"); orderID > 0 {
			q = q.Where("order_id = ?", orderID)
		}

		var logs []models.OrderItemAudit
		if err := q.Limit(200).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Denetim kayıtları listelenemedi")
		}

		return c.JSON(logs)
	}
}
