package tables

import (
	"strings"

	"cafepos-backend/internal/database"
	"cafepos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ZoneRequest struct {
	Name string `json:"name"`
}

// POST /api/zones (admin)
func CreateZoneHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ZoneRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Bölge adı zorunlu")
		}

		zone := models.Zone{Name: body.Name}
		if err := database.DB.Create(&zone).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Bölge oluşturulamadı (isim kayıtlı olabilir)")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":   zone.ID,
			"name": zone.Name,
		})
	}
}

// GET /api/zones
func ListZonesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var zones []models.Zone
		if err := database.DB.Preload("Tables").Order("name ASC").Find(&zones).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bölgeler listelenemedi")
		}

		resp := make([]fiber.Map, 0, len(zones))
		for _, z := range zones {
			tables := make([]fiber.Map, 0, len(z.Tables))
			for _, t := range z.Tables {
				tables = append(tables, fiber.Map{
					"id":     t.ID,
					"name":   t.Name,
					"status": t.Status,
				})
			}
			resp = append(resp, fiber.Map{
				"id":     z.ID,
				"name":   z.Name,
				"tables": tables,
			})
		}
		return c.JSON(resp)
	}
}

// DELETE /api/zones/:id (admin)
func DeleteZoneHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz bölge id")
		}

		var count int64
		database.DB.Model(&models.Table{}).Where("zone_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bölgede masa var, önce masaları taşı")
		}

		if err := database.DB.Delete(&models.Zone{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bölge silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
