package tables

import (
	"strings"

	"cafepos-backend/internal/database"
	"cafepos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type TableRequest struct {
	ZoneID uint   `json:"zone_id"`
	Name   string `json:"name"`
}

type TableResponse struct {
	ID       uint               `json:"id"`
	ZoneID   uint               `json:"zone_id"`
	ZoneName string             `json:"zone_name"`
	Name     string             `json:"name"`
	Status   models.TableStatus `json:"status"`
}

// POST /api/tables (admin)
// Masa her zaman available olarak açılır; doluluk sadece sipariş akışından değişir.
func CreateTableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TableRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.ZoneID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İsim ve bölge zorunlu")
		}

		var zone models.Zone
		if err := database.DB.First(&zone, body.ZoneID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bölge bulunamadı")
		}

		table := models.Table{
			ZoneID: body.ZoneID,
			Name:   body.Name,
			Status: models.TableAvailable,
		}
		if err := database.DB.Create(&table).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Masa oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(TableResponse{
			ID:       table.ID,
			ZoneID:   table.ZoneID,
			ZoneName: zone.Name,
			Name:     table.Name,
			Status:   table.Status,
		})
	}
}

// GET /api/tables
func ListTablesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Preload("Zone").Order("zone_id ASC, name ASC")

		if zoneID := c.QueryInt("zone_id"); zoneID > 0 {
			q = q.Where("zone_id = ?", zoneID)
		}

		var tables []models.Table
		if err := q.Find(&tables).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Masalar listelenemedi")
		}

		resp := make([]TableResponse, 0, len(tables))
		for _, t := range tables {
			resp = append(resp, TableResponse{
				ID:       t.ID,
				ZoneID:   t.ZoneID,
				ZoneName: t.Zone.Name,
				Name:     t.Name,
				Status:   t.Status,
			})
		}
		return c.JSON(resp)
	}
}

// PUT /api/tables/:id (admin)
// Sadece isim/bölge güncellenebilir; status bu endpoint'ten yazılamaz.
func UpdateTableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz masa id")
		}

		var body TableRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var table models.Table
		if err := database.DB.First(&table, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Masa bulunamadı")
		}

		updates := map[string]interface{}{}
		if name := strings.TrimSpace(body.Name); name != "" {
			updates["name"] = name
		}
		if body.ZoneID != 0 {
			var zone models.Zone
			if err := database.DB.First(&zone, body.ZoneID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Bölge bulunamadı")
			}
			updates["zone_id"] = body.ZoneID
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&table).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Masa güncellenemedi")
			}
		}

		database.DB.Preload("Zone").First(&table, id)
		return c.JSON(TableResponse{
			ID:       table.ID,
			ZoneID:   table.ZoneID,
			ZoneName: table.Zone.Name,
			Name:     table.Name,
			Status:   table.Status,
		})
	}
}

// DELETE /api/tables/:id (admin)
func DeleteTableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz masa id")
		}

		var count int64
		database.DB.Model(&models.Order{}).Where("table_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Masada sipariş geçmişi var, silinemez")
		}

		if err := database.DB.Delete(&models.Table{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Masa silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
