package catalog

import (
	"strings"

	"cafepos-backend/internal/database"
	"cafepos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProductRequest struct {
	CategoryID  uint     `json:"category_id"`
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	IsAvailable *bool    `json:"is_available"`
}

type ProductResponse struct {
	ID           uint    `json:"id"`
	CategoryID   uint    `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	IsAvailable  bool    `json:"is_available"`
}

// POST /api/products (admin)
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.CategoryID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İsim ve kategori zorunlu")
		}
		if body.Price == nil || *body.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
		}

		var category models.Category
		if err := database.DB.First(&category, body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori bulunamadı")
		}

		product := models.Product{
			CategoryID:  body.CategoryID,
			Name:        body.Name,
			Price:       *body.Price,
			IsAvailable: true,
		}
		if body.IsAvailable != nil {
			product.IsAvailable = *body.IsAvailable
		}

		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Ürün oluşturulamadı (isim kayıtlı olabilir)")
		}

		return c.Status(fiber.StatusCreated).JSON(ProductResponse{
			ID:           product.ID,
			CategoryID:   product.CategoryID,
			CategoryName: category.Name,
			Name:         product.Name,
			Price:        product.Price,
			IsAvailable:  product.IsAvailable,
		})
	}
}

// GET /api/products
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Preload("Category").Order("name ASC")

		if categoryID := c.QueryInt("category_id"); categoryID > 0 {
			q = q.Where("category_id = ?", categoryID)
		}

		var products []models.Product
		if err := q.Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		resp := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, ProductResponse{
				ID:           p.ID,
				CategoryID:   p.CategoryID,
				CategoryName: p.Category.Name,
				Name:         p.Name,
				Price:        p.Price,
				IsAvailable:  p.IsAvailable,
			})
		}
		return c.JSON(resp)
	}
}

// PUT /api/products/:id (admin)
// Fiyat değişikliği sadece yeni siparişleri etkiler; mevcut sipariş satırları
// oluşturuldukları andaki fiyatı taşır.
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün id")
		}

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		updates := map[string]interface{}{}
		if name := strings.TrimSpace(body.Name); name != "" {
			updates["name"] = name
		}
		if body.CategoryID != 0 {
			var category models.Category
			if err := database.DB.First(&category, body.CategoryID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Kategori bulunamadı")
			}
			updates["category_id"] = body.CategoryID
		}
		if body.Price != nil {
			if *body.Price < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
			}
			updates["price"] = *body.Price
		}
		if body.IsAvailable != nil {
			updates["is_available"] = *body.IsAvailable
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&product).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
			}
		}

		return GetProductByID(c, uint(id))
	}
}

func GetProductByID(c *fiber.Ctx, id uint) error {
	var product models.Product
	if err := database.DB.Preload("Category").First(&product, id).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
	}
	return c.JSON(ProductResponse{
		ID:           product.ID,
		CategoryID:   product.CategoryID,
		CategoryName: product.Category.Name,
		Name:         product.Name,
		Price:        product.Price,
		IsAvailable:  product.IsAvailable,
	})
}

// DELETE /api/products/:id (admin)
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün id")
		}

		var count int64
		database.DB.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&count)
		if count > 0 {
			// Sipariş geçmişi ürünü referanslıyor; silmek yerine satıştan kaldır
			if err := database.DB.Model(&models.Product{}).Where("id = ?", id).
				Update("is_available", false).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Ürün satıştan kaldırılamadı")
			}
			return c.JSON(fiber.Map{"deactivated": true})
		}

		if err := database.DB.Delete(&models.Product{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
