package ledger

import (
	"errors"
	"strings"

	"cafepos-backend/internal/auth"
	"cafepos-backend/internal/database"
	"cafepos-backend/internal/metrics"
	"cafepos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateIngredientRequest struct {
	Name     string           `json:"name"`
	Unit     string           `json:"unit"`
	MinStock *decimal.Decimal `json:"min_stock"`
}

type RecordTransactionRequest struct {
	Change decimal.Decimal                 `json:"change"`
	Type   models.InventoryTransactionType `json:"type"`
	Price  *decimal.Decimal                `json:"price"`
	Note   string                          `json:"note"`
}

type IngredientResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	LowStock     bool            `json:"low_stock"`
}

type TransactionResponse struct {
	ID         uint                            `json:"id"`
	Type       models.InventoryTransactionType `json:"type"`
	Change     decimal.Decimal                 `json:"change"`
	TotalValue decimal.Decimal                 `json:"total_value"`
	Note       string                          `json:"note"`
	CreatedBy  uint                            `json:"created_by"`
	CreatedAt  string                          `json:"created_at"`
}

func toIngredientResponse(ing *models.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:           ing.ID,
		Name:         ing.Name,
		Unit:         ing.Unit,
		CurrentStock: ing.CurrentStock,
		MinStock:     ing.MinStock,
		CostPrice:    ing.CostPrice,
		LowStock:     ing.CurrentStock.LessThanOrEqual(ing.MinStock),
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrIngredientNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Malzeme bulunamadı")
	case errors.Is(err, ErrInvalidType):
		return fiber.NewError(fiber.StatusBadRequest, "Geçersiz işlem tipi")
	case errors.Is(err, ErrInvalidChange):
		return fiber.NewError(fiber.StatusBadRequest, "Miktar işareti işlem tipiyle uyumsuz")
	case errors.Is(err, ErrPriceRequired):
		return fiber.NewError(fiber.StatusBadRequest, "Mal girişi için parti tutarı zorunlu")
	case errors.Is(err, ErrStockNotPositive):
		return fiber.NewError(fiber.StatusBadRequest, "Mal girişi sonrası stok pozitif olmalı")
	}
	return err
}

// POST /api/ingredients (admin)
func CreateIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateIngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Unit = strings.TrimSpace(body.Unit)
		if body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim ve birim zorunlu")
		}

		minStock := decimal.Zero
		if body.MinStock != nil {
			if body.MinStock.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Minimum stok negatif olamaz")
			}
			minStock = *body.MinStock
		}

		ingredient := models.Ingredient{
			Name:     body.Name,
			Unit:     body.Unit,
			MinStock: minStock,
		}

		if err := database.DB.Create(&ingredient).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Malzeme oluşturulamadı (isim kayıtlı olabilir)")
		}

		return c.Status(fiber.StatusCreated).JSON(toIngredientResponse(&ingredient))
	}
}

// GET /api/ingredients
func ListIngredientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ingredients []models.Ingredient
		if err := database.DB.Order("name ASC").Find(&ingredients).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzemeler listelenemedi")
		}

		resp := make([]IngredientResponse, 0, len(ingredients))
		for i := range ingredients {
			resp = append(resp, toIngredientResponse(&ingredients[i]))
		}

		return c.JSON(resp)
	}
}

// POST /api/ingredients/:id/transactions
func RecordTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz malzeme id")
		}

		var body RecordTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		ingredient, err := svc.Record(uint(id), RecordInput{
			Type:    body.Type,
			Change:  body.Change,
			Price:   body.Price,
			Note:    body.Note,
			ActorID: userID,
		})
		metrics.RecordLedgerTransaction(string(body.Type), err == nil)
		if err != nil {
			return toHTTPError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(toIngredientResponse(ingredient))
	}
}

// GET /api/ingredients/:id/transactions
func ListTransactionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz malzeme id")
		}

		txs, err := svc.ListTransactions(uint(id))
		if err != nil {
			return toHTTPError(err)
		}

		resp := make([]TransactionResponse, 0, len(txs))
		for _, tx := range txs {
			resp = append(resp, TransactionResponse{
				ID:         tx.ID,
				Type:       tx.Type,
				Change:     tx.Change,
				TotalValue: tx.TotalValue,
				Note:       tx.Note,
				CreatedBy:  tx.CreatedBy,
				CreatedAt:  tx.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(resp)
	}
}
