package ledger

import (
	"errors"

	"cafepos-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service: Envanter defteri. Stok ve ortalama maliyet yalnızca buradan değişir;
// her değişiklik append-only bir InventoryTransaction satırıyla kayıt altına alınır.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type RecordInput struct {
	Type    models.InventoryTransactionType
	Change  decimal.Decimal
	Price   *decimal.Decimal // import için parti toplam maliyeti, diğer tiplerde nil
	Note    string
	ActorID uint
}

// validate: İşaret kuralları ve import fiyat zorunluluğu. Hiçbir yazma işleminden
// önce çalışır; geçersiz istek stok durumuna dokunmadan reddedilir.
func (in RecordInput) validate() error {
	if !in.Type.IsValid() {
		return ErrInvalidType
	}
	if in.Change.IsZero() {
		return ErrInvalidChange
	}

	switch in.Type {
	case models.TxImport:
		if in.Change.IsNegative() {
			return ErrInvalidChange
		}
		if in.Price == nil || !in.Price.IsPositive() {
			return ErrPriceRequired
		}
	case models.TxExportDamage, models.TxExportSales:
		if in.Change.IsPositive() {
			return ErrInvalidChange
		}
	case models.TxAudit:
		// sayım farkı her iki yönde olabilir
	}

	return nil
}

// Record: Tek transaction'da hareket satırını ekler ve malzemenin stok/maliyet
// alanlarını günceller. Malzeme satırı FOR UPDATE ile kilitlenir; aynı malzemeye
// eşzamanlı kayıtlar read-modify-write'larını sıralı yürütür, kayıp güncelleme
// maliyet tabanını sessizce bozamaz.
func (s *Service) Record(ingredientID uint, in RecordInput) (*models.Ingredient, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var ingredient models.Ingredient
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ingredient, ingredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIngredientNotFound
			}
			return err
		}

		newStock := ingredient.CurrentStock.Add(in.Change)
		newCost := ingredient.CostPrice
		totalValue := decimal.Zero

		if in.Type == models.TxImport {
			// Ortalama maliyet sadece yeni stok pozitifken tanımlıdır.
			if !newStock.IsPositive() {
				return ErrStockNotPositive
			}
			newCost = weightedAverageCost(ingredient.CurrentStock, ingredient.CostPrice, in.Change, *in.Price)
			totalValue = *in.Price
		}

		movement := models.InventoryTransaction{
			IngredientID: ingredient.ID,
			Type:         in.Type,
			Change:       in.Change,
			TotalValue:   totalValue,
			Note:         in.Note,
			CreatedBy:    in.ActorID,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"current_stock": newStock,
		}
		if in.Type == models.TxImport {
			updates["cost_price"] = newCost
		}
		if err := tx.Model(&ingredient).Updates(updates).Error; err != nil {
			return err
		}

		ingredient.CurrentStock = newStock
		ingredient.CostPrice = newCost
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ingredient, nil
}

// ListTransactions: Bir malzemenin hareket geçmişi, en yenisi önce.
func (s *Service) ListTransactions(ingredientID uint) ([]models.InventoryTransaction, error) {
	var ingredient models.Ingredient
	if err := s.db.First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}

	var txs []models.InventoryTransaction
	if err := s.db.
		Where("ingredient_id = ?", ingredientID).
		Order("created_at DESC, id DESC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}
