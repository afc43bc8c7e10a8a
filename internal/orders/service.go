package orders

import (
	"errors"
	"strings"

	"cafepos-backend/internal/audit"
	"cafepos-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service: Sipariş yaşam döngüsü ve masa doluluk senkronizasyonu.
// Masa durumunu yazan tek yer burasıdır; doluluk invaryantı
// (masa dolu <=> masada terminal olmayan sipariş var) böylece tek noktadan korunur.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type NewOrderItem struct {
	ProductID uint
	Quantity  int
	Note      string
}

type EditItemInput struct {
	Action      models.OrderItemAuditAction
	NewQuantity *int
	NewNote     *string
	Reason      string
	ActorID     uint
	ActorName   string
}

// orderTotal: Toplam her zaman satırlardan türetilir, asla artımsal düzeltilmez.
func orderTotal(items []models.OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

// Create: Sepetten sipariş oluşturur. Sipariş + satırlar + masa doluluğu tek
// transaction'da yazılır; kısmi kayıt olmaz. Menüde olmayan ya da satıştan
// kaldırılmış bir productId tüm siparişi reddeder (satır sessizce düşürülmez,
// yoksa toplam gözlemlenemez şekilde eksik kalırdı).
func (s *Service) Create(items []NewOrderItem, tableID *uint) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	var orderID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Masa önce kilitlenir: sipariş yazımı ve doluluk aynı birimde,
		// masa yoksa hiçbir şey yazılmadan çıkılır.
		var table models.Table
		if tableID != nil {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&table, *tableID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTableNotFound
				}
				return err
			}
		}

		// Fiyatlar distinct ürün başına bir kez okunur ve satıra kopyalanır (snapshot).
		idSet := make(map[uint]bool)
		ids := make([]uint, 0, len(items))
		for _, it := range items {
			if !idSet[it.ProductID] {
				idSet[it.ProductID] = true
				ids = append(ids, it.ProductID)
			}
		}

		var products []models.Product
		if err := tx.Where("id IN ? AND is_available = ?", ids, true).Find(&products).Error; err != nil {
			return err
		}
		priceByID := make(map[uint]float64, len(products))
		for _, p := range products {
			priceByID[p.ID] = p.Price
		}
		if len(priceByID) != len(ids) {
			return ErrProductNotFound
		}

		orderItems := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			orderItems = append(orderItems, models.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: priceByID[it.ProductID],
				Note:      it.Note,
			})
		}

		order := models.Order{
			TableID: tableID,
			Status:  models.OrderPending,
			Total:   orderTotal(orderItems),
			Items:   orderItems,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		orderID = order.ID

		if tableID != nil && table.Status != models.TableOccupied {
			if err := tx.Model(&table).Update("status", models.TableOccupied).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(orderID)
}

// List: Siparişler, en yenisi önce. status ve tableID opsiyonel filtrelerdir.
func (s *Service) List(status models.OrderStatus, tableID *uint) ([]models.Order, error) {
	q := s.db.
		Preload("Items").
		Preload("Items.Product").
		Preload("Table").
		Order("created_at DESC, id DESC")

	if status != "" {
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		q = q.Where("status = ?", status)
	}
	if tableID != nil {
		q = q.Where("table_id = ?", *tableID)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Service) Get(id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.
		Preload("Items").
		Preload("Items.Product").
		Preload("Table").
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// UpdateStatus: Durum geçişi. Geçiş tablosuna aykırı kenarlar reddedilir.
// Terminal duruma (completed/cancelled) geçen masalı siparişte, masa satırı
// FOR UPDATE ile kilitlenip aynı transaction içinde kardeş siparişler sayılır:
// aynı masada iki sipariş eşzamanlı kapanırsa masa kilidi üzerinde sıralanırlar
// ve sonuncusu sıfır aktif sipariş görüp masayı boşaltır.
func (s *Service) UpdateStatus(id uint, newStatus models.OrderStatus) (*models.Order, error) {
	if !newStatus.IsValid() {
		return nil, ErrInvalidStatus
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !order.Status.CanTransitionTo(newStatus) {
			return ErrInvalidTransition
		}

		if err := tx.Model(&order).Update("status", newStatus).Error; err != nil {
			return err
		}

		if newStatus.IsTerminal() && order.TableID != nil {
			var table models.Table
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&table, *order.TableID).Error; err != nil {
				return err
			}

			var active int64
			if err := tx.Model(&models.Order{}).
				Where("table_id = ? AND status NOT IN ?", *order.TableID,
					[]models.OrderStatus{models.OrderCompleted, models.OrderCancelled}).
				Count(&active).Error; err != nil {
				return err
			}

			if active == 0 && table.Status != models.TableAvailable {
				if err := tx.Model(&table).Update("status", models.TableAvailable).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(id)
}

// MarkItemServed: Mutfak akışı; satırı servis edilmiş olarak işaretler.
// İşaretlenen satır kalıcı olarak kilitlenir, idempotenttir.
func (s *Service) MarkItemServed(orderID, itemID uint) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if order.Status.IsTerminal() {
			return ErrOrderClosed
		}

		var item models.OrderItem
		if err := tx.First(&item, "id = ? AND order_id = ?", itemID, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		if item.IsServed {
			return nil
		}
		return tx.Model(&item).Update("is_served", true).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(orderID)
}

// EditItem: Sipariş satırı düzenleme (sil / adet değiştir / not değiştir).
// Servis edilmiş satır kilitlidir. Gerekçe zorunludur ve denetim kaydına yazılır.
// Toplam, kalan satırlardan yeniden hesaplanır.
func (s *Service) EditItem(orderID, itemID uint, in EditItemInput) (*models.Order, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, ErrReasonRequired
	}

	switch in.Action {
	case models.ItemAuditDelete, models.ItemAuditUpdateQuantity, models.ItemAuditUpdateNote:
	default:
		return nil, ErrInvalidAction
	}

	if in.Action == models.ItemAuditUpdateQuantity {
		if in.NewQuantity == nil || *in.NewQuantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		var item models.OrderItem
		if err := tx.First(&item, "id = ? AND order_id = ?", itemID, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		if item.IsServed {
			return ErrItemLocked
		}

		before := item
		var after *models.OrderItem

		switch in.Action {
		case models.ItemAuditDelete:
			if err := tx.Delete(&models.OrderItem{}, item.ID).Error; err != nil {
				return err
			}

		case models.ItemAuditUpdateQuantity:
			if err := tx.Model(&item).Update("quantity", *in.NewQuantity).Error; err != nil {
				return err
			}
			item.Quantity = *in.NewQuantity
			after = &item

		case models.ItemAuditUpdateNote:
			newNote := ""
			if in.NewNote != nil {
				newNote = *in.NewNote
			}
			if err := tx.Model(&item).Update("note", newNote).Error; err != nil {
				return err
			}
			item.Note = newNote
			after = &item
		}

		// Toplamı kalan satırlardan türet; artımsal düzeltme zamanla kayma biriktirir.
		var total float64
		if err := tx.Model(&models.OrderItem{}).
			Where("order_id = ?", orderID).
			Select("COALESCE(SUM(unit_price * quantity), 0)").
			Scan(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&order).Update("total", total).Error; err != nil {
			return err
		}

		return audit.WriteItemEdit(tx, audit.ItemEditLog{
			OrderID:     orderID,
			OrderItemID: itemID,
			UserID:      in.ActorID,
			UserName:    in.ActorName,
			Action:      in.Action,
			Reason:      in.Reason,
			Before:      before,
			After:       after,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.Get(orderID)
}
