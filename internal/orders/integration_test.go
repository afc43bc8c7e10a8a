package orders

import (
	"errors"
	"os"
	"strings"
	"testing"

	"cafepos-backend/internal/database"
	"cafepos-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openTestDB: Entegrasyon testleri için Postgres bağlantısı.
// INTEGRATION_TESTS ve TEST_DATABASE_DSN tanımlı değilse test atlanır.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires postgres)")
	}
	dsn := strings.TrimSpace(os.Getenv("TEST_DATABASE_DSN"))
	if dsn == "" {
		t.Skip("set TEST_DATABASE_DSN to a postgres dsn")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("postgres bağlantısı kurulamadı: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec("TRUNCATE order_item_audits, order_items, orders, tables, zones, products, categories RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	coffee   models.Product // 10000
	dessert  models.Product // 5000
	table    models.Table
	tableTwo models.Table
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)

	category := models.Category{Name: "İçecekler"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("kategori: %v", err)
	}

	coffee := models.Product{CategoryID: category.ID, Name: "Filtre Kahve", Price: 10000, IsAvailable: true}
	dessert := models.Product{CategoryID: category.ID, Name: "Cheesecake", Price: 5000, IsAvailable: true}
	if err := db.Create(&coffee).Error; err != nil {
		t.Fatalf("ürün: %v", err)
	}
	if err := db.Create(&dessert).Error; err != nil {
		t.Fatalf("ürün: %v", err)
	}

	zone := models.Zone{Name: "Salon"}
	if err := db.Create(&zone).Error; err != nil {
		t.Fatalf("bölge: %v", err)
	}
	table := models.Table{ZoneID: zone.ID, Name: "S7", Status: models.TableAvailable}
	tableTwo := models.Table{ZoneID: zone.ID, Name: "S8", Status: models.TableAvailable}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("masa: %v", err)
	}
	if err := db.Create(&tableTwo).Error; err != nil {
		t.Fatalf("masa: %v", err)
	}

	return &fixture{db: db, svc: NewService(db), coffee: coffee, dessert: dessert, table: table, tableTwo: tableTwo}
}

func (f *fixture) tableStatus(t *testing.T, id uint) models.TableStatus {
	t.Helper()
	var table models.Table
	if err := f.db.First(&table, id).Error; err != nil {
		t.Fatalf("masa okunamadı: %v", err)
	}
	return table.Status
}

func (f *fixture) advance(t *testing.T, orderID uint, statuses ...models.OrderStatus) *models.Order {
	t.Helper()
	var order *models.Order
	var err error
	for _, s := range statuses {
		order, err = f.svc.UpdateStatus(orderID, s)
		if err != nil {
			t.Fatalf("UpdateStatus(%d, %s): %v", orderID, s, err)
		}
	}
	return order
}

func TestCreateOrderComputesTotalAndFlipsTable(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create([]NewOrderItem{
		{ProductID: f.coffee.ID, Quantity: 2},
		{ProductID: f.dessert.ID, Quantity: 1, Note: "şekersiz"},
	}, &f.table.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if order.Total != 25000 {
		t.Errorf("total = %v, want 25000", order.Total)
	}
	if order.Status != models.OrderPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}
	if got := f.tableStatus(t, f.table.ID); got != models.TableOccupied {
		t.Errorf("table status = %s, want occupied", got)
	}

	// Fiyat anlık görüntüsü: menü fiyatı değişse de satır fiyatı sabit kalır
	if err := f.db.Model(&f.coffee).Update("price", 99999).Error; err != nil {
		t.Fatalf("fiyat güncellenemedi: %v", err)
	}
	reread, err := f.svc.Get(order.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	for _, it := range reread.Items {
		if it.ProductID == f.coffee.ID && it.UnitPrice != 10000 {
			t.Errorf("unit price drifted to %v, want 10000", it.UnitPrice)
		}
	}
	if reread.Total != 25000 {
		t.Errorf("total drifted to %v, want 25000", reread.Total)
	}
}

func TestCreateTakeawayOrderNeedsNoTable(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create([]NewOrderItem{{ProductID: f.coffee.ID, Quantity: 1}}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.TableID != nil {
		t.Errorf("table id = %v, want nil", order.TableID)
	}
}

func TestCreateOrderUnknownProductRejectsWholeOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create([]NewOrderItem{
		{ProductID: f.coffee.ID, Quantity: 1},
		{ProductID: 99999, Quantity: 1},
	}, &f.table.ID)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("Create error = %v, want %v", err, ErrProductNotFound)
	}

	// Kısmi kayıt yok: sipariş yazılmamış, masa boş kalmış olmalı
	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Errorf("order count = %d, want 0", count)
	}
	if got := f.tableStatus(t, f.table.ID); got != models.TableAvailable {
		t.Errorf("table status = %s, want available", got)
	}
}

func TestCreateOrderUnknownTableRollsBackOrder(t *testing.T) {
	f := newFixture(t)

	missing := uint(99999)
	_, err := f.svc.Create([]NewOrderItem{{ProductID: f.coffee.ID, Quantity: 1}}, &missing)
	if !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("Create error = %v, want %v", err, ErrTableNotFound)
	}

	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Errorf("order count = %d, want 0", count)
	}
}

func TestCompletionFreesTableOnlyForLastActiveOrder(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Create([]NewOrderItem{{ProductID: f.coffee.ID, Quantity: 1}}, &f.table.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := f.svc.Create([]NewOrderItem{{ProductID: f.dessert.ID, Quantity: 1}}, &f.table.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	f.advance(t, first.ID, models.OrderConfirmed, models.OrderPreparing, models.OrderReady, models.OrderCompleted)

	// İkinci sipariş hâlâ aktif: masa dolu kalmalı
	if got := f.tableStatus(t, f.table.ID); got != models.TableOccupied {
		t.Errorf("table status = %s, want occupied (second order still active)", got)
	}

	f.advance(t, second.ID, models.OrderCancelled)

	// Son aktif sipariş de kapandı: masa boşalmalı
	if got := f.tableStatus(t, f.table.ID); got != models.TableAvailable {
		t.Errorf("table status = %s, want available", got)
	}
}

func TestCancelOnlyOrderFreesTable(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create([]NewOrderItem{{ProductID: f.coffee.ID, Quantity: 1}}, &f.tableTwo.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	f.advance(t, order.ID, models.OrderCancelled)

	if got := f.tableStatus(t, f.tableTwo.ID); got != models.TableAvailable {
		t.Errorf("table status = %s, want available", got)
	}
}

func TestUpdateStatusRejectsIllegalEdge(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create([]NewOrderItem{{ProductID: f.coffee.ID, Quantity: 1}}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.svc.UpdateStatus(order.ID, models.OrderReady); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("UpdateStatus error = %v, want %v", err, ErrInvalidTransition)
	}

	f.advance(t, order.ID, models.OrderConfirmed, models.OrderPreparing, models.OrderReady, models.OrderCompleted)
	if _, err := f.svc.UpdateStatus(order.ID, models.OrderPending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("terminal order UpdateStatus error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.UpdateStatus(99999, models.OrderConfirmed); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("UpdateStatus error = %v, want %v", err, ErrOrderNotFound)
	}
}

func TestEditItemRecomputesTotalAndWritesAudit(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create([]NewOrderItem{
		{ProductID: f.coffee.ID, Quantity: 2},
		{ProductID: f.dessert.ID, Quantity: 1},
	}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var target models.OrderItem
	for _, it := range order.Items {
		if it.ProductID == f.dessert.ID {
			target = it
		}
	}

	updated, err := f.svc.EditItem(order.ID, target.ID, EditItemInput{
		Action:    models.ItemAuditDelete,
		Reason:    "müşteri vazgeçti",
		ActorID:   1,
		ActorName: "Test Kasiyer",
	})
	if err != nil {
		t.Fatalf("EditItem: %v", err)
	}

	if updated.Total != 20000 {
		t.Errorf("total = %v, want 20000", updated.Total)
	}
	if len(updated.Items) != 1 {
		t.Errorf("items = %d, want 1", len(updated.Items))
	}

	var auditRow models.OrderItemAudit
	if err := f.db.First(&auditRow, "order_id = ?", order.ID).Error; err != nil {
		t.Fatalf("denetim kaydı bulunamadı: %v", err)
	}
	if auditRow.Reason != "müşteri vazgeçti" {
		t.Errorf("reason = %q", auditRow.Reason)
	}
	if auditRow.Action != models.ItemAuditDelete {
		t.Errorf("action = %s, want delete", auditRow.Action)
	}
}

func TestEditItemQuantityUpdate(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create([]NewOrderItem{{ProductID: f.coffee.ID, Quantity: 2}}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	qty := 5
	updated, err := f.svc.EditItem(order.ID, order.Items[0].ID, EditItemInput{
		Action:      models.ItemAuditUpdateQuantity,
		NewQuantity: &qty,
		Reason:      "masa kalabalıklaştı",
		ActorID:     1,
		ActorName:   "Test Kasiyer",
	})
	if err != nil {
		t.Fatalf("EditItem: %v", err)
	}

	if updated.Total != 50000 {
		t.Errorf("total = %v, want 50000", updated.Total)
	}
}

func TestMarkItemServed(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create([]NewOrderItem{{ProductID: f.coffee.ID, Quantity: 1}}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	item := order.Items[0]

	updated, err := f.svc.MarkItemServed(order.ID, item.ID)
	if err != nil {
		t.Fatalf("MarkItemServed: %v", err)
	}
	if !updated.Items[0].IsServed {
		t.Error("item is_served = false, want true")
	}

	// İdempotent: ikinci çağrı hata döndürmez
	if _, err := f.svc.MarkItemServed(order.ID, item.ID); err != nil {
		t.Errorf("MarkItemServed (repeat): %v", err)
	}

	// Kapanmış siparişte servis işareti reddedilir
	f.advance(t, order.ID, models.OrderCancelled)
	if _, err := f.svc.MarkItemServed(order.ID, item.ID); !errors.Is(err, ErrOrderClosed) {
		t.Errorf("MarkItemServed error = %v, want %v", err, ErrOrderClosed)
	}

	if _, err := f.svc.MarkItemServed(99999, item.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("MarkItemServed error = %v, want %v", err, ErrOrderNotFound)
	}
}

func TestEditServedItemIsLocked(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create([]NewOrderItem{{ProductID: f.coffee.ID, Quantity: 2}}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	item := order.Items[0]
	if err := f.db.Model(&models.OrderItem{}).Where("id = ?", item.ID).
		Update("is_served", true).Error; err != nil {
		t.Fatalf("is_served: %v", err)
	}

	_, err = f.svc.EditItem(order.ID, item.ID, EditItemInput{
		Action:    models.ItemAuditDelete,
		Reason:    "yanlış ürün",
		ActorID:   1,
		ActorName: "Test Kasiyer",
	})
	if !errors.Is(err, ErrItemLocked) {
		t.Fatalf("EditItem error = %v, want %v", err, ErrItemLocked)
	}

	// Toplam değişmemiş olmalı
	reread, err := f.svc.Get(order.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if reread.Total != 20000 {
		t.Errorf("total = %v, want 20000", reread.Total)
	}
}

func TestGetIsIdempotent(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create([]NewOrderItem{{ProductID: f.coffee.ID, Quantity: 1}}, &f.table.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := f.svc.Get(order.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := f.svc.Get(order.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if first.Total != second.Total || first.Status != second.Status || len(first.Items) != len(second.Items) {
		t.Errorf("ardışık Get sonuçları farklı: %+v / %+v", first, second)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	f := newFixture(t)

	older, err := f.svc.Create([]NewOrderItem{{ProductID: f.coffee.ID, Quantity: 1}}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	newer, err := f.svc.Create([]NewOrderItem{{ProductID: f.dessert.ID, Quantity: 1}}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := f.svc.List("", nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Errorf("sıralama yanlış: %d, %d", list[0].ID, list[1].ID)
	}
}
