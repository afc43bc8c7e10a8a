package ledger

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"cafepos-backend/internal/database"
	"cafepos-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

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
	if err := db.Exec("TRUNCATE inventory_transactions, ingredients RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func createIngredient(t *testing.T, db *gorm.DB, name string) *models.Ingredient {
	t.Helper()
	ing := models.Ingredient{Name: name, Unit: "kg"}
	if err := db.Create(&ing).Error; err != nil {
		t.Fatalf("malzeme oluşturulamadı: %v", err)
	}
	return &ing
}

func txCount(t *testing.T, db *gorm.DB, ingredientID uint) int64 {
	t.Helper()
	var count int64
	db.Model(&models.InventoryTransaction{}).Where("ingredient_id = ?", ingredientID).Count(&count)
	return count
}

func TestImportUpdatesStockAndAverageCost(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	ing := createIngredient(t, db, "Kahve Çekirdeği")

	// İlk parti: 10 kg, 10000 => stok 10, birim maliyet 1000
	if _, err := svc.Record(ing.ID, RecordInput{
		Type: models.TxImport, Change: dec("10"), Price: decPtr("10000"), ActorID: 1,
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// İkinci parti: 10 kg, 12000 => stok 20, birim maliyet (10×1000+12000)/20 = 1100
	updated, err := svc.Record(ing.ID, RecordInput{
		Type: models.TxImport, Change: dec("10"), Price: decPtr("12000"), ActorID: 1,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if !updated.CurrentStock.Equal(dec("20")) {
		t.Errorf("stock = %s, want 20", updated.CurrentStock)
	}
	if !updated.CostPrice.Equal(dec("1100")) {
		t.Errorf("cost = %s, want 1100", updated.CostPrice)
	}
	if got := txCount(t, db, ing.ID); got != 2 {
		t.Errorf("transaction count = %d, want 2", got)
	}
}

func TestImportWithoutPriceLeavesStateUnchanged(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	ing := createIngredient(t, db, "Süt")

	_, err := svc.Record(ing.ID, RecordInput{
		Type: models.TxImport, Change: dec("10"), ActorID: 1,
	})
	if !errors.Is(err, ErrPriceRequired) {
		t.Fatalf("Record error = %v, want %v", err, ErrPriceRequired)
	}

	var reread models.Ingredient
	if err := db.First(&reread, ing.ID).Error; err != nil {
		t.Fatalf("malzeme okunamadı: %v", err)
	}
	if !reread.CurrentStock.IsZero() || !reread.CostPrice.IsZero() {
		t.Errorf("malzeme değişmiş: stock=%s cost=%s", reread.CurrentStock, reread.CostPrice)
	}
	if got := txCount(t, db, ing.ID); got != 0 {
		t.Errorf("transaction count = %d, want 0", got)
	}
}

func TestNonImportTypesLeaveCostUnchanged(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	ing := createIngredient(t, db, "Şeker")

	if _, err := svc.Record(ing.ID, RecordInput{
		Type: models.TxImport, Change: dec("10"), Price: decPtr("10000"), ActorID: 1,
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// Hasar çıkışı: stok düşer, maliyet tabanı değişmez
	afterDamage, err := svc.Record(ing.ID, RecordInput{
		Type: models.TxExportDamage, Change: dec("-3"), Note: "raf devrildi", ActorID: 1,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !afterDamage.CurrentStock.Equal(dec("7")) {
		t.Errorf("stock = %s, want 7", afterDamage.CurrentStock)
	}
	if !afterDamage.CostPrice.Equal(dec("1000")) {
		t.Errorf("cost = %s, want 1000", afterDamage.CostPrice)
	}

	// Sayım düzeltmesi stoku negatife düşürebilir; maliyet yine sabit
	afterAudit, err := svc.Record(ing.ID, RecordInput{
		Type: models.TxAudit, Change: dec("-9"), Note: "sayım farkı", ActorID: 1,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !afterAudit.CurrentStock.Equal(dec("-2")) {
		t.Errorf("stock = %s, want -2", afterAudit.CurrentStock)
	}
	if !afterAudit.CostPrice.Equal(dec("1000")) {
		t.Errorf("cost = %s, want 1000", afterAudit.CostPrice)
	}
}

func TestImportRejectedWhenProjectedStockNotPositive(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	ing := createIngredient(t, db, "Un")

	// Sayımla stoku -5'e çek
	if _, err := svc.Record(ing.ID, RecordInput{
		Type: models.TxAudit, Change: dec("-5"), Note: "açılış düzeltmesi", ActorID: 1,
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// 3 kg'lık parti açığı kapatmaz: ortalama maliyet tanımsız, işlem reddedilir
	_, err := svc.Record(ing.ID, RecordInput{
		Type: models.TxImport, Change: dec("3"), Price: decPtr("300"), ActorID: 1,
	})
	if !errors.Is(err, ErrStockNotPositive) {
		t.Fatalf("Record error = %v, want %v", err, ErrStockNotPositive)
	}

	var reread models.Ingredient
	db.First(&reread, ing.ID)
	if !reread.CurrentStock.Equal(dec("-5")) {
		t.Errorf("stock = %s, want -5", reread.CurrentStock)
	}
	if got := txCount(t, db, ing.ID); got != 1 {
		t.Errorf("transaction count = %d, want 1", got)
	}
}

func TestRecordNotFound(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	_, err := svc.Record(99999, RecordInput{
		Type: models.TxAudit, Change: dec("1"), ActorID: 1,
	})
	if !errors.Is(err, ErrIngredientNotFound) {
		t.Errorf("Record error = %v, want %v", err, ErrIngredientNotFound)
	}
}

// Aynı malzemeye eşzamanlı kayıtlar satır kilidi üzerinde sıralanmalı;
// kayıp güncelleme stok ya da maliyet tabanını bozmamalı.
func TestConcurrentRecordsSerialize(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	ing := createIngredient(t, db, "Kakao")

	if _, err := svc.Record(ing.ID, RecordInput{
		Type: models.TxImport, Change: dec("100"), Price: decPtr("100000"), ActorID: 1,
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Record(ing.ID, RecordInput{
				Type: models.TxExportSales, Change: dec("-1"), ActorID: 1,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Record: %v", err)
		}
	}

	var reread models.Ingredient
	db.First(&reread, ing.ID)
	if !reread.CurrentStock.Equal(dec("90")) {
		t.Errorf("stock = %s, want 90", reread.CurrentStock)
	}
	if !reread.CostPrice.Equal(dec("1000")) {
		t.Errorf("cost = %s, want 1000", reread.CostPrice)
	}
	if got := txCount(t, db, ing.ID); got != workers+1 {
		t.Errorf("transaction count = %d, want %d", got, workers+1)
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	ing := createIngredient(t, db, "Çay")

	if _, err := svc.Record(ing.ID, RecordInput{
		Type: models.TxImport, Change: dec("5"), Price: decPtr("500"), ActorID: 1,
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := svc.Record(ing.ID, RecordInput{
		Type: models.TxExportDamage, Change: dec("-1"), ActorID: 1,
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	txs, err := svc.ListTransactions(ing.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("len = %d, want 2", len(txs))
	}
	if txs[0].Type != models.TxExportDamage || txs[1].Type != models.TxImport {
		t.Errorf("sıralama yanlış: %s, %s", txs[0].Type, txs[1].Type)
	}

	if _, err := svc.ListTransactions(99999); !errors.Is(err, ErrIngredientNotFound) {
		t.Errorf("ListTransactions error = %v, want %v", err, ErrIngredientNotFound)
	}
}
