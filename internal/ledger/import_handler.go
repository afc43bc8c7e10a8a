package ledger

import (
	"fmt"
	"strings"

	"cafepos-backend/internal/auth"
	"cafepos-backend/internal/database"
	"cafepos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type ImportRowResult struct {
	Row        int    `json:"row"`
	Ingredient string `json:"ingredient"`
	Error      string `json:"error,omitempty"`
}

// POST /api/ingredients/import-excel (admin)
// Toplu mal girişi: .xlsx dosyasındaki her satır için (isim | birim | miktar | parti tutarı)
// malzeme yoksa oluşturulur ve normal kayıt yolundan bir import işlemi geçirilir.
// İlk satır başlık kabul edilir ve atlanır.
func ImportExcelHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}

		results := make([]ImportRowResult, 0)
		imported := 0

		for i, row := range rows {
			if i == 0 {
				continue // başlık satırı
			}
			rowNo := i + 1

			if len(row) < 4 {
				results = append(results, ImportRowResult{Row: rowNo, Error: "Eksik kolon (isim | birim | miktar | tutar bekleniyor)"})
				continue
			}

			name := strings.TrimSpace(row[0])
			unit := strings.TrimSpace(row[1])
			if name == "" || unit == "" {
				results = append(results, ImportRowResult{Row: rowNo, Error: "İsim ve birim boş olamaz"})
				continue
			}

			quantity, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(row[2]), ",", "."))
			if err != nil || !quantity.IsPositive() {
				results = append(results, ImportRowResult{Row: rowNo, Ingredient: name, Error: "Miktar pozitif bir sayı olmalı"})
				continue
			}

			price, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(row[3]), ",", "."))
			if err != nil || !price.IsPositive() {
				results = append(results, ImportRowResult{Row: rowNo, Ingredient: name, Error: "Parti tutarı pozitif bir sayı olmalı"})
				continue
			}

			// Malzeme yoksa oluştur
			var ingredient models.Ingredient
			if err := database.DB.Where("name = ?", name).First(&ingredient).Error; err != nil {
				ingredient = models.Ingredient{Name: name, Unit: unit}
				if err := database.DB.Create(&ingredient).Error; err != nil {
					results = append(results, ImportRowResult{Row: rowNo, Ingredient: name, Error: "Malzeme oluşturulamadı"})
					continue
				}
			}

			if _, err := svc.Record(ingredient.ID, RecordInput{
				Type:    models.TxImport,
				Change:  quantity,
				Price:   &price,
				Note:    fmt.Sprintf("Excel toplu giriş: %s", fileHeader.Filename),
				ActorID: userID,
			}); err != nil {
				results = append(results, ImportRowResult{Row: rowNo, Ingredient: name, Error: "Giriş kaydedilemedi"})
				continue
			}

			imported++
			results = append(results, ImportRowResult{Row: rowNo, Ingredient: name})
		}

		return c.JSON(fiber.Map{
			"imported": imported,
			"failed":   len(results) - imported,
			"rows":     results,
		})
	}
}
