package ledger

import "github.com/shopspring/decimal"

// weightedAverageCost: Hareketli ağırlıklı ortalama birim maliyet.
//
//	eskiToplamDeğer = mevcutStok × birimMaliyet
//	yeniStok        = mevcutStok + değişim
//	yeniMaliyet     = (eskiToplamDeğer + partiTutarı) / yeniStok
//
// Sadece import (mal girişi) için geçerlidir; tüketim/hasar/sayım maliyet tabanını
// değiştirmez. yeniStok pozitif olmalıdır, çağıran bunu önceden doğrular.
func weightedAverageCost(currentStock, costPrice, change, batchPrice decimal.Decimal) decimal.Decimal {
	oldTotalValue := currentStock.Mul(costPrice)
	newStock := currentStock.Add(change)
	return oldTotalValue.Add(batchPrice).Div(newStock)
}
