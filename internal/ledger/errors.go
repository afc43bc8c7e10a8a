package ledger

import "errors"

var (
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrInvalidType        = errors.New("unknown transaction type")
	ErrInvalidChange      = errors.New("change sign does not match transaction type")
	ErrPriceRequired      = errors.New("import requires a batch price")
	ErrStockNotPositive   = errors.New("projected stock after import must be positive")
)
