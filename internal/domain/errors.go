package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора товара.
	ErrProductIDRequired = errors.New("product id is required")
	// Ошибка отрицательной цены товара.
	ErrPriceNegative = errors.New("price must be non-negative")
	// Ошибка цены с точностью выше цента.
	ErrPriceInvalidPrecision = errors.New("price must have at most two fractional digits")
	// Ошибка строки корзины без собственного идентификатора.
	ErrLineIDRequired = errors.New("line item id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// ErrItemQtyTooLarge: количество в строке больше MaxLineQuantity.
	ErrItemQtyTooLarge = errors.New("item qty exceeds the per-line limit")
	// ErrPriceTooLarge: цена товара больше MaxProductPrice.
	ErrPriceTooLarge = errors.New("price exceeds the allowed maximum")
	// Ошибка повторной строки для одного и того же товара.
	ErrDuplicateProductLine = errors.New("cart contains duplicate product line")
	// ErrKeyNotFound возвращается key-value хранилищем, если ключа нет.
	ErrKeyNotFound = errors.New("key not found")
	// ErrStorageUnavailable — хранилище временно недоступно (например, открыт circuit breaker).
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrProductNotFound — товара нет в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductOutOfStock — товар закончился и не может быть добавлен.
	ErrProductOutOfStock = errors.New("product is out of stock")
	// ErrCartEmpty — оформить заказ из пустой корзины нельзя.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrPharmacyRequired — не выбрана аптека для самовывоза.
	ErrPharmacyRequired = errors.New("please select a pharmacy for pickup")
	// ErrPharmacyNotFound — аптеки с таким идентификатором нет в справочнике.
	ErrPharmacyNotFound = errors.New("pharmacy not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// Ошибка несоответствия subtotal заказа и сумм позиций.
	ErrSubtotalMismatch = errors.New("order subtotal does not match items sum")
	// ErrOrderAlreadyExists — заказ с таким ID уже сохранён.
	ErrOrderAlreadyExists = errors.New("order already exists")
)

// IsNotFound проверяет ошибки отсутствия сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrPharmacyNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}
