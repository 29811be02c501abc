package services

import (
	"sort"

	"medequip/internal/entities"
)

// StockKey — ключ позиции склада: запчасть на складе конкретного учреждения.
type StockKey struct {
	SparePartID   uint64
	InstitutionID uint64
}

// StockDelta — подписанное изменение остатка по одному ключу.
// Quantity > 0 — дополнительное списание, Quantity < 0 — возврат на склад.
type StockDelta struct {
	Key      StockKey
	Quantity int64
}

// DiffUsedSpareParts сверяет старый и новый наборы расходов как мультимножества
// и возвращает дельты остатков. Строки с одинаковым ключом складываются,
// нулевые дельты опускаются. Порядок дельт детерминирован (spare_part_id,
// institution_id): конкурентные обновления берут блокировки строк склада
// в одном и том же порядке и не взаимоблокируются.
func DiffUsedSpareParts(old, new []entities.UsedSparePart) []StockDelta {
	deltas := make(map[StockKey]int64)
	for _, p := range new {
		deltas[StockKey{SparePartID: p.SparePartID, InstitutionID: p.InstitutionID}] += p.Quantity
	}
	for _, p := range old {
		deltas[StockKey{SparePartID: p.SparePartID, InstitutionID: p.InstitutionID}] -= p.Quantity
	}

	result := make([]StockDelta, 0, len(deltas))
	for key, qty := range deltas {
		if qty == 0 {
			continue
		}
		result = append(result, StockDelta{Key: key, Quantity: qty})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Key.SparePartID != result[j].Key.SparePartID {
			return result[i].Key.SparePartID < result[j].Key.SparePartID
		}
		return result[i].Key.InstitutionID < result[j].Key.InstitutionID
	})
	return result
}
