package entities

// Location — складская позиция запчасти в учреждении.
// Пара (institution_id, spare_part_id) уникальна, quantity >= 0
// гарантируется check-ограничением в БД.
type Location struct {
	ID            uint64
	Quantity      int64
	InstitutionID uint64
	SparePartID   uint64
}
