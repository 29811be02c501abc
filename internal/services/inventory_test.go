package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medequip/internal/entities"
)

func part(sparePartID, institutionID uint64, qty int64) entities.UsedSparePart {
	return entities.UsedSparePart{SparePartID: sparePartID, InstitutionID: institutionID, Quantity: qty}
}

func TestDiffUsedSpareParts_EmptyToNew(t *testing.T) {
	deltas := DiffUsedSpareParts(nil, []entities.UsedSparePart{part(1, 10, 3), part(2, 10, 5)})

	require.Len(t, deltas, 2)
	assert.Equal(t, StockDelta{Key: StockKey{SparePartID: 1, InstitutionID: 10}, Quantity: 3}, deltas[0])
	assert.Equal(t, StockDelta{Key: StockKey{SparePartID: 2, InstitutionID: 10}, Quantity: 5}, deltas[1])
}

func TestDiffUsedSpareParts_RemovalReleasesStock(t *testing.T) {
	deltas := DiffUsedSpareParts([]entities.UsedSparePart{part(1, 10, 3)}, nil)

	require.Len(t, deltas, 1)
	assert.Equal(t, int64(-3), deltas[0].Quantity)
}

func TestDiffUsedSpareParts_UnchangedRowsProduceNoDeltas(t *testing.T) {
	old := []entities.UsedSparePart{part(1, 10, 3), part(2, 20, 7)}
	deltas := DiffUsedSpareParts(old, old)

	assert.Empty(t, deltas)
}

func TestDiffUsedSpareParts_DuplicateKeysAreSummed(t *testing.T) {
	// Две строки с одним ключом в новом наборе складываются в одну дельту.
	deltas := DiffUsedSpareParts(
		[]entities.UsedSparePart{part(1, 10, 2)},
		[]entities.UsedSparePart{part(1, 10, 3), part(1, 10, 4)},
	)

	require.Len(t, deltas, 1)
	assert.Equal(t, int64(5), deltas[0].Quantity)
}

func TestDiffUsedSpareParts_MixedChanges(t *testing.T) {
	old := []entities.UsedSparePart{part(1, 10, 5), part(2, 10, 2), part(3, 20, 1)}
	new := []entities.UsedSparePart{part(1, 10, 8), part(3, 20, 1), part(4, 5, 6)}

	deltas := DiffUsedSpareParts(old, new)

	require.Len(t, deltas, 3)
	// Порядок детерминирован: (spare_part_id, institution_id) по возрастанию.
	assert.Equal(t, StockDelta{Key: StockKey{SparePartID: 1, InstitutionID: 10}, Quantity: 3}, deltas[0])
	assert.Equal(t, StockDelta{Key: StockKey{SparePartID: 2, InstitutionID: 10}, Quantity: -2}, deltas[1])
	assert.Equal(t, StockDelta{Key: StockKey{SparePartID: 4, InstitutionID: 5}, Quantity: 6}, deltas[2])
}

func TestDiffUsedSpareParts_ZeroQuantityRows(t *testing.T) {
	// Строка с нулевым количеством допустима и не двигает остатки.
	deltas := DiffUsedSpareParts(nil, []entities.UsedSparePart{part(1, 10, 0)})
	assert.Empty(t, deltas)
}

func TestDiffUsedSpareParts_OrderIsStableAcrossInputPermutations(t *testing.T) {
	a := []entities.UsedSparePart{part(3, 1, 1), part(1, 2, 2), part(2, 1, 3)}
	b := []entities.UsedSparePart{part(2, 1, 3), part(3, 1, 1), part(1, 2, 2)}

	assert.Equal(t, DiffUsedSpareParts(nil, a), DiffUsedSpareParts(nil, b))
}
