package services

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medequip/internal/dto"
	"medequip/internal/entities"
	"medequip/internal/repositories"
	"medequip/pkg/constants"
	"medequip/pkg/types"
)

// fakeStatusRecordRepo ведёт историю в памяти; каждая новая запись получает
// строго возрастающее created_at, как clock_timestamp() в БД.
type fakeStatusRecordRepo struct {
	records []entities.StatusRecord
	clock   time.Time
}

func (f *fakeStatusRecordRepo) AppendInTx(ctx context.Context, tx pgx.Tx, record *entities.StatusRecord) (uint64, error) {
	f.clock = f.clock.Add(time.Second)
	record.ID = uint64(len(f.records) + 1)
	record.CreatedAt = f.clock
	f.records = append(f.records, *record)
	return record.ID, nil
}

func (f *fakeStatusRecordRepo) ListByRequest(ctx context.Context, repairRequestID uint64) ([]entities.StatusRecord, error) {
	return f.records, nil
}

func (f *fakeStatusRecordRepo) newest() entities.StatusRecord {
	return f.records[len(f.records)-1]
}

// fakeRepairRequestRepo хранит только кэш последнего статуса и completed_at.
type fakeRepairRequestRepo struct {
	lastStatus  string
	completedAt *time.Time
}

func (f *fakeRepairRequestRepo) SetLastStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string, completedAt *time.Time) error {
	f.lastStatus = status
	f.completedAt = completedAt
	return nil
}

func (f *fakeRepairRequestRepo) CreateInTx(ctx context.Context, tx pgx.Tx, req *entities.RepairRequest) (uint64, error) {
	return 0, nil
}
func (f *fakeRepairRequestRepo) UpdateScalarsInTx(ctx context.Context, tx pgx.Tx, id uint64, managerNote, engineerNote null.String) error {
	return nil
}
func (f *fakeRepairRequestRepo) ReplaceFailureTypesInTx(ctx context.Context, tx pgx.Tx, id uint64, failureTypeIDs []uint64) error {
	return nil
}
func (f *fakeRepairRequestRepo) DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	return nil
}
func (f *fakeRepairRequestRepo) FindByID(ctx context.Context, id uint64, preloads repositories.Preload) (*entities.RepairRequest, error) {
	return nil, nil
}
func (f *fakeRepairRequestRepo) FindByIDInTx(ctx context.Context, tx pgx.Tx, id uint64, preloads repositories.Preload) (*entities.RepairRequest, error) {
	return nil, nil
}
func (f *fakeRepairRequestRepo) List(ctx context.Context, filter types.Filter) ([]entities.RepairRequest, uint64, error) {
	return nil, 0, nil
}
func (f *fakeRepairRequestRepo) ListByEquipment(ctx context.Context, equipmentID uint64) ([]entities.RepairRequest, error) {
	return nil, nil
}

func newStatusTestService() (*repairRequestService, *fakeStatusRecordRepo, *fakeRepairRequestRepo) {
	statusRepo := &fakeStatusRecordRepo{clock: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	requestRepo := &fakeRepairRequestRepo{lastStatus: constants.StatusNotTaken}
	svc := &repairRequestService{
		repairRequestRepo: requestRepo,
		statusRecordRepo:  statusRepo,
	}
	return svc, statusRepo, requestRepo
}

func appendStatus(t *testing.T, svc *repairRequestService, status string) {
	t.Helper()
	require.NoError(t, svc.appendStatusInTx(context.Background(), nil, 1, &dto.StatusEntryDTO{Status: status}))
}

func TestAppendStatus_FinishedSetsCompletedAt(t *testing.T) {
	svc, statusRepo, requestRepo := newStatusTestService()

	appendStatus(t, svc, constants.StatusInProgress)
	assert.Equal(t, constants.StatusInProgress, requestRepo.lastStatus)
	assert.Nil(t, requestRepo.completedAt)

	appendStatus(t, svc, constants.StatusFinished)

	assert.Equal(t, constants.StatusFinished, requestRepo.lastStatus)
	require.NotNil(t, requestRepo.completedAt)
	// completed_at совпадает с created_at завершающей записи истории.
	assert.Equal(t, statusRepo.newest().CreatedAt, *requestRepo.completedAt)
}

func TestAppendStatus_RevokingFinishedClearsCompletedAt(t *testing.T) {
	svc, _, requestRepo := newStatusTestService()

	appendStatus(t, svc, constants.StatusFinished)
	require.NotNil(t, requestRepo.completedAt)

	// Более поздняя запись отменяет завершение.
	appendStatus(t, svc, constants.StatusWaitingSpareParts)

	assert.Equal(t, constants.StatusWaitingSpareParts, requestRepo.lastStatus)
	assert.Nil(t, requestRepo.completedAt)
}

// Кэш последнего статуса и completed_at согласованы с новейшей записью
// истории после любой последовательности переходов.
func TestAppendStatus_CacheMatchesNewestRecord(t *testing.T) {
	svc, statusRepo, requestRepo := newStatusTestService()

	sequence := []string{
		constants.StatusInProgress,
		constants.StatusWaitingSpareParts,
		constants.StatusFinished,
		constants.StatusNotTaken,
		constants.StatusFinished,
		constants.StatusFinished,
		constants.StatusInProgress,
	}

	for _, status := range sequence {
		appendStatus(t, svc, status)

		newest := statusRepo.newest()
		assert.Equal(t, newest.Status, requestRepo.lastStatus)
		if newest.Status == constants.StatusFinished {
			require.NotNil(t, requestRepo.completedAt)
			assert.Equal(t, newest.CreatedAt, *requestRepo.completedAt)
		} else {
			assert.Nil(t, requestRepo.completedAt)
		}
	}

	// История только росла, по записи на переход.
	assert.Len(t, statusRepo.records, len(sequence))
}
