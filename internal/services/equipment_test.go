package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"medequip/pkg/constants"
)

func TestProjectEquipmentStatus(t *testing.T) {
	testCases := []struct {
		name     string
		statuses []string
		expected string
	}{
		{
			name:     "без заявок оборудование рабочее",
			statuses: nil,
			expected: constants.EquipmentWorking,
		},
		{
			name:     "все заявки завершены",
			statuses: []string{constants.StatusFinished, constants.StatusFinished},
			expected: constants.EquipmentWorking,
		},
		{
			name:     "непринятая заявка важнее активных",
			statuses: []string{constants.StatusInProgress, constants.StatusNotTaken},
			expected: constants.EquipmentNotWorking,
		},
		{
			name:     "заявка в работе",
			statuses: []string{constants.StatusFinished, constants.StatusInProgress},
			expected: constants.EquipmentUnderMaintenance,
		},
		{
			name:     "ожидание запчастей",
			statuses: []string{constants.StatusWaitingSpareParts},
			expected: constants.EquipmentUnderMaintenance,
		},
		{
			name:     "единственная непринятая заявка",
			statuses: []string{constants.StatusNotTaken},
			expected: constants.EquipmentNotWorking,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ProjectEquipmentStatus(tc.statuses))
		})
	}
}
