package repositories

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"medequip/pkg/constants"
)

func TestStatusRankCase(t *testing.T) {
	expr := statusRankCase()

	// Каждый статус попадает в выражение со своим рангом из constants.StatusRank.
	for status, rank := range constants.StatusRank {
		assert.Contains(t, expr, fmt.Sprintf("WHEN '%s' THEN %d", status, rank))
	}

	assert.Equal(t,
		"CASE rr.last_status"+
			" WHEN 'not_taken' THEN 0"+
			" WHEN 'in_progress' THEN 1"+
			" WHEN 'waiting_spare_parts' THEN 2"+
			" WHEN 'finished' THEN 3"+
			" END",
		expr)
}
