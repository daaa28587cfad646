package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybatch/internal/domain/batch"
	"paybatch/internal/domain/checkrange"
)

func TestExtractDBColumns_EmbeddedBase(t *testing.T) {
	cols := ExtractDBColumns[checkrange.NumberRange]()

	assert.Equal(t, []string{
		"id", "version", "created_at", "updated_at",
		"category", "priority", "range_start", "range_end", "next_number", "active",
	}, cols)
}

func TestExtractDBColumns_SkipsIgnoredFields(t *testing.T) {
	cols := ExtractDBColumns[batch.Batch]()

	assert.Contains(t, cols, "sequence_number")
	assert.Contains(t, cols, "total")
	assert.NotContains(t, cols, "items")
	assert.NotContains(t, cols, "-")
}

func TestStructToMap(t *testing.T) {
	r := checkrange.NewNumberRange(checkrange.CategoryCommon, 1, 91181244, 91181443)

	m := StructToMap(r)

	require.NotNil(t, m)
	assert.Equal(t, r.ID, m["id"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, checkrange.CategoryCommon, m["category"])
	assert.Equal(t, int64(91181244), m["range_start"])
	assert.Equal(t, int64(91181244), m["next_number"])
	assert.Equal(t, true, m["active"])
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}

func TestWithoutAndPick(t *testing.T) {
	cols := []string{"id", "version", "name"}

	assert.Equal(t, []string{"name"}, Without(cols, "id", "version"))
	assert.Equal(t, []string{"id", "version", "name"}, cols)

	data := map[string]any{"id": 1, "version": 2, "name": "x", "extra": true}
	assert.Equal(t, map[string]any{"id": 1, "name": "x"}, Pick(data, []string{"id", "name", "missing"}))
}
