package migration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Tally(t *testing.T) {
	r := NewReport(EntityProduct)
	r.Stats.Total = 4

	r.RecordCreated()
	r.RecordSkipped()
	r.RecordFailed(42, "Blue Hoodie", NewValidationError("product", "name", "is required"))
	r.RecordFailed(43, "", errors.New("boom"))
	r.Complete()

	assert.Equal(t, 1, r.Stats.Succeeded)
	assert.Equal(t, 1, r.Stats.Skipped)
	assert.Equal(t, 2, r.Stats.Failed)
	assert.Equal(t, 4, r.Stats.Processed())
	assert.False(t, r.CompletedAt.IsZero())

	require.Len(t, r.Failures, 2)
	assert.Equal(t, int64(42), r.Failures[0].SourceID)
	assert.Equal(t, ErrCodeMigrateValidation, r.Failures[0].Code)
	assert.Empty(t, r.Failures[1].Code)
}

func TestReport_Warnings(t *testing.T) {
	r := NewReport(EntityCategory)
	r.AddWarning(Warnf(EntityCategory, 7, "depth %d exceeds maximum %d, excluded", 6, 5))
	r.AddWarnings([]Warning{
		{Entity: EntityCategory, Message: "no source categories found"},
	})

	require.Len(t, r.Warnings, 2)
	assert.Contains(t, r.Warnings[0].Message, "depth 6")
	assert.Contains(t, r.Warnings[0].String(), "category 7:")
	assert.NotContains(t, r.Warnings[1].String(), "0:")
}

func TestEntityType_IsValid(t *testing.T) {
	assert.True(t, EntityCategory.IsValid())
	assert.True(t, EntityProduct.IsValid())
	assert.True(t, EntityCustomer.IsValid())
	assert.False(t, EntityType("order").IsValid())
}
