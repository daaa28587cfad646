package reference_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/domain/reference"
	"paybatch/internal/infrastructure/storage/memory"
)

func newService() *reference.Service {
	store := memory.New()
	return reference.NewService(store.References(), store.Batches())
}

func TestValidateCode(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "LABSE0000118", want: "LABSE0000118"},
		{raw: " labse0000118 ", want: "LABSE0000118"},
		{raw: "LABS00000118", wantErr: true},
		{raw: "LABSE000011", wantErr: true},
		{raw: "LABSE00001189", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := reference.ValidateCode(tt.raw)
			if tt.wantErr {
				assert.True(t, apperror.IsCode(err, apperror.CodeFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextCodeAfter(t *testing.T) {
	got, err := reference.NextCodeAfter("LABSE", "")
	require.NoError(t, err)
	assert.Equal(t, "LABSE0000001", got)

	got, err = reference.NextCodeAfter("LABSE", "LABSE0000118")
	require.NoError(t, err)
	assert.Equal(t, "LABSE0000119", got)

	_, err = reference.NextCodeAfter("LABSE", "LABSE9999999")
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestService(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	ref, err := svc.Create(ctx, "labse0000118", "  Octubre  ")
	require.NoError(t, err)
	assert.Equal(t, "LABSE0000118", ref.Code)
	assert.Equal(t, "Octubre", ref.Description)
	assert.True(t, ref.Active)

	_, err = svc.Create(ctx, "LABSE0000118", "")
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicate))

	_, err = svc.Create(ctx, "LABSE0000007", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "OTHER0000500", "")
	require.NoError(t, err)

	next, err := svc.NextCode(ctx, "labse")
	require.NoError(t, err)
	assert.Equal(t, "LABSE0000119", next)

	next, err = svc.NextCode(ctx, "NEWPX")
	require.NoError(t, err)
	assert.Equal(t, "NEWPX0000001", next)

	_, err = svc.NextCode(ctx, "LAB")
	assert.True(t, apperror.IsCode(err, apperror.CodeFormat))

	byCode, err := svc.GetByCode(ctx, "labse0000118")
	require.NoError(t, err)
	assert.Equal(t, ref.ID, byCode.ID)

	off, err := svc.Deactivate(ctx, ref.ID)
	require.NoError(t, err)
	assert.False(t, off.Active)

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "LABSE0000007", all[0].Code)

	on, err := svc.Activate(ctx, ref.ID)
	require.NoError(t, err)
	assert.True(t, on.Active)

	require.NoError(t, svc.Delete(ctx, ref.ID))
	_, err = svc.Get(ctx, ref.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := reference.NewService(store.References(), store.Batches())

	ref, err := svc.Create(ctx, "LABSE0000118", "Octubre")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, ref.ID, "  Octubre, proveedores  ")
	require.NoError(t, err)
	assert.Equal(t, "LABSE0000118", updated.Code)
	assert.Equal(t, "Octubre, proveedores", updated.Description)
	assert.Equal(t, ref.Version+1, updated.Version)

	stored, err := svc.GetByCode(ctx, "LABSE0000118")
	require.NoError(t, err)
	assert.Equal(t, "Octubre, proveedores", stored.Description)
	assert.True(t, stored.Active)

	_, err = svc.Update(ctx, ref.ID, strings.Repeat("x", 256))
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	ref.Description = "stale"
	err = store.References().Update(ctx, ref)
	assert.True(t, apperror.IsConcurrentModification(err))

	_, err = svc.Update(ctx, entity.NewID(), "x")
	assert.True(t, apperror.IsNotFound(err))
}
