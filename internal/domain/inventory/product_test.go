package inventory

import (
	"testing"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid inputs", func(t *testing.T) {
		tenantID := uuid.New()

		product, err := NewProduct(tenantID, "Paracetamol 500mg", "6161100123456", "PARA-500")

		require.NoError(t, err)
		assert.Equal(t, tenantID, product.TenantID)
		assert.Equal(t, "Paracetamol 500mg", product.Name)
		assert.Equal(t, "6161100123456", product.Barcode)
		assert.Equal(t, "PARA-500", product.SKU)
		assert.True(t, product.IsActive)
		assert.NotEqual(t, uuid.Nil, product.ID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProduct(uuid.New(), "", "6161100123456", "")
		assert.True(t, shared.IsDomainErrorCode(err, "INVALID_NAME"))
	})

	t.Run("rejects empty barcode", func(t *testing.T) {
		_, err := NewProduct(uuid.New(), "Paracetamol 500mg", "", "")
		assert.True(t, shared.IsDomainErrorCode(err, "INVALID_BARCODE"))
	})
}

func TestProduct_Deactivate(t *testing.T) {
	t.Run("retires an active product", func(t *testing.T) {
		product, err := NewProduct(uuid.New(), "Paracetamol 500mg", "6161100123456", "")
		require.NoError(t, err)

		require.NoError(t, product.Deactivate())

		assert.False(t, product.IsActive)
	})

	t.Run("deactivating twice is rejected", func(t *testing.T) {
		product, err := NewProduct(uuid.New(), "Paracetamol 500mg", "6161100123456", "")
		require.NoError(t, err)
		require.NoError(t, product.Deactivate())

		err = product.Deactivate()
		assert.True(t, shared.IsDomainErrorCode(err, "INVALID_STATE"))
	})
}
