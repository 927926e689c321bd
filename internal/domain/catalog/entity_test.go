package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tests := []struct {
		name     string
		pname    string
		brand    string
		price    int64
		stockMin int
		wantErr  error
	}{
		{"合法商品", "Pastillas de freno", "Bosch", 24990, 5, nil},
		{"名称为空", "  ", "Bosch", 24990, 5, ErrInvalidProductInfo},
		{"品牌为空", "Filtro de aceite", "", 24990, 5, ErrInvalidProductInfo},
		{"价格为0", "Filtro de aceite", "Mann", 0, 5, ErrInvalidPrice},
		{"安全库存为负", "Filtro de aceite", "Mann", 8990, -1, ErrInvalidStockMin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct("SKU-1", tt.pname, tt.brand, 1, tt.price, tt.stockMin, "", "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.price, p.Price)
			assert.False(t, p.CreatedAt.IsZero())
		})
	}
}

func TestProduct_IsLowStock(t *testing.T) {
	p := &Product{StockMin: 5}
	assert.True(t, p.IsLowStock(5))
	assert.True(t, p.IsLowStock(0))
	assert.False(t, p.IsLowStock(6))
}

func TestProduct_UpdatePrice(t *testing.T) {
	p := &Product{Price: 1000}
	assert.ErrorIs(t, p.UpdatePrice(0), ErrInvalidPrice)
	assert.Equal(t, int64(1000), p.Price)

	require.NoError(t, p.UpdatePrice(1500))
	assert.Equal(t, int64(1500), p.Price)
}

func TestNewBranchAndCategory(t *testing.T) {
	_, err := NewBranch(" ", "Av. Matta 123")
	assert.ErrorIs(t, err, ErrInvalidBranchInfo)

	b, err := NewBranch("Casa Matriz", " Av. Matta 123 ")
	require.NoError(t, err)
	assert.Equal(t, "Av. Matta 123", b.Address)

	_, err = NewCategory("")
	assert.ErrorIs(t, err, ErrInvalidCategoryInfo)
}
