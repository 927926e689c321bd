package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xiebiao/autoparts/internal/domain/user"
)

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, string, interface{}) error {
	p.calls++
	return errors.New("broker down")
}

func TestPublishQuietly(t *testing.T) {
	pub := &failingPublisher{}
	// 发布失败不panic,不返回错误
	PublishQuietly(context.Background(), pub, EventStockLow, StockLow{ProductID: 1})
	assert.Equal(t, 1, pub.calls)

	PublishQuietly(context.Background(), nil, EventStockLow, nil)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 20},
		{-1, 10, 1, 10},
		{3, 500, 3, 100},
		{2, 50, 2, 50},
	}
	for _, tt := range tests {
		p, s := NormalizePage(tt.page, tt.size)
		assert.Equal(t, tt.wantPage, p)
		assert.Equal(t, tt.wantSize, s)
	}
}

func TestActor(t *testing.T) {
	assert.True(t, SystemActor.IsSystem())
	assert.True(t, Actor{UserID: 1, Role: user.RoleAdmin}.IsAdmin())
	assert.True(t, Actor{UserID: 1, Role: user.RoleBodeguero}.IsStaff())
	assert.False(t, Actor{UserID: 1, Role: user.RoleCliente}.IsStaff())
}
