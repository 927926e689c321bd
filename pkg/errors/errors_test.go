package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Is(t *testing.T) {
	t.Run("附带内部原因后仍可识别", func(t *testing.T) {
		cause := fmt.Errorf("deadlock")
		err := ErrInsufficientStock.WithErr(cause)

		assert.True(t, errors.Is(err, ErrInsufficientStock))
		assert.True(t, errors.Is(err, cause))
		assert.False(t, errors.Is(err, ErrInvalidParams))
	})

	t.Run("fmt包装后仍可识别", func(t *testing.T) {
		err := fmt.Errorf("checkout: %w", ErrUserNotFound)
		assert.True(t, errors.Is(err, ErrUserNotFound))
	})
}

func TestGetAppError(t *testing.T) {
	appErr := GetAppError(errors.New("boom"))
	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.EqualError(t, appErr.Err, "boom")

	wrapped := Wrap(errors.New("conn reset"), "查询订单失败")
	assert.Equal(t, ErrCodeDatabaseError, GetAppError(wrapped).Code)
	assert.True(t, IsAppError(wrapped))

	cause := errors.New("lock wait timeout")
	formatted := Wrapf(cause, "扣减库存失败(商品%d 门店%d)", 42, 1)
	assert.Equal(t, ErrCodeDatabaseError, formatted.Code)
	assert.Equal(t, "扣减库存失败(商品42 门店1)", formatted.Message)
	assert.ErrorIs(t, formatted, cause)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[int]int{
		0:                           http.StatusOK,
		ErrCodeUnauthorized:         http.StatusUnauthorized,
		ErrCodeForbidden:            http.StatusForbidden,
		ErrCodeCartNotFound:         http.StatusNotFound,
		ErrCodeEmptyCart:            http.StatusBadRequest,
		ErrCodeInsufficientStock:    http.StatusBadRequest,
		ErrCodeCartClosed:           http.StatusConflict,
		ErrCodeInvalidParams:        http.StatusBadRequest,
		ErrCodeDatabaseError:        http.StatusInternalServerError,
		ErrCodeStockReconciliation:  http.StatusInternalServerError,
		ErrCodeGatewayError:         http.StatusBadGateway,
		ErrCodeInvalidPaymentStatus: http.StatusConflict,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), "code=%d", code)
	}
}
