package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	assert.Equal(t, CodeInvalidParam, BadRequest("金额 %s 无效", "-1").Code)
	assert.Equal(t, "金额 -1 无效", BadRequest("金额 %s 无效", "-1").Message)
	assert.Equal(t, "车辆不存在", NotFound("车辆").Message)
	assert.Equal(t, CodeConflict, Conflict("重复").Code)
	assert.Equal(t, CodeForbidden, Forbidden("禁止").Code)
}

func TestWrappedErrorChain(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := fmt.Errorf("refresh: %w", Unavailable(cause, "汇率服务不可用"))

	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, CodeUnavailable, appErr.Code)
	assert.True(t, Is(err, CodeUnavailable))
	assert.False(t, Is(err, CodeNotFound))
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, Internal(cause, "导出失败").Error(), "connection refused")
}

func TestAsPlainError(t *testing.T) {
	_, ok := As(stderrors.New("plain"))
	assert.False(t, ok)
}
