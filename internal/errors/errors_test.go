package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"optiscope/domain/core"
)

func TestWrap_DerivesCodeFromDomainError(t *testing.T) {
	err := Wrap(core.NewMissingColumnError("profit", []string{"a"}), "analysis failed")
	assert.Equal(t, CodeMissingColumn, GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrMissingColumn))

	err = Wrap(fmt.Errorf("open: %w", core.ErrUnsupportedFormat), "load failed")
	assert.Equal(t, CodeUnsupportedFormat, GetCode(err))

	err = Wrap(core.NewInvalidThresholdError("top_n", "must be positive"), "bad request")
	assert.Equal(t, CodeInvalidInput, GetCode(err))

	err = Wrap(core.NewMalformedValueError("Profit", 4, "n/a"), "bad cell")
	assert.Equal(t, CodeInvalidInput, GetCode(err))

	err = Wrap(stderrors.New("disk full"), "write failed")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, "write failed: disk full", err.Error())
}

func TestWrap_KeepsAppErrorCode(t *testing.T) {
	inner := ConfigInvalid("PORT is empty")
	err := Wrapf(inner, "loading %s", "server")
	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Equal(t, "loading server: PORT is empty", err.Error())
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))
	assert.Nil(t, Wrapf(nil, "x %d", 1))
	assert.Nil(t, WithCode(CodeBusy, nil))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeBusy, stderrors.New("queue full"))
	assert.Equal(t, CodeBusy, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}
