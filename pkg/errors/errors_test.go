// Package errors_test covers the AppError type, factory functions, and
// error-chain helpers.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tckdb/tckdb-go/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.ErrCodeInternal, "unexpected failure"},
		{"not found", errors.ErrCodeSpeciesNotFound, "species spc-1 not found"},
		{"coordinate format", errors.ErrCodeCoordFormat, "line 3 has 5 tokens"},
		{"rate limit", errors.ErrCodeTooManyRequests, "too many requests"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeMultiplicityMismatch,
		"declared %d, graph implies %d", 1, 3)
	assert.Equal(t, "declared 1, graph implies 3", ae.Message)
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeSpeciesInvalid, "record rejected")
	assert.Equal(t, "[SPC_003] record rejected", ae.Error())

	withDetail := ae.WithDetail("multiplicity: out of range")
	assert.Equal(t, "[SPC_003] record rejected: multiplicity: out of range", withDetail.Error())
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("connection refused")
	mid := fmt.Errorf("querying species: %w", root)
	ae := errors.Wrap(mid, errors.ErrCodeStorageError, "lookup failed")

	require.NotNil(t, ae)
	assert.True(t, stderrors.Is(ae, root))
	assert.Equal(t, mid, ae.Unwrap())
}

func TestWrap_UnknownCodePreservesInnerCode(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeSpeciesNotFound, "no such record")
	ae := errors.Wrap(inner, errors.CodeUnknown, "get failed")

	assert.Equal(t, errors.ErrCodeSpeciesNotFound, ae.Code)
}

func TestWithDetail_ReturnsCopy(t *testing.T) {
	t.Parallel()

	base := errors.New(errors.ErrCodeValidation, "invalid input")
	detailed := base.WithDetail("charge: out of range")

	assert.Empty(t, base.Detail)
	assert.Equal(t, "charge: out of range", detailed.Detail)
	assert.Equal(t, base.Code, detailed.Code)

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithDetail("anything"))
}

func TestWithCause_ReturnsCopy(t *testing.T) {
	t.Parallel()

	base := errors.New(errors.ErrCodeOracleUnavailable, "oracle offline")
	cause := stderrors.New("dial tcp: timeout")
	wrapped := base.WithCause(cause)

	assert.Nil(t, base.Cause)
	assert.Equal(t, cause, wrapped.Cause)
}

func TestIsCode_TraversesChain(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeNoDescriptor, "nothing to resolve")
	outer := fmt.Errorf("submitting: %w", inner)

	assert.True(t, errors.IsCode(outer, errors.ErrCodeNoDescriptor))
	assert.False(t, errors.IsCode(outer, errors.ErrCodeCoordFormat))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeNoDescriptor))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeConflict,
		errors.GetCode(errors.New(errors.ErrCodeConflict, "version clash")))
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.NotFound("gone")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeSpeciesNotFound, "gone")))
	assert.False(t, errors.IsNotFound(errors.Internal("boom")))

	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeSpeciesInvalid, "bad")))
	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeCoordFormat, "bad")))
	assert.False(t, errors.IsValidation(errors.NotFound("gone")))

	assert.True(t, errors.IsConflict(errors.Conflict("exists")))
	assert.True(t, errors.IsConflict(errors.New(errors.ErrCodeSpeciesExists, "duplicate")))
	assert.False(t, errors.IsConflict(errors.InvalidParam("bad")))
}
