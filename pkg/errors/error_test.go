package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewAndCode() {
	err := New(ErrCodeOrderFailed, "order rejected")

	suite.Equal("[600] order rejected", err.Error())
	suite.Equal(ErrCodeOrderFailed, GetCode(err))
	suite.True(HasCode(err, ErrCodeOrderFailed))
	suite.False(HasCode(err, ErrCodeUnknown))
}

func (suite *ErrorTestSuite) TestWrapPreservesCause() {
	cause := fmt.Errorf("connection reset")
	err := Wrap(ErrCodeFetchFailed, "fetch failed", cause)

	suite.Contains(err.Error(), "connection reset")
	suite.Equal(cause, err.Unwrap())
	suite.True(HasCode(err, ErrCodeFetchFailed))
}

func (suite *ErrorTestSuite) TestGetCodeOnWrappedChain() {
	inner := New(ErrCodeCloseNotFound, "no close for ACME")
	outer := fmt.Errorf("evaluating candidate: %w", inner)

	suite.Equal(ErrCodeCloseNotFound, GetCode(outer))
}

func (suite *ErrorTestSuite) TestGetCodeOnForeignError() {
	suite.Equal(ErrCodeUnknown, GetCode(fmt.Errorf("plain error")))
}

func (suite *ErrorTestSuite) TestIsTransient() {
	suite.True(IsTransient(New(ErrCodeFetchFailed, "")))
	suite.True(IsTransient(New(ErrCodeClockUnavailable, "")))
	suite.False(IsTransient(New(ErrCodeCloseNotFound, "")))
	suite.False(IsTransient(New(ErrCodeOrderFailed, "")))
}

func (suite *ErrorTestSuite) TestIsFatal() {
	suite.True(IsFatal(New(ErrCodeSessionInitFailed, "")))
	suite.True(IsFatal(New(ErrCodeCatalogLoadFailed, "")))
	suite.False(IsFatal(New(ErrCodeInvalidPhase, "")))
	suite.False(IsFatal(New(ErrCodeFetchFailed, "")))
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataErrorf(26, 10, "ACME", "need %d bars, have %d", 26, 10)

	suite.Equal("need 26 bars, have 10", err.Error())
	suite.True(IsInsufficientDataError(fmt.Errorf("wrapped: %w", err)))
	suite.False(IsInsufficientDataError(fmt.Errorf("plain")))
}
