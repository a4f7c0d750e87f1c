package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
)

func TestStackTrace(t *testing.T) {
	const testMsg = "test error"
	er := New(testMsg)

	require.Equal(t, testMsg, er.GetMessage())

	if strings.Contains(er.GetStack(), "gobag/errors/errors.go") {
		t.Error("stack trace generation code should not be in the error stack trace")
	}

	if !strings.Contains(er.GetStack(), "TestStackTrace") {
		t.Error("stack trace must have test code in it")
	}

	for i, r := range er.GetStack() {
		if !(unicode.IsSpace(r) || unicode.IsPrint(r)) {
			t.Errorf("stack trace has an unexpected rune at index %v (%q)", i, r)
			break
		}
	}
}

func TestWrappedError(t *testing.T) {
	const (
		innerMsg  = "I am the inner error"
		middleMsg = "I am the middle error"
		outerMsg  = "I am the outer error"
	)
	inner := fmt.Errorf(innerMsg)
	middle := Wrap(inner, middleMsg)
	outer := Wrap(middle, outerMsg)
	errorStr := outer.Error()

	require.Contains(t, errorStr, innerMsg)
	require.Contains(t, errorStr, middleMsg)
	require.Contains(t, errorStr, outerMsg)

	// Outermost message first.
	require.True(t, strings.Index(errorStr, outerMsg) < strings.Index(errorStr, middleMsg))
	require.True(t, strings.Index(errorStr, middleMsg) < strings.Index(errorStr, innerMsg))
}

func TestStdlibUnwrap(t *testing.T) {
	sentinel := New("sentinel condition")
	wrapped := Wrapf(sentinel, "while doing %s", "something")

	require.True(t, stderrors.Is(wrapped, sentinel))
	require.False(t, stderrors.Is(wrapped, New("unrelated")))

	var traced TracedError
	require.True(t, stderrors.As(wrapped, &traced))
}

func TestRootError(t *testing.T) {
	inner := fmt.Errorf("base condition")
	outer := Wrap(Wrap(inner, "middle"), "outer")

	require.Equal(t, inner, RootError(outer))
	require.Equal(t, inner, RootError(inner))
	require.Nil(t, RootError(nil))
}

func TestIsError(t *testing.T) {
	sentinel := New("a well known failure")

	require.True(t, IsError(sentinel, sentinel))
	require.True(t, IsError(Wrap(sentinel, "context"), sentinel))
	require.False(t, IsError(New("some other failure"), sentinel))
	require.False(t, IsError(nil, sentinel))

	// String equivalence of the root error is sufficient.
	require.True(t, IsError(Wrap(fmt.Errorf("io failure"), "outer"), fmt.Errorf("io failure")))
}

func TestNewf(t *testing.T) {
	err := Newf("failure %d of %d", 2, 3)
	require.Equal(t, "failure 2 of 3", err.GetMessage())
	require.Nil(t, err.GetInner())
	require.Nil(t, err.Unwrap())
}
