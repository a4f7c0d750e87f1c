// Extensions to the go-check unittest framework used by this repository's
// test suites.
package testutil

import (
	stderrors "errors"
	"reflect"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
	. "gopkg.in/check.v1"
)

// -----------------------------------------------------------------------
// IsTrue / IsFalse checker.

type isBoolValueChecker struct {
	*CheckerInfo
	expected bool
}

func (checker *isBoolValueChecker) Check(
	params []interface{},
	names []string) (
	result bool,
	error string) {

	obtained, ok := params[0].(bool)
	if !ok {
		return false, "Argument to " + checker.Name + " must be bool"
	}

	return obtained == checker.expected, ""
}

// The IsTrue checker verifies that the obtained value is true.
//
// For example:
//
//	c.Assert(value, IsTrue)
var IsTrue Checker = &isBoolValueChecker{
	&CheckerInfo{Name: "IsTrue", Params: []string{"obtained"}},
	true,
}

// The IsFalse checker verifies that the obtained value is false.
//
// For example:
//
//	c.Assert(value, IsFalse)
var IsFalse Checker = &isBoolValueChecker{
	&CheckerInfo{Name: "IsFalse", Params: []string{"obtained"}},
	false,
}

// -----------------------------------------------------------------------
// ErrorIs checker.

type errorIsChecker struct {
	*CheckerInfo
}

func (checker *errorIsChecker) Check(
	params []interface{},
	names []string) (
	result bool,
	errMsg string) {

	if params[0] == nil {
		return params[1] == nil, ""
	}
	obtained, ok := params[0].(error)
	if !ok {
		return false, "First argument to ErrorIs must be an error"
	}
	expected, ok := params[1].(error)
	if !ok {
		return false, "Second argument to ErrorIs must be an error"
	}

	return stderrors.Is(obtained, expected), ""
}

// The ErrorIs checker verifies that the obtained error matches the expected
// sentinel per the standard library's errors.Is, traversing wrapped chains.
//
// For example:
//
//	c.Assert(err, ErrorIs, cell.ErrPoisoned)
var ErrorIs Checker = &errorIsChecker{
	&CheckerInfo{Name: "ErrorIs", Params: []string{"obtained", "expected"}},
}

// -----------------------------------------------------------------------
// DeepEqualsPretty checker.

type deepEqualsPrettyChecker struct {
	*CheckerInfo
}

func (checker *deepEqualsPrettyChecker) Check(
	params []interface{},
	names []string) (
	result bool,
	error string) {

	if reflect.DeepEqual(params[0], params[1]) {
		return true, ""
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(spew.Sdump(params[0])),
		B:        difflib.SplitLines(spew.Sdump(params[1])),
		FromFile: "obtained",
		ToFile:   "expected",
		Context:  3,
	})
	if err != nil {
		return false, "values differ (diff unavailable: " + err.Error() + ")"
	}
	return false, "values differ:\n" + diff
}

// The DeepEqualsPretty checker is reflect.DeepEqual with a unified diff of
// the two values' dumps on failure, which is considerably easier to read
// than gocheck's single-line DeepEquals output for composite values.
//
// For example:
//
//	c.Assert(obtained, DeepEqualsPretty, expected)
var DeepEqualsPretty Checker = &deepEqualsPrettyChecker{
	&CheckerInfo{Name: "DeepEqualsPretty", Params: []string{"obtained", "expected"}},
}
