package services_test

import (
	"errors"
	"fmt"

	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"
)

type matchAppErrorMatcher struct {
	Expected error
}

func (m *matchAppErrorMatcher) Match(actual interface{}) (bool, error) {
	err, ok := actual.(error)
	if !ok {
		return false, fmt.Errorf("MatchAppError matcher requires an error, got:\n%s", format.Object(actual, 1))
	}
	return errors.Is(err, m.Expected), nil
}

func (m *matchAppErrorMatcher) FailureMessage(actual interface{}) string {
	return format.Message(actual, "to wrap", m.Expected.Error())
}

func (m *matchAppErrorMatcher) NegatedFailureMessage(actual interface{}) string {
	return format.Message(actual, "not to wrap", m.Expected.Error())
}

// MatchAppError succeeds when the actual error wraps expected
func MatchAppError(expected error) types.GomegaMatcher {
	return &matchAppErrorMatcher{Expected: expected}
}
