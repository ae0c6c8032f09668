package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{&ConfigurationError{Message: "missing"}, "configuration"},
		{fmt.Errorf("fetch: %w", &AuthError{Message: "denied"}), "auth"},
		{&UpstreamDataError{Message: "boom"}, "upstream_data"},
		{&ValidationError{Message: "bad"}, "validation"},
		{&DeliveryError{OrderID: "1_2", StatusCode: 500}, "delivery"},
		{errors.New("plain"), "unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, KindOf(tc.err), tc.err.Error())
	}
}

func TestDeliveryErrorMessage(t *testing.T) {
	err := &DeliveryError{OrderID: "1_2", StatusCode: 500, Message: "fail"}
	assert.Equal(t, "dispatch webhook failed for order 1_2 (status 500): fail", err.Error())

	err = &DeliveryError{OrderID: "1_2", Message: "connection refused"}
	assert.Contains(t, err.Error(), "(status n/a)")
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(&ValidationError{}))
	assert.True(t, IsClientError(fmt.Errorf("dispatch: %w", &DeliveryError{})))
	assert.False(t, IsClientError(&ConfigurationError{}))
}
