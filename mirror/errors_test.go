package mirror_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/mirrormaker/mirror"
)

func respWithStatus(code int) *http.Response {
	return &http.Response{StatusCode: code}
}

func TestFromResponse_nil_error(t *testing.T) {
	t.Parallel()

	assert.NoError(t, mirror.FromResponse(
		"op", "res", respWithStatus(200), nil,
	))
}

func TestFromResponse_statuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		kind   mirror.Kind
	}{
		{http.StatusUnauthorized, mirror.KindAuth},
		{http.StatusForbidden, mirror.KindAuth},
		{http.StatusNotFound, mirror.KindNotFound},
		{http.StatusConflict, mirror.KindConflict},
		{
			http.StatusUnprocessableEntity,
			mirror.KindConflict,
		},
		{
			http.StatusInternalServerError,
			mirror.KindNetwork,
		},
		{http.StatusBadGateway, mirror.KindNetwork},
		{http.StatusTeapot, mirror.KindUnknown},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			t.Parallel()

			err := mirror.FromResponse(
				"op",
				"res",
				respWithStatus(tc.status),
				errors.New("boom"),
			)

			require.Error(t, err)
			assert.Equal(t, tc.kind, mirror.KindOf(err))
		})
	}
}

func TestFromResponse_transport_failure(t *testing.T) {
	t.Parallel()

	cause := &url.Error{
		Op:  "Get",
		URL: "https://gitlab.example.com",
		Err: errors.New("connection refused"),
	}

	err := mirror.FromResponse("op", "res", nil, cause)

	assert.True(t, mirror.IsNetwork(err))
	assert.ErrorIs(t, err, cause)
}

func TestFromResponse_nil_response_unknown(t *testing.T) {
	t.Parallel()

	err := mirror.FromResponse(
		"op", "res", nil, errors.New("boom"),
	)

	assert.Equal(t, mirror.KindUnknown, mirror.KindOf(err))
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	auth := mirror.FromResponse(
		"op", "res",
		respWithStatus(http.StatusUnauthorized),
		errors.New("bad token"),
	)

	assert.True(t, mirror.IsAuth(auth))
	assert.False(t, mirror.IsNotFound(auth))
	assert.False(t, mirror.IsConflict(auth))
	assert.False(t, mirror.IsAuth(errors.New("plain")))
}

func TestError_message(t *testing.T) {
	t.Parallel()

	err := mirror.FromResponse(
		"creating github repository",
		"widget",
		respWithStatus(http.StatusConflict),
		errors.New("name already exists"),
	)

	assert.ErrorContains(
		t, err, "creating github repository",
	)
	assert.ErrorContains(t, err, "widget")
	assert.ErrorContains(t, err, "conflict")
}
