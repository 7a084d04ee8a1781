package service

import (
	"testing"

	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *EndpointRegistry {
	t.Helper()
	r := NewEndpointRegistry()
	for _, name := range []string{"classes", "orgs", "users"} {
		require.NoError(t, r.Register(domain.ModeTables, domain.Endpoint{Name: name}))
	}
	require.NoError(t, r.Register(domain.ModeEnvelopes, domain.Endpoint{Name: "academicSessions", ResponseProperty: "academicSessions"}))
	return r
}

func TestEndpointRegistry_RegisterRejectsDuplicatesAndEmpty(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Register(domain.ModeTables, domain.Endpoint{Name: "ORGS"})
	assert.True(t, errors.Is(err, errors.CodeConfigValidation))

	err = r.Register(domain.ModeTables, domain.Endpoint{})
	assert.True(t, errors.Is(err, errors.CodeConfigValidation))

	// same name in another mode is fine
	assert.NoError(t, r.Register(domain.ModeEnvelopes, domain.Endpoint{Name: "orgs"}))
}

func TestEndpointRegistry_SelectKeepsOrder(t *testing.T) {
	r := newTestRegistry(t)

	eps, err := r.Select(domain.ModeTables, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"classes", "orgs", "users"}, []string{eps[0].Name, eps[1].Name, eps[2].Name})

	eps, err = r.Select(domain.ModeEnvelopes, "academicsessions")
	require.NoError(t, err)
	require.Len(t, eps, 1)
	assert.Equal(t, "academicSessions", eps[0].Name)
}

func TestEndpointRegistry_UnknownEndpointIsUserFacing(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Select(domain.ModeTables, "teachers")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeInvalidArgument))
	msg, suggestion, userFacing := errors.GetUserFacingMessage(err)
	assert.True(t, userFacing)
	assert.Contains(t, msg, "teachers")
	assert.Equal(t, "Available endpoints: classes, orgs, users", suggestion)
}

func TestEndpointRegistry_EmptyMode(t *testing.T) {
	_, err := NewEndpointRegistry().Select(domain.ModeTables, "")
	assert.True(t, errors.Is(err, errors.CodeConfigValidation))
}
