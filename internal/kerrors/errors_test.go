package kerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigErrorIsMatchesKindAndField(t *testing.T) {
	cause := errors.New("illegal base64 data at input byte 4")
	err := fmt.Errorf("resolving identity: %w", CannotDecode(FieldUserKey, cause))

	assert.ErrorIs(t, err, ErrCannotDecode)
	assert.ErrorIs(t, err, &ConfigError{Kind: KindCannotDecode, Field: FieldUserKey})
	assert.NotErrorIs(t, err, &ConfigError{Kind: KindCannotDecode, Field: FieldUserCert})
	assert.NotErrorIs(t, err, ErrCannotRead)
	assert.ErrorIs(t, err, cause)

	field, ok := FieldOf(err)
	assert.True(t, ok)
	assert.Equal(t, FieldUserKey, field)
}

func TestConfigErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no context", ErrNoContext, "kube-conf: no default kubernetes context"},
		{"no cluster", ErrNoCluster, "kube-conf: no cluster definition"},
		{"no user", ErrNoUser, "kube-conf: no user definition"},
		{"determine", CannotDetermine(FieldClusterCA), "kube-conf: cannot determine cluster CA"},
		{"read", CannotRead(FieldUserCert, "/tmp/cert.pem", errors.New("no such file")), "kube-conf: cannot read user certificate (/tmp/cert.pem): no such file"},
		{"server url", &ConfigError{Kind: KindInvalidServerURL, Detail: "10.0.0.1"}, "kube-conf: invalid server URL (10.0.0.1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestTranslationErrorIs(t *testing.T) {
	err := &TranslationError{Kind: KindMethodNotSupported, Detail: "TRACE"}

	assert.ErrorIs(t, err, ErrMethodNotSupported)
	assert.NotErrorIs(t, err, ErrInvalidURI)
	assert.NotErrorIs(t, err, ErrNoContext)
	assert.Equal(t, "http method not handled by the outbound http capability (TRACE)", err.Error())

	_, ok := FieldOf(err)
	assert.False(t, ok)
}
