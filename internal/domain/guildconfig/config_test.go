package guildconfig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	for _, k := range Keys {
		got, err := ParseKey(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKey("role_id")
	assert.True(t, errors.Is(err, ErrUnknownKey))
}

func TestWithAndGet(t *testing.T) {
	var c SubmissionConfig
	c = c.With(KeyRoleID, "123").With(KeyChannelID, "456")

	require.NotNil(t, c.Get(KeyRoleID))
	assert.Equal(t, "123", *c.Get(KeyRoleID))
	assert.Equal(t, "456", *c.RestrictedChannelID)
	assert.Nil(t, c.Get(KeyIntroNotifyChannelID))

	c = c.With(KeyRoleID, "")
	assert.Nil(t, c.RoleID, "empty value clears the key")
}
