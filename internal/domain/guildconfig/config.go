// internal/domain/guildconfig/config.go
package guildconfig

import (
	"errors"
	"fmt"
)

// Key names a settable field of a guild's submission config.
type Key string

const (
	KeyRoleID               Key = "roleId"
	KeyIntroNotifyChannelID Key = "introNotifyChannelId"
	KeyChannelID            Key = "channelId" // restricted source channel
)

// Keys lists every settable key in display order.
var Keys = []Key{KeyRoleID, KeyIntroNotifyChannelID, KeyChannelID}

var ErrUnknownKey = errors.New("unknown config key")

// ParseKey validates a user-supplied key name.
func ParseKey(s string) (Key, error) {
	for _, k := range Keys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// SubmissionConfig is a guild's intro settings. A nil field is unset and
// disables the pipeline step that depends on it.
type SubmissionConfig struct {
	RoleID               *string
	IntroNotifyChannelID *string
	RestrictedChannelID  *string
}

// Get returns the value stored under k, or nil when unset.
func (c SubmissionConfig) Get(k Key) *string {
	switch k {
	case KeyRoleID:
		return c.RoleID
	case KeyIntroNotifyChannelID:
		return c.IntroNotifyChannelID
	case KeyChannelID:
		return c.RestrictedChannelID
	}
	return nil
}

// With returns a copy of c with k set to value. An empty value clears the field.
func (c SubmissionConfig) With(k Key, value string) SubmissionConfig {
	var v *string
	if value != "" {
		v = &value
	}
	switch k {
	case KeyRoleID:
		c.RoleID = v
	case KeyIntroNotifyChannelID:
		c.IntroNotifyChannelID = v
	case KeyChannelID:
		c.RestrictedChannelID = v
	}
	return c
}
