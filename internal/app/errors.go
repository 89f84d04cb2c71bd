package app

import (
	"errors"
	"fmt"
)

// Custom application-level errors for the admin service
var ErrAdminNotAuthorized = errors.New("performing member is not authorized to change intro settings")

// RoleGrantFailure classifies why a role could not be granted.
type RoleGrantFailure string

const (
	RoleNotFound       RoleGrantFailure = "role_not_found"
	RoleNotManageable  RoleGrantFailure = "role_not_manageable"
	MemberLookupFailed RoleGrantFailure = "member_lookup_failed"
	GrantFailed        RoleGrantFailure = "grant_failed"
)

// RoleGrantError is returned by RoleGranter.Grant.
type RoleGrantError struct {
	Reason   RoleGrantFailure
	GuildID  string
	MemberID string
	RoleID   string
	Err      error
}

func (e *RoleGrantError) Error() string {
	msg := fmt.Sprintf("grant role %s to member %s in guild %s: %s", e.RoleID, e.MemberID, e.GuildID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RoleGrantError) Unwrap() error { return e.Err }

// PublishFailure classifies why a notification could not be delivered.
type PublishFailure string

const (
	ChannelNotFound PublishFailure = "channel_not_found"
	ChannelNotText  PublishFailure = "channel_not_text"
	SendFailed      PublishFailure = "send_failed"
)

// PublishError is returned by NotificationPublisher.Publish.
type PublishError struct {
	Reason    PublishFailure
	ChannelID string
	Err       error
}

func (e *PublishError) Error() string {
	msg := fmt.Sprintf("publish to channel %s: %s", e.ChannelID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PublishError) Unwrap() error { return e.Err }
