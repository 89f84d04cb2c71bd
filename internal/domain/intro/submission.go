// internal/domain/intro/submission.go
package intro

// Submission is one inbound attempt at the template. It is created per event
// and not modified afterwards.
type Submission struct {
	RawText              string
	SubmitterID          string
	SubmitterDisplayName string
	SubmitterAvatarURL   string // optional, used as embed author icon
	GuildID              string
	SourceChannelID      string
	Grammar              Grammar
}

// Outcome records which optional steps of an accepted submission succeeded.
type Outcome struct {
	RoleGranted    bool
	AlreadyHadRole bool
	Notified       bool
	FormattedText  string
	Mirrored       int // number of mirror destinations that accepted the text
}
