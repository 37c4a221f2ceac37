package models

import (
	"fmt"
	"strings"
	"time"
)

// UserLevel is the console role of a [Profile].
type UserLevel string

const (
	LevelAdmin    UserLevel = "admin"
	LevelUploader UserLevel = "uploader"
	LevelViewer   UserLevel = "viewer"
)

// ParseUserLevel accepts "admin", "uploader" or "viewer" in any case.
func ParseUserLevel(s string) (UserLevel, error) {
	switch l := UserLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelAdmin, LevelUploader, LevelViewer:
		return l, nil
	default:
		return "", fmt.Errorf("unknown user level %q", s)
	}
}

// rank orders levels so that admin satisfies every check.
func (l UserLevel) rank() int {
	switch l {
	case LevelAdmin:
		return 3
	case LevelUploader:
		return 2
	case LevelViewer:
		return 1
	default:
		return 0
	}
}

// Allows reports whether l is at least required.
func (l UserLevel) Allows(required UserLevel) bool {
	return l.rank() >= required.rank() && required.rank() > 0
}

// Profile is a console user.
type Profile struct {
	record
	email       string
	displayName string
	level       UserLevel
}

// NewProfile creates a viewer-level profile.
func NewProfile(email, displayName string) *Profile {
	return &Profile{
		record:      newRecord(),
		email:       strings.TrimSpace(email),
		displayName: displayName,
		level:       LevelViewer,
	}
}

// RestoreProfile rebuilds a profile loaded from storage.
func RestoreProfile(id, email, displayName string, level UserLevel, createdAt, updatedAt time.Time) *Profile {
	return &Profile{
		record:      record{id: id, createdAt: createdAt, updatedAt: updatedAt},
		email:       email,
		displayName: displayName,
		level:       level,
	}
}

func (p *Profile) Email() string              { return p.email }
func (p *Profile) DisplayName() string        { return p.displayName }
func (p *Profile) SetDisplayName(name string) { p.displayName = name }
func (p *Profile) Level() UserLevel           { return p.level }
func (p *Profile) SetLevel(l UserLevel)       { p.level = l }

// IsAdmin reports whether the profile may manage every user's content.
func (p *Profile) IsAdmin() bool { return p.level == LevelAdmin }

// IsUploader reports whether the profile may ingest playlists and upload videos.
func (p *Profile) IsUploader() bool { return p.level.Allows(LevelUploader) }

// Validate checks the email and level.
func (p *Profile) Validate() error {
	if p.email == "" || !strings.Contains(p.email, "@") {
		return fmt.Errorf("invalid email %q", p.email)
	}
	if p.level.rank() == 0 {
		return fmt.Errorf("invalid user level %q", p.level)
	}
	return nil
}
