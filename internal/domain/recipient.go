package domain

import (
	"net/mail"
	"strings"
)

type Recipient struct {
	userID        UserID
	email         string
	name          string
	alertsEnabled bool
}

func NewRecipient(userID UserID, email, name string, alertsEnabled bool) (Recipient, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Recipient{}, ErrEmptyEmail
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return Recipient{}, ErrInvalidEmail
	}

	return Recipient{
		userID:        userID,
		email:         email,
		name:          strings.TrimSpace(name),
		alertsEnabled: alertsEnabled,
	}, nil
}

func (r Recipient) UserID() UserID {
	return r.userID
}

func (r Recipient) Email() string {
	return r.email
}

// Name falls back to the email address when the user has no display name.
func (r Recipient) Name() string {
	if r.name == "" {
		return r.email
	}

	return r.name
}

func (r Recipient) AlertsEnabled() bool {
	return r.alertsEnabled
}
