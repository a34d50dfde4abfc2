package webhook

import (
	"context"

	"github.com/ManuelReschke/CreatorHub/app/repository"
)

// UserContacts resolves subscriber addresses from the user table.
type UserContacts struct {
	users repository.UserRepository
}

func NewUserContacts(users repository.UserRepository) *UserContacts {
	return &UserContacts{users: users}
}

func (c *UserContacts) Contact(ctx context.Context, userID string) (string, string, error) {
	user, err := c.users.GetByExternalID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return user.Email, user.Name, nil
}
