package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/utils"
)

type fakeUsers struct {
	byEmail map[string]model.User
	hash    string
	expires time.Time
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) SetResetToken(_ context.Context, _ uint64, tokenHash string, expiresAt time.Time) error {
	f.hash, f.expires = tokenHash, expiresAt
	return nil
}

func TestIssueResetToken(t *testing.T) {
	users := &fakeUsers{byEmail: map[string]model.User{"ann@example.com": {ID: 3, Email: "ann@example.com"}}}
	now := time.Date(2025, 5, 29, 12, 0, 0, 0, time.UTC)

	raw, exp, err := issueResetToken(context.Background(), users, " Ann@Example.com ", time.Hour, now)
	require.NoError(t, err)

	assert.Len(t, raw, 64)
	assert.Equal(t, utils.HashToken(raw), users.hash)
	assert.Equal(t, now.Add(time.Hour), exp)
	assert.Equal(t, exp, users.expires)
}

func TestIssueResetTokenUnknownEmail(t *testing.T) {
	_, _, err := issueResetToken(context.Background(), &fakeUsers{}, "nobody@example.com", time.Hour, time.Now())
	assert.EqualError(t, err, "no account with email nobody@example.com")
}

func TestCreateAdminRejectsShortPassword(t *testing.T) {
	cmd := createAdminCmd()
	cmd.SetArgs([]string{"--email", "ops@example.com", "--password", "short"})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	assert.EqualError(t, cmd.Execute(), "password must be 8 to 72 characters")
}
