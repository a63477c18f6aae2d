package validators

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/twittor/backend/internal/models"
)

func TestValidate_RegisterForm(t *testing.T) {
	v := NewValidator()

	ok := models.RegisterForm{Username: "alice_1", Email: "alice@example.com", Password: "password1", Password2: "password1"}
	assert.NoError(t, v.Validate(&ok))

	tests := []struct {
		name  string
		form  models.RegisterForm
		field string
	}{
		{"missing username", models.RegisterForm{Email: "a@b.co", Password: "password1", Password2: "password1"}, "username"},
		{"bad username chars", models.RegisterForm{Username: "al ice", Email: "a@b.co", Password: "password1", Password2: "password1"}, "username"},
		{"bad email", models.RegisterForm{Username: "alice", Email: "nope", Password: "password1", Password2: "password1"}, "email"},
		{"short password", models.RegisterForm{Username: "alice", Email: "a@b.co", Password: "short", Password2: "short"}, "password"},
		{"mismatch", models.RegisterForm{Username: "alice", Email: "a@b.co", Password: "password1", Password2: "password2"}, "password2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.form)
			require.Error(t, err)
			fields := FieldErrors(err)
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidate_TweetLength(t *testing.T) {
	v := NewValidator()

	body := make([]byte, 141)
	for i := range body {
		body[i] = 'x'
	}
	err := v.Validate(&models.TweetForm{Tweet: string(body)})
	require.Error(t, err)
	assert.Equal(t, "Field cannot be longer than 140 characters.", FieldErrors(err)["tweet"])

	assert.NoError(t, v.Validate(&models.TweetForm{Tweet: string(body[:140])}))
	assert.Error(t, v.Validate(&models.TweetForm{Tweet: ""}))
}

func TestFieldErrors_NonValidation(t *testing.T) {
	assert.Nil(t, FieldErrors(errors.New("boom")))
	assert.Nil(t, FieldErrors(nil))
}
