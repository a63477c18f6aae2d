package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/repositories"
	"github.com/anonto42/twittor/backend/internal/testutil"
	"github.com/anonto42/twittor/backend/internal/token"
	"github.com/anonto42/twittor/backend/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://localhost:5000"

type fixture struct {
	users   *repositories.PostgresUserRepository
	posts   *repositories.PostgresPostRepository
	follows *repositories.PostgresFollowRepository
	auth    *AuthService
	feed    *FeedService
	social  *SocialService
	account *AccountService
	signer  *token.Signer
	mail    *testutil.RecordingMailer
	log     *testutil.RecordingLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	emails, err := views.NewEmails()
	require.NoError(t, err)

	f := &fixture{
		users:   repositories.NewPostgresUserRepository(db),
		posts:   repositories.NewPostgresPostRepository(db),
		follows: repositories.NewPostgresFollowRepository(db),
		signer:  token.NewSigner("test-secret", time.Hour),
		mail:    &testutil.RecordingMailer{},
		log:     &testutil.RecordingLog{},
	}
	f.auth = NewAuthService(f.users)
	f.feed = NewFeedService(f.posts, f.users, 3)
	f.social = NewSocialService(f.follows, f.users, f.posts)
	f.account = NewAccountService(f.users, f.signer, f.mail, emails, AccountOptions{BaseURL: testBaseURL + "/"}).
		WithDeliveryLog(f.log)
	return f
}

func (f *fixture) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), models.RegisterForm{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "secret-pass",
		Password2: "secret-pass",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) post(t *testing.T, user *models.User, body string) *models.Post {
	t.Helper()
	post, err := f.feed.CreatePost(context.Background(), user.ID, body)
	require.NoError(t, err)
	return post
}

// tokenFrom extracts the token that follows prefix in an email body.
func tokenFrom(t *testing.T, body, prefix string) string {
	t.Helper()
	i := strings.Index(body, prefix)
	require.GreaterOrEqual(t, i, 0, "link %q not found in %q", prefix, body)
	rest := body[i+len(prefix):]
	end := strings.IndexAny(rest, " \n\r\t\"<")
	if end < 0 {
		end = len(rest)
	}
	return rest[:end]
}

func TestAuthService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.register(t, "alice")
	assert.NotZero(t, user.ID)
	assert.False(t, user.IsActivated)
	assert.NotEqual(t, "secret-pass", user.PasswordHash)
	assert.True(t, user.CheckPassword("secret-pass"))

	tests := []struct {
		name  string
		form  models.RegisterForm
		field string
		msg   string
	}{
		{
			name:  "username taken",
			form:  models.RegisterForm{Username: "alice", Email: "other@example.com", Password: "secret-pass"},
			field: "username",
			msg:   "Username already taken",
		},
		{
			name:  "email taken",
			form:  models.RegisterForm{Username: "alice2", Email: "alice@example.com", Password: "secret-pass"},
			field: "email",
			msg:   "Email already registered",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, tt.form)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Field)
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}
}

// racingUserRepo hides existing rows from the availability check until Create
// runs, which is what a concurrent signup for the same name looks like.
type racingUserRepo struct {
	*repositories.PostgresUserRepository
	blind     bool
	createErr error
}

func (r *racingUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if r.blind {
		return false, nil
	}
	return r.PostgresUserRepository.ExistsByUsername(ctx, username)
}

func (r *racingUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if r.blind {
		return false, nil
	}
	return r.PostgresUserRepository.ExistsByEmail(ctx, email)
}

func (r *racingUserRepo) Create(ctx context.Context, user *models.User) error {
	r.blind = false
	if r.createErr != nil {
		return r.createErr
	}
	return r.PostgresUserRepository.Create(ctx, user)
}

func TestAuthService_RegisterRace(t *testing.T) {
	tests := []struct {
		name      string
		form      models.RegisterForm
		createErr error
		field     string
		msg       string
	}{
		{
			name:  "username inserted concurrently",
			form:  models.RegisterForm{Username: "alice", Email: "other@example.com", Password: "secret-pass"},
			field: "username",
			msg:   "Username already taken",
		},
		{
			name:  "email inserted concurrently",
			form:  models.RegisterForm{Username: "alice2", Email: "alice@example.com", Password: "secret-pass"},
			field: "email",
			msg:   "Email already registered",
		},
		{
			name:      "conflict gone by the recheck",
			form:      models.RegisterForm{Username: "bob", Email: "bob@example.com", Password: "secret-pass"},
			createErr: repositories.ErrDuplicateUser,
			msg:       "Username or email already registered",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.register(t, "alice")
			auth := NewAuthService(&racingUserRepo{PostgresUserRepository: f.users, blind: true, createErr: tt.createErr})

			user, err := auth.Register(context.Background(), tt.form)
			assert.Nil(t, user)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Field)
			assert.Equal(t, tt.msg, appErr.Message)

			taken, err := f.users.ExistsByUsername(context.Background(), tt.form.Username)
			require.NoError(t, err)
			assert.Equal(t, tt.form.Username == "alice", taken, "no row is written by a failed signup")
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	user, err := f.auth.Authenticate(ctx, "alice", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	_, err = f.auth.Authenticate(ctx, "alice", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Authenticate(ctx, "nobody", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFeedService_CreatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	post := f.post(t, alice, "  hello world  ")
	assert.Equal(t, "hello world", post.Body)

	_, err := f.feed.CreatePost(ctx, alice.ID, strings.Repeat("é", 140))
	assert.NoError(t, err, "140 characters is the limit, not 140 bytes")

	_, err = f.feed.CreatePost(ctx, alice.ID, strings.Repeat("a", 141))
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = f.feed.CreatePost(ctx, alice.ID, "   ")
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestFeedService_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	for i := 1; i <= 7; i++ {
		f.post(t, alice, fmt.Sprintf("post %d", i))
	}

	first, err := f.feed.ExploreFeed(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, int64(7), first.Total)
	assert.False(t, first.HasPrev)
	assert.True(t, first.HasNext)
	assert.Equal(t, 2, first.NextPage)
	require.Len(t, first.Posts, 3)
	assert.Equal(t, "post 7", first.Posts[0].Body, "newest first")
	assert.Equal(t, "alice", first.Posts[0].Author.Username)

	last, err := f.feed.ExploreFeed(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, last.Posts, 1)
	assert.True(t, last.HasPrev)
	assert.Equal(t, 2, last.PrevPage)
	assert.False(t, last.HasNext)
	assert.Zero(t, last.NextPage)

	beyond, err := f.feed.ExploreFeed(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, beyond.Posts)
	assert.False(t, beyond.HasNext)
}

func TestFeedService_HugePageIsPastTheEnd(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	for i := 0; i < 5; i++ {
		f.post(t, alice, "tick")
	}

	for _, page := range []int{4000000000000000000, math.MaxInt} {
		feed, err := f.feed.ExploreFeed(context.Background(), page)
		require.NoError(t, err)
		assert.Empty(t, feed.Posts, "page %d", page)
		assert.False(t, feed.HasNext, "page %d", page)
		assert.Zero(t, feed.NextPage)
		assert.True(t, feed.HasPrev)
		assert.Equal(t, int64(5), feed.Total)
	}
}

func TestFeedService_ExactPageBoundary(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	for i := 0; i < 6; i++ {
		f.post(t, alice, "tick")
	}

	second, err := f.feed.ExploreFeed(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, second.Posts, 3)
	assert.False(t, second.HasNext)
}

func TestFeedService_HomeFeedIncludesFollowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")

	f.post(t, alice, "from alice")
	f.post(t, bob, "from bob")
	f.post(t, carol, "from carol")

	_, err := f.social.Follow(ctx, alice.ID, "bob")
	require.NoError(t, err)

	home, err := f.feed.HomeFeed(ctx, alice.ID, 1)
	require.NoError(t, err)
	bodies := make([]string, 0, len(home.Posts))
	for _, p := range home.Posts {
		bodies = append(bodies, p.Body)
	}
	assert.ElementsMatch(t, []string{"from alice", "from bob"}, bodies)
	assert.Equal(t, int64(2), home.Total)
}

func TestFeedService_ProfileFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	f.post(t, alice, "mine")
	f.post(t, bob, "not mine")

	user, feed, err := f.feed.ProfileFeed(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, "mine", feed.Posts[0].Body)

	_, _, err = f.feed.ProfileFeed(ctx, "ghost", 1)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestSocialService_FollowUnfollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	for i := 0; i < 2; i++ {
		target, err := f.social.Follow(ctx, alice.ID, "bob")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, target.ID)
	}

	stats, err := f.social.Stats(ctx, alice.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Followers, "following twice keeps a single edge")
	assert.True(t, stats.IsFollowing)

	mine, err := f.social.Stats(ctx, alice.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Following)
	assert.False(t, mine.IsFollowing)

	for i := 0; i < 2; i++ {
		_, err = f.social.Unfollow(ctx, alice.ID, "bob")
		require.NoError(t, err)
	}
	stats, err = f.social.Stats(ctx, alice.ID, bob)
	require.NoError(t, err)
	assert.Zero(t, stats.Followers)
	assert.False(t, stats.IsFollowing)

	anon, err := f.social.Stats(ctx, 0, bob)
	require.NoError(t, err)
	assert.False(t, anon.IsFollowing)
}

func TestSocialService_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	_, err := f.social.Follow(ctx, alice.ID, "alice")
	assert.ErrorIs(t, err, ErrSelfFollow)

	_, err = f.social.Unfollow(ctx, alice.ID, "alice")
	assert.ErrorIs(t, err, ErrSelfFollow)

	_, err = f.social.Follow(ctx, alice.ID, "ghost")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestAccountService_Activation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	require.NoError(t, f.account.SendActivation(ctx, alice))
	msg := f.mail.Last()
	assert.Equal(t, []string{"alice@example.com"}, msg.Recipients)
	assert.Equal(t, "[twittor] Activate your account", msg.Subject)
	assert.NotEmpty(t, msg.HTMLBody)

	tok := tokenFrom(t, msg.TextBody, testBaseURL+"/user_activate/")

	// an activation token must not reset a password
	reset, err := f.account.ResetPassword(ctx, tok, "new-password")
	require.NoError(t, err)
	assert.Nil(t, reset)

	activated, err := f.account.Activate(ctx, tok)
	require.NoError(t, err)
	require.NotNil(t, activated)
	assert.True(t, activated.IsActivated)

	stored, err := f.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActivated)

	bad, err := f.account.Activate(ctx, tok+"x")
	require.NoError(t, err)
	assert.Nil(t, bad)

	require.Len(t, f.log.Deliveries, 1)
	assert.Equal(t, EmailKindActivate, f.log.Deliveries[0].Kind)
	assert.NoError(t, f.log.Deliveries[0].Err)
}

func TestAccountService_PasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	require.NoError(t, f.account.RequestPasswordReset(ctx, "nobody@example.com"))
	assert.Empty(t, f.mail.Sent(), "unknown addresses send nothing")

	require.NoError(t, f.account.RequestPasswordReset(ctx, " alice@example.com "))
	msg := f.mail.Last()
	assert.Equal(t, "[twittor] Reset your password", msg.Subject)
	assert.Contains(t, msg.TextBody, testBaseURL+"/reset_password_request")
	tok := tokenFrom(t, msg.TextBody, testBaseURL+"/password_reset/")

	activated, err := f.account.Activate(ctx, tok)
	require.NoError(t, err)
	assert.Nil(t, activated, "a reset token must not activate")

	user, err := f.account.ResetPassword(ctx, tok, "brand-new-pass")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, alice.ID, user.ID)

	_, err = f.auth.Authenticate(ctx, "alice", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Authenticate(ctx, "alice", "brand-new-pass")
	assert.NoError(t, err)
}

func TestAccountService_MailFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	f.mail.Err = errors.New("smtp down")
	f.log.Err = errors.New("mongo down")
	assert.NoError(t, f.account.SendActivation(ctx, alice))

	require.Len(t, f.log.Deliveries, 1)
	assert.EqualError(t, f.log.Deliveries[0].Err, "smtp down")
}

func TestAccountService_TokenForDeletedUser(t *testing.T) {
	f := newFixture(t)
	tok, err := f.signer.Issue(999, token.PurposeActivate)
	require.NoError(t, err)

	user, err := f.account.VerifyToken(context.Background(), tok, token.PurposeActivate)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestAccountService_UpdateProfileAndActivateByUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	require.NoError(t, f.account.UpdateProfile(ctx, alice.ID, "  hi there  "))
	stored, err := f.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi there", stored.AboutMe)

	err = f.account.UpdateProfile(ctx, alice.ID, strings.Repeat("x", 141))
	assert.True(t, models.IsCode(err, models.CodeValidation))

	user, err := f.account.ActivateByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, user.IsActivated)

	_, err = f.account.ActivateByUsername(ctx, "ghost")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

// alice and bob sign up, bob posts, alice follows bob and sees his tweet at home,
// then unfollows and it disappears again.
func TestScenario_FollowTimeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	f.post(t, bob, "hi from bob")

	home, err := f.feed.HomeFeed(ctx, alice.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, home.Posts)

	_, err = f.social.Follow(ctx, alice.ID, "bob")
	require.NoError(t, err)
	home, err = f.feed.HomeFeed(ctx, alice.ID, 1)
	require.NoError(t, err)
	require.Len(t, home.Posts, 1)
	assert.Equal(t, bob.ID, home.Posts[0].UserID)

	_, err = f.social.Unfollow(ctx, alice.ID, "bob")
	require.NoError(t, err)
	home, err = f.feed.HomeFeed(ctx, alice.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, home.Posts)
}
