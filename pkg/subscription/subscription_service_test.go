package subscription_test

import (
	"context"
	"testing"

	"foodgram-api/domain"
	"foodgram-api/entities"
	"foodgram-api/pkg/recipe"
	"foodgram-api/pkg/subscription"
	"foodgram-api/pkg/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSubscriptionRepo struct {
	// subscriber -> author id set, plus insertion order per subscriber.
	memberships map[string]map[string]bool
	order       map[string][]string
	authors     map[string]*entities.User
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{
		memberships: map[string]map[string]bool{},
		order:       map[string][]string{},
		authors:     map[string]*entities.User{},
	}
}

func (f *fakeSubscriptionRepo) CreateSubscription(_ context.Context, s *entities.Subscription) error {
	subscriberID := s.SubscriberID.String()
	authorID := s.AuthorID.String()
	if f.memberships[subscriberID][authorID] {
		return gorm.ErrDuplicatedKey
	}
	if f.memberships[subscriberID] == nil {
		f.memberships[subscriberID] = map[string]bool{}
	}
	f.memberships[subscriberID][authorID] = true
	f.order[subscriberID] = append(f.order[subscriberID], authorID)
	return nil
}

func (f *fakeSubscriptionRepo) DeleteSubscription(_ context.Context, subscriberID, authorID string) (int64, error) {
	if !f.memberships[subscriberID][authorID] {
		return 0, nil
	}
	delete(f.memberships[subscriberID], authorID)
	return 1, nil
}

func (f *fakeSubscriptionRepo) IsSubscribed(_ context.Context, subscriberID, authorID string) (bool, error) {
	return f.memberships[subscriberID][authorID], nil
}

func (f *fakeSubscriptionRepo) GetSubscribedAuthorIDs(_ context.Context, subscriberID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, id := range f.order[subscriberID] {
		if f.memberships[subscriberID][id] {
			ids = append(ids, uuid.MustParse(id))
		}
	}
	return ids, nil
}

func (f *fakeSubscriptionRepo) GetSubscribedAuthors(_ context.Context, subscriberID string) ([]*entities.User, error) {
	var authors []*entities.User
	for _, id := range f.order[subscriberID] {
		if f.memberships[subscriberID][id] {
			authors = append(authors, f.authors[id])
		}
	}
	return authors, nil
}

// Only the lookups the subscription service reaches are implemented; the
// embedded interfaces cover the rest.
type fakeUserRepo struct {
	user.UserRepository
	users map[string]*entities.User
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*entities.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type fakeRecipeRepo struct {
	recipe.RecipeRepository
	byAuthor map[string][]*entities.Recipe
}

func (f *fakeRecipeRepo) GetRecipesByAuthor(_ context.Context, authorID string, limit int) ([]*entities.Recipe, error) {
	recipes := f.byAuthor[authorID]
	if limit > 0 && len(recipes) > limit {
		recipes = recipes[:limit]
	}
	return recipes, nil
}

func (f *fakeRecipeRepo) CountRecipesByAuthor(_ context.Context, authorID string) (int64, error) {
	return int64(len(f.byAuthor[authorID])), nil
}

type subscriptionFixture struct {
	subs    *fakeSubscriptionRepo
	users   *fakeUserRepo
	recipes *fakeRecipeRepo
	service subscription.SubscriptionService
}

func newSubscriptionFixture() *subscriptionFixture {
	f := &subscriptionFixture{
		subs:    newFakeSubscriptionRepo(),
		users:   &fakeUserRepo{users: map[string]*entities.User{}},
		recipes: &fakeRecipeRepo{byAuthor: map[string][]*entities.Recipe{}},
	}
	f.service = subscription.NewSubscriptionService(f.subs, f.users, f.recipes)
	return f
}

func (f *subscriptionFixture) seedAuthor(username string, recipeCount int) *entities.User {
	author := &entities.User{
		ID:       uuid.New(),
		Email:    username + "@example.com",
		Username: username,
	}
	f.users.users[author.ID.String()] = author
	f.subs.authors[author.ID.String()] = author

	for i := 0; i < recipeCount; i++ {
		f.recipes.byAuthor[author.ID.String()] = append(f.recipes.byAuthor[author.ID.String()], &entities.Recipe{
			ID:          uuid.New(),
			AuthorID:    author.ID,
			Name:        username + " recipe",
			CookingTime: 10,
		})
	}
	return author
}

func TestSubscribe(t *testing.T) {
	f := newSubscriptionFixture()
	author := f.seedAuthor("ana", 2)
	subscriberID := uuid.NewString()

	card, err := f.service.Subscribe(context.Background(), subscriberID, author.ID.String(), 0)
	require.NoError(t, err)
	require.Equal(t, author.ID.String(), card.ID)
	require.True(t, card.IsSubscribed)
	require.EqualValues(t, 2, card.RecipesCount)
	require.Len(t, card.Recipes, 2)
}

func TestSubscribeErrors(t *testing.T) {
	f := newSubscriptionFixture()
	author := f.seedAuthor("ana", 0)
	subscriberID := uuid.NewString()

	_, err := f.service.Subscribe(context.Background(), subscriberID, uuid.NewString(), 0)
	require.ErrorIs(t, err, domain.ErrAuthorNotFound)

	_, err = f.service.Subscribe(context.Background(), author.ID.String(), author.ID.String(), 0)
	require.ErrorIs(t, err, domain.ErrSelfSubscription)

	_, err = f.service.Subscribe(context.Background(), subscriberID, author.ID.String(), 0)
	require.NoError(t, err)
	_, err = f.service.Subscribe(context.Background(), subscriberID, author.ID.String(), 0)
	require.ErrorIs(t, err, domain.ErrAlreadySubscribed)
}

func TestUnsubscribe(t *testing.T) {
	f := newSubscriptionFixture()
	author := f.seedAuthor("ana", 0)
	subscriberID := uuid.NewString()

	err := f.service.Unsubscribe(context.Background(), subscriberID, uuid.NewString())
	require.ErrorIs(t, err, domain.ErrAuthorNotFound)

	// Removing a subscription that was never made is a client error, not
	// a missing resource.
	err = f.service.Unsubscribe(context.Background(), subscriberID, author.ID.String())
	require.ErrorIs(t, err, domain.ErrNotSubscribed)

	_, err = f.service.Subscribe(context.Background(), subscriberID, author.ID.String(), 0)
	require.NoError(t, err)

	err = f.service.Unsubscribe(context.Background(), subscriberID, author.ID.String())
	require.NoError(t, err)
}

func TestGetSubscriptionsRecipesLimit(t *testing.T) {
	f := newSubscriptionFixture()
	first := f.seedAuthor("ana", 3)
	second := f.seedAuthor("bob", 1)
	subscriberID := uuid.NewString()

	_, err := f.service.Subscribe(context.Background(), subscriberID, first.ID.String(), 0)
	require.NoError(t, err)
	_, err = f.service.Subscribe(context.Background(), subscriberID, second.ID.String(), 0)
	require.NoError(t, err)

	cards, err := f.service.GetSubscriptions(context.Background(), subscriberID, 2)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	require.Equal(t, first.ID.String(), cards[0].ID)
	// The nested list truncates to recipes_limit while the count stays full.
	require.Len(t, cards[0].Recipes, 2)
	require.EqualValues(t, 3, cards[0].RecipesCount)

	require.Equal(t, second.ID.String(), cards[1].ID)
	require.Len(t, cards[1].Recipes, 1)
	require.EqualValues(t, 1, cards[1].RecipesCount)
	require.True(t, cards[1].IsSubscribed)
}
