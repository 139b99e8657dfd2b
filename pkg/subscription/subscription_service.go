package subscription

import (
	"context"
	"errors"

	"foodgram-api/domain"
	"foodgram-api/entities"
	"foodgram-api/pkg/recipe"
	"foodgram-api/pkg/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	SubscriptionService interface {
		Subscribe(ctx context.Context, subscriberID, authorID string, recipesLimit int) (domain.AuthorResponse, error)
		Unsubscribe(ctx context.Context, subscriberID, authorID string) error
		GetSubscriptions(ctx context.Context, subscriberID string, recipesLimit int) ([]domain.AuthorResponse, error)
	}

	subscriptionService struct {
		subscriptionRepository SubscriptionRepository
		userRepository         user.UserRepository
		recipeRepository       recipe.RecipeRepository
	}
)

func NewSubscriptionService(
	subscriptionRepository SubscriptionRepository,
	userRepository user.UserRepository,
	recipeRepository recipe.RecipeRepository,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepository: subscriptionRepository,
		userRepository:         userRepository,
		recipeRepository:       recipeRepository,
	}
}

// authorResponse builds the author card with the nested recipe list,
// truncated to recipesLimit when the limit is positive.
func (s *subscriptionService) authorResponse(ctx context.Context, author *entities.User, recipesLimit int, isSubscribed bool) (domain.AuthorResponse, error) {
	recipes, err := s.recipeRepository.GetRecipesByAuthor(ctx, author.ID.String(), recipesLimit)
	if err != nil {
		return domain.AuthorResponse{}, err
	}

	count, err := s.recipeRepository.CountRecipesByAuthor(ctx, author.ID.String())
	if err != nil {
		return domain.AuthorResponse{}, err
	}

	condensed := make([]domain.CondensedRecipeResponse, 0, len(recipes))
	for _, entry := range recipes {
		condensed = append(condensed, recipe.CondensedResponseFromEntity(entry))
	}

	return domain.AuthorResponse{
		Email:        author.Email,
		ID:           author.ID.String(),
		Username:     author.Username,
		FirstName:    author.FirstName,
		LastName:     author.LastName,
		Recipes:      condensed,
		RecipesCount: count,
		IsSubscribed: isSubscribed,
	}, nil
}

func (s *subscriptionService) getAuthorOr404(ctx context.Context, authorID string) (*entities.User, error) {
	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAuthorNotFound
		}
		return nil, err
	}
	return author, nil
}

func (s *subscriptionService) Subscribe(ctx context.Context, subscriberID, authorID string, recipesLimit int) (domain.AuthorResponse, error) {
	author, err := s.getAuthorOr404(ctx, authorID)
	if err != nil {
		return domain.AuthorResponse{}, err
	}

	if subscriberID == authorID {
		return domain.AuthorResponse{}, domain.ErrSelfSubscription
	}

	subscribed, err := s.subscriptionRepository.IsSubscribed(ctx, subscriberID, authorID)
	if err != nil {
		return domain.AuthorResponse{}, err
	}
	if subscribed {
		return domain.AuthorResponse{}, domain.ErrAlreadySubscribed
	}

	subscriberUUID, err := uuid.Parse(subscriberID)
	if err != nil {
		return domain.AuthorResponse{}, domain.ErrParseUUID
	}

	subscription := &entities.Subscription{
		ID:           uuid.New(),
		SubscriberID: subscriberUUID,
		AuthorID:     author.ID,
	}
	if err := s.subscriptionRepository.CreateSubscription(ctx, subscription); err != nil {
		// Concurrent duplicates land on the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.AuthorResponse{}, domain.ErrAlreadySubscribed
		}
		return domain.AuthorResponse{}, err
	}

	return s.authorResponse(ctx, author, recipesLimit, true)
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, subscriberID, authorID string) error {
	if _, err := s.getAuthorOr404(ctx, authorID); err != nil {
		return err
	}

	removed, err := s.subscriptionRepository.DeleteSubscription(ctx, subscriberID, authorID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrNotSubscribed
	}
	return nil
}

func (s *subscriptionService) GetSubscriptions(ctx context.Context, subscriberID string, recipesLimit int) ([]domain.AuthorResponse, error) {
	authors, err := s.subscriptionRepository.GetSubscribedAuthors(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	response := make([]domain.AuthorResponse, 0, len(authors))
	for _, author := range authors {
		entry, err := s.authorResponse(ctx, author, recipesLimit, true)
		if err != nil {
			return nil, err
		}
		response = append(response, entry)
	}
	return response, nil
}
