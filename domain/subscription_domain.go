package domain

import (
	"errors"
)

var (
	MessageSuccessSubscribe        = "subscribed to author"
	MessageSuccessUnsubscribe      = "unsubscribed from author"
	MessageSuccessGetSubscriptions = "success get subscriptions"
	MessageFailedSubscribe         = "failed to subscribe"
	MessageFailedUnsubscribe       = "failed to unsubscribe"
	MessageFailedGetSubscriptions  = "failed to get subscriptions"

	ErrAuthorNotFound    = errors.New("author not found")
	ErrSelfSubscription  = errors.New("you can not subscribe to yourself")
	ErrAlreadySubscribed = errors.New("already subscribed to this author")
	ErrNotSubscribed     = errors.New("no such subscription")
)

type AuthorResponse struct {
	Email        string                    `json:"email"`
	ID           string                    `json:"id"`
	Username     string                    `json:"username"`
	FirstName    string                    `json:"first_name"`
	LastName     string                    `json:"last_name"`
	Recipes      []CondensedRecipeResponse `json:"recipes"`
	RecipesCount int64                     `json:"recipes_count"`
	IsSubscribed bool                      `json:"is_subscribed"`
}
