package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessGetRecipes          = "success get recipes"
	MessageSuccessGetRecipeDetail     = "success get recipe detail"
	MessageSuccessCreateRecipe        = "recipe created successfully"
	MessageSuccessUpdateRecipe        = "recipe updated successfully"
	MessageSuccessDeleteRecipe        = "recipe deleted successfully"
	MessageSuccessAddFavorite         = "recipe added to favorites"
	MessageSuccessRemoveFavorite      = "recipe removed from favorites"
	MessageSuccessAddToShoppingCart   = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart      = "recipe removed from shopping cart"
	MessageFailedGetRecipes           = "failed to get recipes"
	MessageFailedGetRecipeDetail      = "failed to get recipe detail"
	MessageFailedCreateRecipe         = "failed to create recipe"
	MessageFailedUpdateRecipe         = "failed to update recipe"
	MessageFailedDeleteRecipe         = "failed to delete recipe"
	MessageFailedAddFavorite          = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite       = "failed to remove recipe from favorites"
	MessageFailedAddToShoppingCart    = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart       = "failed to remove recipe from shopping cart"
	MessageFailedDownloadShoppingCart = "failed to download shopping cart"

	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrNotRecipeAuthor     = errors.New("only the author can modify this recipe")
	ErrNoTags              = errors.New("select at least one tag")
	ErrNoIngredients       = errors.New("select at least one ingredient")
	ErrInvalidAmount       = errors.New("ingredient amount must be at least 1")
	ErrInvalidCookingTime  = errors.New("cooking time must be at least 1 minute")
	ErrDuplicateIngredient = errors.New("ingredient listed more than once")
	ErrInvalidImage        = errors.New("invalid or missing image")
	ErrAlreadyFavorited    = errors.New("recipe is already in favorites")
	ErrNotFavorited        = errors.New("recipe is not in favorites")
	ErrAlreadyInCart       = errors.New("recipe is already in shopping cart")
	ErrNotInCart           = errors.New("recipe is not in shopping cart")
)

type (
	IngredientAmountRequest struct {
		ID     string `json:"id" validate:"omitempty,uuid"`
		Amount int    `json:"amount"`
	}

	CreateRecipeRequest struct {
		Name        string                    `json:"name" validate:"required,max=200"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"required,min=1"`
		Tags        []string                  `json:"tags" validate:"dive,uuid"`
		Ingredients []IngredientAmountRequest `json:"ingredients" validate:"dive"`
		Image       string                    `json:"image"`
		ImageFile   *multipart.FileHeader     `json:"-"`
	}

	UpdateRecipeRequest struct {
		Name        string                     `json:"name" validate:"omitempty,max=200"`
		Text        string                     `json:"text"`
		CookingTime *int                       `json:"cooking_time"`
		Tags        *[]string                  `json:"tags" validate:"omitempty,dive,uuid"`
		Ingredients *[]IngredientAmountRequest `json:"ingredients" validate:"omitempty,dive"`
		Image       string                     `json:"image"`
		ImageFile   *multipart.FileHeader      `json:"-"`
	}

	ListRecipesRequest struct {
		Tags               []string
		AuthorID           string
		OnlyFavorited      bool
		OnlyInShoppingCart bool
		Page               int
		Limit              int
	}

	IngredientInRecipeResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                       `json:"id"`
		Tags             []TagResponse                `json:"tags"`
		Author           UserResponse                 `json:"author"`
		Ingredients      []IngredientInRecipeResponse `json:"ingredients"`
		IsFavorited      bool                         `json:"is_favorited"`
		IsInShoppingCart bool                         `json:"is_in_shopping_cart"`
		Name             string                       `json:"name"`
		Image            string                       `json:"image"`
		Text             string                       `json:"text"`
		CookingTime      int                          `json:"cooking_time"`
		PubDate          time.Time                    `json:"pub_date"`
	}

	CondensedRecipeResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}
)
