package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodgram-api/domain"
	"foodgram-api/entities"
	"foodgram-api/internal/utils"
	"foodgram-api/internal/utils/storage"
	"foodgram-api/pkg/ingredient"
	"foodgram-api/pkg/tag"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// SubscriptionStore is the slice of the subscription repository the
	// recipe service needs to resolve the author card's is_subscribed flag.
	SubscriptionStore interface {
		IsSubscribed(ctx context.Context, subscriberID, authorID string) (bool, error)
		GetSubscribedAuthorIDs(ctx context.Context, subscriberID string) ([]uuid.UUID, error)
	}

	RecipeService interface {
		GetRecipes(ctx context.Context, req domain.ListRecipesRequest, viewerID string) ([]domain.RecipeResponse, int64, error)
		GetRecipeDetail(ctx context.Context, id, viewerID string) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, id string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, id, userID string) error

		AddFavorite(ctx context.Context, recipeID, userID string) (domain.CondensedRecipeResponse, error)
		RemoveFavorite(ctx context.Context, recipeID, userID string) error
		AddToShoppingCart(ctx context.Context, recipeID, userID string) (domain.CondensedRecipeResponse, error)
		RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error
		DownloadShoppingCart(ctx context.Context, userID string) (string, error)
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		tagRepository        tag.TagRepository
		ingredientRepository ingredient.IngredientRepository
		subscriptions        SubscriptionStore
		s3                   storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	tagRepository tag.TagRepository,
	ingredientRepository ingredient.IngredientRepository,
	subscriptions SubscriptionStore,
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		tagRepository:        tagRepository,
		ingredientRepository: ingredientRepository,
		subscriptions:        subscriptions,
		s3:                   s3,
	}
}

// anonymousViewer keeps membership queries valid for unauthenticated
// requests; the nil UUID matches no rows, so every annotation is false.
const anonymousViewer = "00000000-0000-0000-0000-000000000000"

func viewerOrAnonymous(viewerID string) string {
	if viewerID == "" {
		return anonymousViewer
	}
	return viewerID
}

func CondensedResponseFromEntity(recipe *entities.Recipe) domain.CondensedRecipeResponse {
	return domain.CondensedRecipeResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

func (s *recipeService) buildResponse(recipe *entities.Recipe, favorited, inCart, authorSubscribed bool) domain.RecipeResponse {
	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for i := range recipe.Tags {
		tags = append(tags, tag.TagResponseFromEntity(&recipe.Tags[i]))
	}

	ingredients := make([]domain.IngredientInRecipeResponse, 0, len(recipe.Ingredients))
	for _, row := range recipe.Ingredients {
		entry := domain.IngredientInRecipeResponse{
			ID:     row.IngredientID.String(),
			Amount: row.Amount,
		}
		if row.Ingredient != nil {
			entry.Name = row.Ingredient.Name
			entry.MeasurementUnit = row.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, entry)
	}

	var author domain.UserResponse
	if recipe.Author != nil {
		author = domain.UserResponse{
			Email:        recipe.Author.Email,
			ID:           recipe.Author.ID.String(),
			Username:     recipe.Author.Username,
			FirstName:    recipe.Author.FirstName,
			LastName:     recipe.Author.LastName,
			IsSubscribed: authorSubscribed,
		}
	}

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		PubDate:          recipe.PubDate,
	}
}

func (s *recipeService) annotateOne(ctx context.Context, recipe *entities.Recipe, viewerID string) (domain.RecipeResponse, error) {
	var favorited, inCart, subscribed bool
	if viewerID != "" {
		var err error
		if favorited, err = s.recipeRepository.IsFavorited(ctx, viewerID, recipe.ID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
		if inCart, err = s.recipeRepository.IsInShoppingCart(ctx, viewerID, recipe.ID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
		if subscribed, err = s.subscriptions.IsSubscribed(ctx, viewerID, recipe.AuthorID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
	}
	return s.buildResponse(recipe, favorited, inCart, subscribed), nil
}

func (s *recipeService) GetRecipes(ctx context.Context, req domain.ListRecipesRequest, viewerID string) ([]domain.RecipeResponse, int64, error) {
	filter := RecipeFilter{
		Tags:               req.Tags,
		AuthorID:           req.AuthorID,
		OnlyFavorited:      req.OnlyFavorited,
		OnlyInShoppingCart: req.OnlyInShoppingCart,
	}

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, viewerOrAnonymous(viewerID), req.Page, req.Limit)
	if err != nil {
		return nil, 0, err
	}

	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	subscribed := map[uuid.UUID]bool{}
	if viewerID != "" {
		favoriteIDs, err := s.recipeRepository.GetFavoritedRecipeIDs(ctx, viewerID)
		if err != nil {
			return nil, 0, err
		}
		for _, id := range favoriteIDs {
			favorited[id] = true
		}

		cartIDs, err := s.recipeRepository.GetShoppingCartRecipeIDs(ctx, viewerID)
		if err != nil {
			return nil, 0, err
		}
		for _, id := range cartIDs {
			inCart[id] = true
		}

		authorIDs, err := s.subscriptions.GetSubscribedAuthorIDs(ctx, viewerID)
		if err != nil {
			return nil, 0, err
		}
		for _, id := range authorIDs {
			subscribed[id] = true
		}
	}

	response := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		response = append(response, s.buildResponse(
			recipe,
			favorited[recipe.ID],
			inCart[recipe.ID],
			subscribed[recipe.AuthorID],
		))
	}
	return response, count, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, id, viewerID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	return s.annotateOne(ctx, recipe, viewerID)
}

func (s *recipeService) resolveTags(ctx context.Context, tagIDs []string) ([]entities.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, domain.ErrNoTags
	}

	tags, err := s.tagRepository.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, domain.ErrTagNotFound
	}
	return tags, nil
}

func (s *recipeService) resolveIngredients(ctx context.Context, ingredients []domain.IngredientAmountRequest) ([]IngredientAmount, error) {
	if len(ingredients) == 0 {
		return nil, domain.ErrNoIngredients
	}

	ids := make([]string, 0, len(ingredients))
	seen := map[string]bool{}
	rows := make([]IngredientAmount, 0, len(ingredients))
	for _, entry := range ingredients {
		if entry.Amount < 1 {
			return nil, domain.ErrInvalidAmount
		}
		if seen[entry.ID] {
			return nil, domain.ErrDuplicateIngredient
		}
		seen[entry.ID] = true

		ingredientID, err := uuid.Parse(entry.ID)
		if err != nil {
			return nil, domain.ErrIngredientNotFound
		}
		ids = append(ids, entry.ID)
		rows = append(rows, IngredientAmount{IngredientID: ingredientID, Amount: entry.Amount})
	}

	known, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(known) != len(ids) {
		return nil, domain.ErrIngredientNotFound
	}
	return rows, nil
}

func (s *recipeService) uploadImage(recipe *entities.Recipe, req domain.CreateRecipeRequest) (string, error) {
	fileName := fmt.Sprintf("recipe-%s", recipe.ID.String())

	existingKey := ""
	if recipe.ImageURL != "" {
		existingKey = s.s3.GetObjectKeyFromLink(recipe.ImageURL)
	}

	if req.ImageFile != nil {
		// On update the stored object is overwritten in place instead of
		// minting a new key and orphaning the old one.
		if existingKey != "" {
			objectKey, err := s.s3.UpdateFile(existingKey, req.ImageFile, storage.AllowImage...)
			if err != nil {
				return "", err
			}
			return s.s3.GetPublicLinkKey(objectKey), nil
		}

		objectKey, err := s.s3.UploadFile(fileName, req.ImageFile, "recipes", storage.AllowImage...)
		if err != nil {
			return "", err
		}
		return s.s3.GetPublicLinkKey(objectKey), nil
	}

	image, err := utils.DecodeBase64Image(req.Image)
	if err != nil {
		return "", domain.ErrInvalidImage
	}

	// Decoded payload keeps the photo.<ext> name derived from the data URI.
	objectKey, err := s.s3.UploadBytes(
		fmt.Sprintf("%s-%s", fileName, image.Name),
		image.Content,
		image.ContentType,
		"recipes",
		storage.AllowImage...,
	)
	if err != nil {
		return "", err
	}
	if existingKey != "" && existingKey != objectKey {
		_ = s.s3.DeleteFile(existingKey)
	}
	return s.s3.GetPublicLinkKey(objectKey), nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error) {
	if req.CookingTime < 1 {
		return domain.RecipeResponse{}, domain.ErrInvalidCookingTime
	}
	if req.Image == "" && req.ImageFile == nil {
		return domain.RecipeResponse{}, domain.ErrInvalidImage
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	ingredients, err := s.resolveIngredients(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorUUID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}

	imageURL, err := s.uploadImage(recipe, req)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	recipe.ImageURL = imageURL

	if err := s.recipeRepository.CreateRecipe(ctx, recipe, tags, ingredients); err != nil {
		return domain.RecipeResponse{}, err
	}

	created, err := s.recipeRepository.GetRecipeByID(ctx, recipe.ID.String())
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return s.annotateOne(ctx, created, authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, id string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if recipe.AuthorID.String() != userID {
		return domain.RecipeResponse{}, domain.ErrNotRecipeAuthor
	}

	if req.Name != "" {
		recipe.Name = req.Name
	}
	if req.Text != "" {
		recipe.Text = req.Text
	}
	if req.CookingTime != nil {
		if *req.CookingTime < 1 {
			return domain.RecipeResponse{}, domain.ErrInvalidCookingTime
		}
		recipe.CookingTime = *req.CookingTime
	}

	// Absent tag/ingredient fields leave the stored sets untouched;
	// present ones replace them wholesale.
	var tags []entities.Tag
	if req.Tags != nil {
		if tags, err = s.resolveTags(ctx, *req.Tags); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	var ingredients []IngredientAmount
	if req.Ingredients != nil {
		if ingredients, err = s.resolveIngredients(ctx, *req.Ingredients); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	if req.Image != "" || req.ImageFile != nil {
		imageURL, err := s.uploadImage(recipe, domain.CreateRecipeRequest{Image: req.Image, ImageFile: req.ImageFile})
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		recipe.ImageURL = imageURL
	}

	// Save only the recipe row plus the requested set replacements.
	toSave := &entities.Recipe{
		ID:          recipe.ID,
		AuthorID:    recipe.AuthorID,
		Name:        recipe.Name,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		ImageURL:    recipe.ImageURL,
		PubDate:     recipe.PubDate,
		Timestamp:   recipe.Timestamp,
	}
	if err := s.recipeRepository.UpdateRecipe(ctx, toSave, tags, ingredients); err != nil {
		return domain.RecipeResponse{}, err
	}

	updated, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return s.annotateOne(ctx, updated, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id, userID string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if recipe.AuthorID.String() != userID {
		return domain.ErrNotRecipeAuthor
	}

	if recipe.ImageURL != "" {
		if objectKey := s.s3.GetObjectKeyFromLink(recipe.ImageURL); objectKey != "" {
			_ = s.s3.DeleteFile(objectKey)
		}
	}

	return s.recipeRepository.DeleteRecipe(ctx, id)
}

func (s *recipeService) getRecipeOr404(ctx context.Context, recipeID string) (*entities.Recipe, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID, userID string) (domain.CondensedRecipeResponse, error) {
	recipe, err := s.getRecipeOr404(ctx, recipeID)
	if err != nil {
		return domain.CondensedRecipeResponse{}, err
	}

	favorited, err := s.recipeRepository.IsFavorited(ctx, userID, recipeID)
	if err != nil {
		return domain.CondensedRecipeResponse{}, err
	}
	if favorited {
		return domain.CondensedRecipeResponse{}, domain.ErrAlreadyFavorited
	}

	if err := s.recipeRepository.AddFavorite(ctx, userID, recipeID); err != nil {
		// Concurrent duplicates land on the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.CondensedRecipeResponse{}, domain.ErrAlreadyFavorited
		}
		return domain.CondensedRecipeResponse{}, err
	}

	return CondensedResponseFromEntity(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID, userID string) error {
	if _, err := s.getRecipeOr404(ctx, recipeID); err != nil {
		return err
	}

	removed, err := s.recipeRepository.RemoveFavorite(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrNotFavorited
	}
	return nil
}

func (s *recipeService) AddToShoppingCart(ctx context.Context, recipeID, userID string) (domain.CondensedRecipeResponse, error) {
	recipe, err := s.getRecipeOr404(ctx, recipeID)
	if err != nil {
		return domain.CondensedRecipeResponse{}, err
	}

	inCart, err := s.recipeRepository.IsInShoppingCart(ctx, userID, recipeID)
	if err != nil {
		return domain.CondensedRecipeResponse{}, err
	}
	if inCart {
		return domain.CondensedRecipeResponse{}, domain.ErrAlreadyInCart
	}

	if err := s.recipeRepository.AddToShoppingCart(ctx, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.CondensedRecipeResponse{}, domain.ErrAlreadyInCart
		}
		return domain.CondensedRecipeResponse{}, err
	}

	return CondensedResponseFromEntity(recipe), nil
}

func (s *recipeService) RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error {
	if _, err := s.getRecipeOr404(ctx, recipeID); err != nil {
		return err
	}

	removed, err := s.recipeRepository.RemoveFromShoppingCart(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrNotInCart
	}
	return nil
}

// FormatShoppingList renders aggregated cart rows one per line as
// "{name} ({unit}) - {total}".
func FormatShoppingList(items []ShoppingListItem) string {
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s (%s) - %d", item.Name, item.Unit, item.Total))
	}
	return sb.String()
}

func (s *recipeService) DownloadShoppingCart(ctx context.Context, userID string) (string, error) {
	items, err := s.recipeRepository.GetShoppingList(ctx, userID)
	if err != nil {
		return "", err
	}
	return FormatShoppingList(items), nil
}
