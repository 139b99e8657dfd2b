package recipe_test

import (
	"context"
	"mime/multipart"
	"sort"
	"strings"

	"foodgram-api/entities"
	"foodgram-api/pkg/recipe"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory stand-ins for the repositories and the object store. The
// membership maps are keyed userID -> recipeID.
type fakeRecipeRepo struct {
	recipes   map[string]*entities.Recipe
	favorites map[string]map[string]bool
	carts     map[string]map[string]bool
	listItems []recipe.ShoppingListItem

	// Known ingredients, so materialized rows carry the resolved entity
	// the way GetRecipeByID preloads it.
	ingredientsByID map[string]*entities.Ingredient

	lastCreateIngredients []recipe.IngredientAmount
	lastUpdateTags        []entities.Tag
	lastUpdateIngredients []recipe.IngredientAmount
	updateCalled          bool
	deleted               []string
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{
		recipes:         map[string]*entities.Recipe{},
		favorites:       map[string]map[string]bool{},
		carts:           map[string]map[string]bool{},
		ingredientsByID: map[string]*entities.Ingredient{},
	}
}

func (f *fakeRecipeRepo) ingredientRow(recipeID uuid.UUID, row recipe.IngredientAmount) entities.IngredientRecipe {
	return entities.IngredientRecipe{
		ID:           uuid.New(),
		RecipeID:     recipeID,
		IngredientID: row.IngredientID,
		Amount:       row.Amount,
		Ingredient:   f.ingredientsByID[row.IngredientID.String()],
	}
}

func (f *fakeRecipeRepo) seed(r *entities.Recipe) {
	f.recipes[r.ID.String()] = r
}

func (f *fakeRecipeRepo) CreateRecipe(_ context.Context, r *entities.Recipe, tags []entities.Tag, ingredients []recipe.IngredientAmount) error {
	f.lastCreateIngredients = ingredients

	r.Tags = tags
	r.Ingredients = make([]entities.IngredientRecipe, 0, len(ingredients))
	for _, row := range ingredients {
		r.Ingredients = append(r.Ingredients, f.ingredientRow(r.ID, row))
	}
	f.recipes[r.ID.String()] = r
	return nil
}

func (f *fakeRecipeRepo) UpdateRecipe(_ context.Context, r *entities.Recipe, tags []entities.Tag, ingredients []recipe.IngredientAmount) error {
	f.updateCalled = true
	f.lastUpdateTags = tags
	f.lastUpdateIngredients = ingredients

	stored, ok := f.recipes[r.ID.String()]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Name = r.Name
	stored.Text = r.Text
	stored.CookingTime = r.CookingTime
	stored.ImageURL = r.ImageURL
	if tags != nil {
		stored.Tags = tags
	}
	if ingredients != nil {
		stored.Ingredients = stored.Ingredients[:0]
		for _, row := range ingredients {
			stored.Ingredients = append(stored.Ingredients, f.ingredientRow(stored.ID, row))
		}
	}
	return nil
}

func (f *fakeRecipeRepo) DeleteRecipe(_ context.Context, id string) error {
	delete(f.recipes, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRecipeRepo) GetRecipeByID(_ context.Context, id string) (*entities.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeRecipeRepo) GetRecipes(_ context.Context, _ recipe.RecipeFilter, _ string, _, _ int) ([]*entities.Recipe, int64, error) {
	ids := make([]string, 0, len(f.recipes))
	for id := range f.recipes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	recipes := make([]*entities.Recipe, 0, len(ids))
	for _, id := range ids {
		recipes = append(recipes, f.recipes[id])
	}
	return recipes, int64(len(recipes)), nil
}

func (f *fakeRecipeRepo) GetRecipesByAuthor(_ context.Context, authorID string, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	for _, r := range f.recipes {
		if r.AuthorID.String() == authorID {
			recipes = append(recipes, r)
		}
	}
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].Name < recipes[j].Name })
	if limit > 0 && len(recipes) > limit {
		recipes = recipes[:limit]
	}
	return recipes, nil
}

func (f *fakeRecipeRepo) CountRecipesByAuthor(_ context.Context, authorID string) (int64, error) {
	var count int64
	for _, r := range f.recipes {
		if r.AuthorID.String() == authorID {
			count++
		}
	}
	return count, nil
}

func addMembership(set map[string]map[string]bool, userID, recipeID string) error {
	if set[userID] == nil {
		set[userID] = map[string]bool{}
	}
	if set[userID][recipeID] {
		return gorm.ErrDuplicatedKey
	}
	set[userID][recipeID] = true
	return nil
}

func removeMembership(set map[string]map[string]bool, userID, recipeID string) int64 {
	if !set[userID][recipeID] {
		return 0
	}
	delete(set[userID], recipeID)
	return 1
}

func membershipIDs(set map[string]map[string]bool, userID string) []uuid.UUID {
	var ids []uuid.UUID
	for id := range set[userID] {
		ids = append(ids, uuid.MustParse(id))
	}
	return ids
}

func (f *fakeRecipeRepo) AddFavorite(_ context.Context, userID, recipeID string) error {
	return addMembership(f.favorites, userID, recipeID)
}

func (f *fakeRecipeRepo) RemoveFavorite(_ context.Context, userID, recipeID string) (int64, error) {
	return removeMembership(f.favorites, userID, recipeID), nil
}

func (f *fakeRecipeRepo) IsFavorited(_ context.Context, userID, recipeID string) (bool, error) {
	return f.favorites[userID][recipeID], nil
}

func (f *fakeRecipeRepo) GetFavoritedRecipeIDs(_ context.Context, userID string) ([]uuid.UUID, error) {
	return membershipIDs(f.favorites, userID), nil
}

func (f *fakeRecipeRepo) AddToShoppingCart(_ context.Context, userID, recipeID string) error {
	return addMembership(f.carts, userID, recipeID)
}

func (f *fakeRecipeRepo) RemoveFromShoppingCart(_ context.Context, userID, recipeID string) (int64, error) {
	return removeMembership(f.carts, userID, recipeID), nil
}

func (f *fakeRecipeRepo) IsInShoppingCart(_ context.Context, userID, recipeID string) (bool, error) {
	return f.carts[userID][recipeID], nil
}

func (f *fakeRecipeRepo) GetShoppingCartRecipeIDs(_ context.Context, userID string) ([]uuid.UUID, error) {
	return membershipIDs(f.carts, userID), nil
}

func (f *fakeRecipeRepo) GetShoppingList(_ context.Context, _ string) ([]recipe.ShoppingListItem, error) {
	return f.listItems, nil
}

type fakeTagRepo struct {
	tags map[string]entities.Tag
}

func (f *fakeTagRepo) GetTags(_ context.Context) ([]*entities.Tag, error) {
	var tags []*entities.Tag
	for id := range f.tags {
		t := f.tags[id]
		tags = append(tags, &t)
	}
	return tags, nil
}

func (f *fakeTagRepo) GetTagByID(_ context.Context, id string) (*entities.Tag, error) {
	t, ok := f.tags[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (f *fakeTagRepo) GetTagsByIDs(_ context.Context, ids []string) ([]entities.Tag, error) {
	var tags []entities.Tag
	for _, id := range ids {
		if t, ok := f.tags[id]; ok {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

type fakeIngredientRepo struct {
	ingredients map[string]*entities.Ingredient
}

func (f *fakeIngredientRepo) GetIngredients(_ context.Context, _ string) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	for _, i := range f.ingredients {
		ingredients = append(ingredients, i)
	}
	return ingredients, nil
}

func (f *fakeIngredientRepo) GetIngredientByID(_ context.Context, id string) (*entities.Ingredient, error) {
	i, ok := f.ingredients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return i, nil
}

func (f *fakeIngredientRepo) GetIngredientsByIDs(_ context.Context, ids []string) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	for _, id := range ids {
		if i, ok := f.ingredients[id]; ok {
			ingredients = append(ingredients, i)
		}
	}
	return ingredients, nil
}

type fakeSubscriptions struct {
	subscribed map[string]map[string]bool
}

func (f *fakeSubscriptions) IsSubscribed(_ context.Context, subscriberID, authorID string) (bool, error) {
	return f.subscribed[subscriberID][authorID], nil
}

func (f *fakeSubscriptions) GetSubscribedAuthorIDs(_ context.Context, subscriberID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id := range f.subscribed[subscriberID] {
		ids = append(ids, uuid.MustParse(id))
	}
	return ids, nil
}

type fakeStorage struct {
	uploadedNames []string
	uploadedBytes []byte
	updatedKeys   []string
	deletedKeys   []string
}

const fakeLinkPrefix = "https://bucket.s3.test/"

func (f *fakeStorage) UploadFile(fileName string, _ *multipart.FileHeader, dir string, _ ...string) (string, error) {
	f.uploadedNames = append(f.uploadedNames, fileName)
	return dir + "/" + fileName, nil
}

func (f *fakeStorage) UploadBytes(fileName string, content []byte, _ string, dir string, _ ...string) (string, error) {
	f.uploadedNames = append(f.uploadedNames, fileName)
	f.uploadedBytes = content
	return dir + "/" + fileName, nil
}

func (f *fakeStorage) UpdateFile(objectKey string, _ *multipart.FileHeader, _ ...string) (string, error) {
	f.updatedKeys = append(f.updatedKeys, objectKey)
	return objectKey, nil
}

func (f *fakeStorage) DeleteFile(objectKey string) error {
	f.deletedKeys = append(f.deletedKeys, objectKey)
	return nil
}

func (f *fakeStorage) GetPublicLinkKey(objectKey string) string {
	return fakeLinkPrefix + objectKey
}

func (f *fakeStorage) GetObjectKeyFromLink(link string) string {
	return strings.TrimPrefix(link, fakeLinkPrefix)
}
