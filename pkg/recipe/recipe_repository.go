package recipe

import (
	"context"

	"foodgram-api/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	// RecipeFilter narrows recipe listings. Tag slugs match any-of and the
	// two boolean filters are viewer-relative.
	RecipeFilter struct {
		Tags               []string
		AuthorID           string
		OnlyFavorited      bool
		OnlyInShoppingCart bool
	}

	// IngredientAmount is one ingredient row of a recipe write.
	IngredientAmount struct {
		IngredientID uuid.UUID
		Amount       int
	}

	// ShoppingListItem is one aggregated row of the shopping-cart report.
	ShoppingListItem struct {
		Name  string `gorm:"column:name"`
		Unit  string `gorm:"column:unit"`
		Total int    `gorm:"column:total"`
	}

	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe, tags []entities.Tag, ingredients []IngredientAmount) error
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe, tags []entities.Tag, ingredients []IngredientAmount) error
		DeleteRecipe(ctx context.Context, id string) error
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter RecipeFilter, viewerID string, page, limit int) ([]*entities.Recipe, int64, error)
		GetRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error)
		CountRecipesByAuthor(ctx context.Context, authorID string) (int64, error)

		AddFavorite(ctx context.Context, userID, recipeID string) error
		RemoveFavorite(ctx context.Context, userID, recipeID string) (int64, error)
		IsFavorited(ctx context.Context, userID, recipeID string) (bool, error)
		GetFavoritedRecipeIDs(ctx context.Context, userID string) ([]uuid.UUID, error)

		AddToShoppingCart(ctx context.Context, userID, recipeID string) error
		RemoveFromShoppingCart(ctx context.Context, userID, recipeID string) (int64, error)
		IsInShoppingCart(ctx context.Context, userID, recipeID string) (bool, error)
		GetShoppingCartRecipeIDs(ctx context.Context, userID string) ([]uuid.UUID, error)

		GetShoppingList(ctx context.Context, userID string) ([]ShoppingListItem, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func ingredientRows(recipeID uuid.UUID, ingredients []IngredientAmount) []entities.IngredientRecipe {
	rows := make([]entities.IngredientRecipe, 0, len(ingredients))
	for _, ingredient := range ingredients {
		rows = append(rows, entities.IngredientRecipe{
			ID:           uuid.New(),
			RecipeID:     recipeID,
			IngredientID: ingredient.IngredientID,
			Amount:       ingredient.Amount,
		})
	}
	return rows
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, tags []entities.Tag, ingredients []IngredientAmount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		return tx.Create(ingredientRows(recipe.ID, ingredients)).Error
	})
}

// UpdateRecipe saves the recipe row and, when tags or ingredients are
// non-nil, replaces the corresponding set wholesale.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, tags []entities.Tag, ingredients []IngredientAmount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return err
		}
		if tags != nil {
			if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		if ingredients != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&entities.IngredientRecipe{}).Error; err != nil {
				return err
			}
			if err := tx.Create(ingredientRows(recipe.ID, ingredients)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.IngredientRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Recipe{}).Error
	})
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) filteredRecipes(ctx context.Context, filter RecipeFilter, viewerID string) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entities.Recipe{})

	if filter.AuthorID != "" {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.Tags) > 0 {
		// Subquery keeps results distinct when a recipe carries several
		// matching tags.
		query = query.Where(
			"recipes.id IN (SELECT recipe_tags.recipe_id FROM recipe_tags JOIN tags ON tags.id = recipe_tags.tag_id WHERE tags.slug IN ?)",
			filter.Tags,
		)
	}
	if filter.OnlyFavorited {
		query = query.Where(
			"EXISTS (SELECT 1 FROM favorites WHERE favorites.recipe_id = recipes.id AND favorites.user_id = ?)",
			viewerID,
		)
	}
	if filter.OnlyInShoppingCart {
		query = query.Where(
			"EXISTS (SELECT 1 FROM shopping_carts WHERE shopping_carts.recipe_id = recipes.id AND shopping_carts.user_id = ?)",
			viewerID,
		)
	}
	return query
}

func (r *recipeRepository) listQuery(ctx context.Context, filter RecipeFilter, viewerID string, page, limit int) *gorm.DB {
	return r.filteredRecipes(ctx, filter, viewerID).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Offset((page - 1) * limit).
		Limit(limit).
		Order("recipes.pub_date desc")
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter RecipeFilter, viewerID string, page, limit int) ([]*entities.Recipe, int64, error) {
	var count int64
	if err := r.filteredRecipes(ctx, filter, viewerID).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var recipes []*entities.Recipe
	if err := r.listQuery(ctx, filter, viewerID, page, limit).Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) GetRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error) {
	query := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recipes []*entities.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountRecipesByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *recipeRepository) AddFavorite(ctx context.Context, userID, recipeID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return err
	}

	favorite := entities.Favorite{
		ID:       uuid.New(),
		UserID:   userUUID,
		RecipeID: recipeUUID,
	}
	return r.db.WithContext(ctx).Create(&favorite).Error
}

func (r *recipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.Favorite{})
	return result.RowsAffected, result.Error
}

func (r *recipeRepository) IsFavorited(ctx context.Context, userID, recipeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) GetFavoritedRecipeIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entities.Favorite{}).
		Where("user_id = ?", userID).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *recipeRepository) AddToShoppingCart(ctx context.Context, userID, recipeID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return err
	}

	entry := entities.ShoppingCart{
		ID:       uuid.New(),
		UserID:   userUUID,
		RecipeID: recipeUUID,
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *recipeRepository) RemoveFromShoppingCart(ctx context.Context, userID, recipeID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.ShoppingCart{})
	return result.RowsAffected, result.Error
}

func (r *recipeRepository) IsInShoppingCart(ctx context.Context, userID, recipeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.ShoppingCart{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) GetShoppingCartRecipeIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entities.ShoppingCart{}).
		Where("user_id = ?", userID).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *recipeRepository) shoppingListQuery(ctx context.Context, userID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entities.IngredientRecipe{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, SUM(ingredient_recipes.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = ingredient_recipes.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = ingredient_recipes.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("total desc")
}

// GetShoppingList aggregates the ingredient rows of every recipe in the
// viewer's shopping cart, grouped by ingredient name and unit, largest
// total first.
func (r *recipeRepository) GetShoppingList(ctx context.Context, userID string) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	if err := r.shoppingListQuery(ctx, userID).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
