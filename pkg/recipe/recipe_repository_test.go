package recipe

import (
	"context"
	"strings"
	"testing"

	"foodgram-api/entities"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunRepo builds statements without touching a server so the generated
// SQL can be inspected.
func dryRunRepo(t *testing.T) *recipeRepository {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=foodgram dbname=foodgram",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return &recipeRepository{db: db}
}

func TestListQueryTagFilterStaysDistinct(t *testing.T) {
	repo := dryRunRepo(t)

	var recipes []*entities.Recipe
	tx := repo.listQuery(context.Background(), RecipeFilter{Tags: []string{"breakfast", "dinner"}}, anonymousViewer, 1, 20).Find(&recipes)
	require.NoError(t, tx.Error)

	sql := tx.Statement.SQL.String()
	// Slug matching runs through a membership subquery, so a recipe
	// carrying several matching tags still yields one row.
	require.Contains(t, sql, "recipes.id IN (SELECT recipe_tags.recipe_id FROM recipe_tags JOIN tags ON tags.id = recipe_tags.tag_id WHERE tags.slug IN")
	require.Equal(t, 1, strings.Count(sql, "FROM recipe_tags"))
	require.NotContains(t, sql, "JOIN recipe_tags ON")
	require.Contains(t, tx.Statement.Vars, "breakfast")
	require.Contains(t, tx.Statement.Vars, "dinner")
}

func TestListQueryOrdersNewestFirst(t *testing.T) {
	repo := dryRunRepo(t)

	var recipes []*entities.Recipe
	tx := repo.listQuery(context.Background(), RecipeFilter{}, anonymousViewer, 2, 10).Find(&recipes)
	require.NoError(t, tx.Error)

	sql := tx.Statement.SQL.String()
	require.Contains(t, sql, "ORDER BY recipes.pub_date desc")
	require.Contains(t, sql, "LIMIT")
	require.Contains(t, sql, "OFFSET")
	require.Contains(t, tx.Statement.Vars, 10)
}

func TestFilteredRecipesViewerFilters(t *testing.T) {
	repo := dryRunRepo(t)
	authorID := "5f1d0cf1-6f86-4a34-9f8d-6cfb3e3c7a01"
	viewerID := "3f1d0cf1-6f86-4a34-9f8d-6cfb3e3c7a01"

	var recipes []*entities.Recipe
	tx := repo.filteredRecipes(context.Background(), RecipeFilter{
		AuthorID:           authorID,
		OnlyFavorited:      true,
		OnlyInShoppingCart: true,
	}, viewerID).Find(&recipes)
	require.NoError(t, tx.Error)

	sql := tx.Statement.SQL.String()
	require.Contains(t, sql, "recipes.author_id = ")
	require.Contains(t, sql, "EXISTS (SELECT 1 FROM favorites WHERE favorites.recipe_id = recipes.id AND favorites.user_id = ")
	require.Contains(t, sql, "EXISTS (SELECT 1 FROM shopping_carts WHERE shopping_carts.recipe_id = recipes.id AND shopping_carts.user_id = ")
	require.Contains(t, tx.Statement.Vars, authorID)
	require.Contains(t, tx.Statement.Vars, viewerID)
}

func TestShoppingListQueryAggregates(t *testing.T) {
	repo := dryRunRepo(t)
	viewerID := "3f1d0cf1-6f86-4a34-9f8d-6cfb3e3c7a01"

	var items []ShoppingListItem
	tx := repo.shoppingListQuery(context.Background(), viewerID).Find(&items)
	require.NoError(t, tx.Error)

	sql := tx.Statement.SQL.String()
	require.Contains(t, sql, "SUM(ingredient_recipes.amount) AS total")
	require.Contains(t, sql, "JOIN ingredients ON ingredients.id = ingredient_recipes.ingredient_id")
	require.Contains(t, sql, "JOIN shopping_carts ON shopping_carts.recipe_id = ingredient_recipes.recipe_id")
	require.Contains(t, sql, "GROUP BY ingredients.name, ingredients.measurement_unit")
	require.Contains(t, sql, "ORDER BY total desc")
	require.Contains(t, tx.Statement.Vars, viewerID)
}
