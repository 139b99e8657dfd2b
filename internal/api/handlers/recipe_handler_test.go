package handlers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"foodgram-api/domain"
	"foodgram-api/internal/api/handlers"
	"foodgram-api/pkg/recipe"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Only UpdateRecipe is recorded; the embedded interface covers the rest.
type stubRecipeService struct {
	recipe.RecipeService

	updatedID     string
	updatedUserID string
	updatedReq    domain.UpdateRecipeRequest
}

func (s *stubRecipeService) UpdateRecipe(_ context.Context, id string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	s.updatedID = id
	s.updatedUserID = userID
	s.updatedReq = req
	return domain.RecipeResponse{ID: id, Name: req.Name}, nil
}

func newPatchApp(service recipe.RecipeService, userID string) *fiber.App {
	app := fiber.New()
	handler := handlers.NewRecipeHandler(service, validator.New())
	app.Patch("/api/v1/recipes/:id", func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}, handler.UpdateRecipe)
	return app
}

func TestUpdateRecipeMultipartForm(t *testing.T) {
	service := &stubRecipeService{}
	userID := uuid.NewString()
	recipeID := uuid.NewString()
	app := newPatchApp(service, userID)

	ingredientID := uuid.NewString()
	tagID := uuid.NewString()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("name", "Thick pancakes"))
	require.NoError(t, writer.WriteField("cooking_time", "30"))
	require.NoError(t, writer.WriteField("tags", tagID))
	require.NoError(t, writer.WriteField("ingredients", `[{"id":"`+ingredientID+`","amount":300}]`))
	part, err := writer.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(fiber.MethodPatch, "/api/v1/recipes/"+recipeID, body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, recipeID, service.updatedID)
	require.Equal(t, userID, service.updatedUserID)
	require.Equal(t, "Thick pancakes", service.updatedReq.Name)
	require.NotNil(t, service.updatedReq.CookingTime)
	require.Equal(t, 30, *service.updatedReq.CookingTime)

	// The file part must reach the service, not be dropped by the parser.
	require.NotNil(t, service.updatedReq.ImageFile)
	require.Equal(t, "photo.png", service.updatedReq.ImageFile.Filename)

	require.NotNil(t, service.updatedReq.Tags)
	require.Equal(t, []string{tagID}, *service.updatedReq.Tags)
	require.NotNil(t, service.updatedReq.Ingredients)
	require.Equal(t, []domain.IngredientAmountRequest{{ID: ingredientID, Amount: 300}}, *service.updatedReq.Ingredients)
}

func TestUpdateRecipeMultipartKeepsAbsentSets(t *testing.T) {
	service := &stubRecipeService{}
	app := newPatchApp(service, uuid.NewString())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("name", "Renamed"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(fiber.MethodPatch, "/api/v1/recipes/"+uuid.NewString(), body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, "Renamed", service.updatedReq.Name)
	require.Nil(t, service.updatedReq.Tags)
	require.Nil(t, service.updatedReq.Ingredients)
	require.Nil(t, service.updatedReq.ImageFile)
}

func TestUpdateRecipeJSONBody(t *testing.T) {
	service := &stubRecipeService{}
	app := newPatchApp(service, uuid.NewString())

	req := httptest.NewRequest(
		fiber.MethodPatch,
		"/api/v1/recipes/"+uuid.NewString(),
		strings.NewReader(`{"name":"Thick pancakes","cooking_time":30}`),
	)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, "Thick pancakes", service.updatedReq.Name)
	require.NotNil(t, service.updatedReq.CookingTime)
	require.Equal(t, 30, *service.updatedReq.CookingTime)
	require.Nil(t, service.updatedReq.ImageFile)
}
