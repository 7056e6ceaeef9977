package routes

import (
	"encoding/json"
	"errors"

	"github.com/nethmeehapugoda/back-end-royal-palms/models"
	"github.com/nethmeehapugoda/back-end-royal-palms/storage"
	"github.com/nethmeehapugoda/back-end-royal-palms/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name        string           `json:"name" validate:"required,max=256"`
	Description string           `json:"description" validate:"required"`
	Price       float64          `json:"price" validate:"required,min=0"`
	Currency    string           `json:"currency"`
	Features    []models.Feature `json:"features"`
	Popular     bool             `json:"popular"`
}

func CreateCategory(ctx iris.Context) {
	var input CategoryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	features, _ := json.Marshal(input.Features)

	category := models.Category{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Currency:    input.Currency,
		Features:    features,
		Popular:     input.Popular,
	}
	if category.Currency == "" {
		category.Currency = "LKR"
	}

	if err := storage.DB.Create(&category).Error; err != nil {
		utils.LogInternalServerError(err, ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"message":  "Category created successfully",
		"category": &category,
	})
}

func GetCategories(ctx iris.Context) {
	var categories []models.Category
	if err := storage.DB.Order("popular DESC, name ASC").Find(&categories).Error; err != nil {
		utils.LogInternalServerError(err, ctx)
		return
	}

	ctx.JSON(categories)
}

func GetCategoryByID(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var category models.Category
	if err := storage.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Category not found", ctx)
			return
		}
		utils.LogInternalServerError(err, ctx)
		return
	}

	ctx.JSON(&category)
}

func UpdateCategory(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var input CategoryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var category models.Category
	if err := storage.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Category not found", ctx)
			return
		}
		utils.LogInternalServerError(err, ctx)
		return
	}

	features, _ := json.Marshal(input.Features)

	category.Name = input.Name
	category.Description = input.Description
	category.Price = input.Price
	if input.Currency != "" {
		category.Currency = input.Currency
	}
	category.Features = features
	category.Popular = input.Popular

	if err := storage.DB.Save(&category).Error; err != nil {
		utils.LogInternalServerError(err, ctx)
		return
	}

	utils.Audit(ctx, "category.update", "category", category.ID, nil, &category)

	ctx.JSON(iris.Map{
		"message":  "Category updated successfully",
		"category": &category,
	})
}

func DeleteCategory(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var category models.Category
	if err := storage.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Category not found", ctx)
			return
		}
		utils.LogInternalServerError(err, ctx)
		return
	}

	if err := storage.DB.Delete(&category).Error; err != nil {
		utils.LogInternalServerError(err, ctx)
		return
	}

	utils.Audit(ctx, "category.delete", "category", category.ID, &category, nil)

	ctx.JSON(iris.Map{"message": "Category deleted successfully"})
}
