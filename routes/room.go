package routes

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nethmeehapugoda/back-end-royal-palms/models"
	"github.com/nethmeehapugoda/back-end-royal-palms/storage"
	"github.com/nethmeehapugoda/back-end-royal-palms/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

var roomStatuses = []string{models.RoomAvailable, models.RoomOccupied, models.RoomMaintenance}

type RoomInput struct {
	Category   uint     `json:"category" validate:"required"`
	RoomNumber string   `json:"roomNumber" validate:"required,max=32"`
	Status     string   `json:"status"`
	Images     []string `json:"images"` // base64 data URLs, uploaded on create/update
}

type UpdateRoomInput struct {
	Category       uint     `json:"category"`
	RoomNumber     string   `json:"roomNumber"`
	Status         string   `json:"status"`
	Images         []string `json:"images"`
	ImagesToDelete []string `json:"imagesToDelete"`
}

func uploadRoomImages(roomNumber string, base64Images []string) []models.RoomImage {
	var images []models.RoomImage
	for i, data := range base64Images {
		publicID := fmt.Sprintf("room-%s-%d", roomNumber, i)
		res := storage.UploadBase64Image(data, publicID)
		if res["url"] == "" {
			continue
		}
		images = append(images, models.RoomImage{URL: res["url"], Filename: res["filename"]})
	}
	return images
}

func CreateRoom(ctx iris.Context) {
	var input RoomInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var category models.Category
	if err := storage.DB.First(&category, input.Category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Category not found", ctx)
			return
		}
		utils.LogInternalServerError(err, ctx)
		return
	}

	status := input.Status
	if status == "" {
		status = models.RoomAvailable
	}
	if !slices.Contains(roomStatuses, status) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid room status", ctx)
		return
	}

	images, _ := json.Marshal(uploadRoomImages(input.RoomNumber, input.Images))

	room := models.Room{
		CategoryID: category.ID,
		RoomNumber: input.RoomNumber,
		Images:     images,
		Status:     status,
	}

	if err := storage.DB.Create(&room).Error; err != nil {
		utils.LogInternalServerError(err, ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"message": "Room created successfully",
		"room":    &room,
	})
}

func GetRooms(ctx iris.Context) {
	var rooms []models.Room
	if err := storage.DB.Preload("Category").Order("room_number ASC").Find(&rooms).Error; err != nil {
		utils.LogInternalServerError(err, ctx)
		return
	}

	ctx.JSON(rooms)
}

func GetRoomByID(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var room models.Room
	if err := storage.DB.Preload("Category").First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Room not found", ctx)
			return
		}
		utils.LogInternalServerError(err, ctx)
		return
	}

	ctx.JSON(&room)
}

// UpdateRoom handles category/number changes, image add/remove and the
// maintenance status toggle. Booking lifecycle transitions also write room
// status, independently of this handler.
func UpdateRoom(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var input UpdateRoomInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var room models.Room
	if err := storage.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Room not found", ctx)
			return
		}
		utils.LogInternalServerError(err, ctx)
		return
	}

	if input.Category != 0 {
		var category models.Category
		if err := storage.DB.First(&category, input.Category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.CreateError(iris.StatusNotFound, "Not Found", "Category not found", ctx)
				return
			}
			utils.LogInternalServerError(err, ctx)
			return
		}
		room.CategoryID = category.ID
	}

	if input.RoomNumber != "" {
		room.RoomNumber = input.RoomNumber
	}

	if input.Status != "" {
		if !slices.Contains(roomStatuses, input.Status) {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid room status", ctx)
			return
		}
		room.Status = input.Status
	}

	var images []models.RoomImage
	if room.Images != nil {
		json.Unmarshal(room.Images, &images)
	}

	if len(input.ImagesToDelete) > 0 {
		kept := images[:0]
		for _, img := range images {
			if !slices.Contains(input.ImagesToDelete, img.Filename) {
				kept = append(kept, img)
			}
		}
		images = kept
	}

	if len(input.Images) > 0 {
		images = append(images, uploadRoomImages(room.RoomNumber, input.Images)...)
	}

	room.Images, _ = json.Marshal(images)

	if err := storage.DB.Save(&room).Error; err != nil {
		utils.LogInternalServerError(err, ctx)
		return
	}

	utils.Audit(ctx, "room.update", "room", room.ID, nil, &room)

	ctx.JSON(iris.Map{
		"message": "Room updated successfully",
		"room":    &room,
	})
}

func DeleteRoom(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var room models.Room
	if err := storage.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Room not found", ctx)
			return
		}
		utils.LogInternalServerError(err, ctx)
		return
	}

	if err := storage.DB.Delete(&room).Error; err != nil {
		utils.LogInternalServerError(err, ctx)
		return
	}

	utils.Audit(ctx, "room.delete", "room", room.ID, &room, nil)

	ctx.JSON(iris.Map{"message": "Room deleted successfully"})
}
