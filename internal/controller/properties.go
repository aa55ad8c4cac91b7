package controller

import (
	"context"
	"io"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"terravista/internal/httpx"
	"terravista/internal/middleware"
	"terravista/internal/model"
	"terravista/internal/repository"
	"terravista/internal/search"
	"terravista/internal/storage"
)

// PropertiesController exposes the listing endpoints
type PropertiesController struct {
	properties *repository.PropertiesRepository
	posts      *repository.PostsRepository
	store      storage.ObjectStore
}

// NewPropertiesController creates the properties controller
func NewPropertiesController(properties *repository.PropertiesRepository, posts *repository.PostsRepository, store storage.ObjectStore) *PropertiesController {
	return &PropertiesController{
		properties: properties,
		posts:      posts,
		store:      store,
	}
}

// RegisterRoutes mounts the listing endpoints. Reads are public;
// creation requires an authenticated author, mutation an admin.
func (pc *PropertiesController) RegisterRoutes(r fiber.Router, authorGate, adminGate fiber.Handler) {
	r.Post("/", authorGate, pc.Create)
	r.Get("/", pc.List)
	r.Get("/search", pc.Search)
	r.Get("/:id", pc.Get)
	r.Patch("/:id", adminGate, pc.Update)
	r.Delete("/:id", adminGate, pc.Delete)
}

type propertyRequest struct {
	Name         string  `json:"propertyName" form:"propertyName"`
	Location     string  `json:"location" form:"location"`
	Description  string  `json:"description" form:"description"`
	Bedroom      int     `json:"bedroom" form:"bedroom"`
	Bathroom     int     `json:"bathroom" form:"bathroom"`
	BuildingArea float64 `json:"buildingArea" form:"buildingArea"`
	LandArea     float64 `json:"landArea" form:"landArea"`
	Floor        int     `json:"floor" form:"floor"`
	Year         int     `json:"year" form:"year"`
}

func (r propertyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Location, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Bedroom, validation.Min(0)),
		validation.Field(&r.Bathroom, validation.Min(0)),
		validation.Field(&r.BuildingArea, validation.Min(0.0)),
		validation.Field(&r.LandArea, validation.Min(0.0)),
	)
}

// Create publishes a listing. Images arrive as multipart files, get
// normalized, and land in object storage before the row is written.
func (pc *PropertiesController) Create(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return goerrors.New("Please authenticate", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}

	form := &formParser{c: c}
	req := propertyRequest{
		Name:         c.FormValue("propertyName"),
		Location:     c.FormValue("location"),
		Description:  c.FormValue("description"),
		Bedroom:      form.Int("bedroom"),
		Bathroom:     form.Int("bathroom"),
		BuildingArea: form.Float("buildingArea"),
		LandArea:     form.Float("landArea"),
		Floor:        form.Int("floor"),
		Year:         form.Int("year"),
	}
	if form.err != nil {
		return form.err
	}
	if err := req.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest)
	}

	urls, err := pc.uploadImages(c)
	if err != nil {
		return err
	}

	property, err := pc.properties.Create(c.UserContext(), &model.Property{
		Images:       urls,
		Name:         req.Name,
		Location:     req.Location,
		Description:  req.Description,
		Bedroom:      req.Bedroom,
		Bathroom:     req.Bathroom,
		BuildingArea: req.BuildingArea,
		LandArea:     req.LandArea,
		Floor:        req.Floor,
		Year:         req.Year,
	})
	if err != nil {
		return err
	}

	if _, err := pc.posts.Create(c.UserContext(), &model.Post{
		PropertyID: property.ID,
		UserID:     user.ID,
	}); err != nil {
		return err
	}

	return httpx.Created(c, "Property created", property)
}

// List returns a page of listings
func (pc *PropertiesController) List(c *fiber.Ctx) error {
	properties, err := pc.properties.List(c.UserContext(), queryOptions(c))
	if err != nil {
		return err
	}
	return ok200(c, "Properties found", properties)
}

// Get returns a single listing
func (pc *PropertiesController) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	property, err := pc.properties.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	return ok200(c, "Property found", property)
}

// Search runs a free-text query over names and locations
func (pc *PropertiesController) Search(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return goerrors.New("Missing search query", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	properties, err := pc.properties.All(c.UserContext())
	if err != nil {
		return err
	}

	docs := make([]search.Document, 0, len(properties))
	byID := make(map[uuid.UUID]*model.Property, len(properties))
	for _, property := range properties {
		byID[property.ID] = property
		docs = append(docs, search.Document{
			ID: property.ID,
			Fields: map[string]any{
				"name":        property.Name,
				"location":    property.Location,
				"description": property.Description,
			},
		})
	}

	ids, err := search.Query(docs, q)
	if err != nil {
		return err
	}

	matches := make([]*model.Property, 0, len(ids))
	for _, id := range ids {
		if property, ok := byID[id]; ok {
			matches = append(matches, property)
		}
	}

	return ok200(c, "Properties found", matches)
}

// Update applies a partial update to a listing
func (pc *PropertiesController) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req propertyUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	property, err := pc.properties.Update(c.UserContext(), id, &repository.PropertyPatch{
		Name:         req.Name,
		Location:     req.Location,
		Description:  req.Description,
		Bedroom:      req.Bedroom,
		Bathroom:     req.Bathroom,
		BuildingArea: req.BuildingArea,
		LandArea:     req.LandArea,
		Floor:        req.Floor,
		Year:         req.Year,
	})
	if err != nil {
		return err
	}

	return ok200(c, "Property updated", property)
}

// Delete removes a listing and its author links
func (pc *PropertiesController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := pc.properties.Delete(c.UserContext(), id); err != nil {
		return err
	}

	if err := pc.posts.DeleteByProperty(c.UserContext(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type propertyUpdateRequest struct {
	Name         *string  `json:"propertyName"`
	Location     *string  `json:"location"`
	Description  *string  `json:"description"`
	Bedroom      *int     `json:"bedroom"`
	Bathroom     *int     `json:"bathroom"`
	BuildingArea *float64 `json:"buildingArea"`
	LandArea     *float64 `json:"landArea"`
	Floor        *int     `json:"floor"`
	Year         *int     `json:"year"`
}

func (r propertyUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(0, 255)),
		validation.Field(&r.Location, validation.Length(0, 255)),
	)
}

func (pc *PropertiesController) uploadImages(c *fiber.Ctx) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// no multipart body means no images
		return nil, nil
	}

	files := form.File["propertyImage"]
	urls := make([]string, 0, len(files))

	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, err
		}

		normalized, err := storage.NormalizeImage(data)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "Unsupported image format").
				WithCode(goerrors.CodeBadRequest)
		}

		url, err := pc.uploadOne(c.UserContext(), normalized)
		if err != nil {
			return nil, err
		}

		urls = append(urls, url)
	}

	return urls, nil
}

func (pc *PropertiesController) uploadOne(ctx context.Context, body []byte) (string, error) {
	return pc.store.Upload(ctx, storage.ImageKey(), "image/jpeg", body)
}

// formParser reads numeric form fields, holding the first parse error.
// Absent fields read as zero; malformed ones are rejected instead of
// being coerced to zero.
type formParser struct {
	c   *fiber.Ctx
	err error
}

func (f *formParser) Int(key string) int {
	raw := f.c.FormValue(key)
	if raw == "" || f.err != nil {
		return 0
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		f.err = badFormValue(key)
	}
	return v
}

func (f *formParser) Float(key string) float64 {
	raw := f.c.FormValue(key)
	if raw == "" || f.err != nil {
		return 0
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.err = badFormValue(key)
	}
	return v
}

func badFormValue(key string) error {
	return goerrors.New("Invalid numeric value for "+key, goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest)
}
