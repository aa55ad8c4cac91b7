package controller

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"terravista/internal/httpx"
	"terravista/internal/repository"
)

// searchCorpusLimit caps how many rows feed the per-request index
const searchCorpusLimit = 1000

func ok200(c *fiber.Ctx, message string, data any) error {
	return httpx.OK(c, message, data)
}

func queryOptions(c *fiber.Ctx) repository.QueryOptions {
	return repository.QueryOptions{
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 10),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder", "asc"),
	}
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, goerrors.New("Invalid id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}
	return id, nil
}
