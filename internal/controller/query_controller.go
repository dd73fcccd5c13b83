package controller

import (
	"errors"

	"simbah-be/internal/constant"
	"simbah-be/internal/dto"
	"simbah-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
}

type queryController struct {
	queryService service.IQueryService
}

func NewQueryController(queryService service.IQueryService) IQueryController {
	return &queryController{
		queryService: queryService,
	}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/query/v1")
	h.Post("", c.Ask)
}

func (c *queryController) Ask(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	res, err := c.queryService.Ask(ctx.Context(), &req)
	if err != nil {
		var qe *service.QueryError
		if errors.As(err, &qe) {
			body := fiber.Map{"error": qe.Msg}
			if qe.Reason != "" {
				body["reason"] = qe.Reason
			}
			if qe.SQL != "" {
				body["sql"] = qe.SQL
			}
			if qe.Detail != "" {
				body["detail"] = qe.Detail
			}
			return ctx.Status(qe.Status).JSON(body)
		}
		return err
	}

	if res.PDF != nil {
		ctx.Set(fiber.HeaderContentType, "application/pdf")
		ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+constant.ReportFilename+`"`)
		return ctx.Send(res.PDF)
	}

	return ctx.JSON(res.Response)
}
