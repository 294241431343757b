package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/codespire/rca-console/internal/catalog"
	"github.com/codespire/rca-console/internal/models"
	"github.com/codespire/rca-console/internal/services"
)

type handlers struct {
	logger  *slog.Logger
	console *services.Console
}

type guidanceBody struct {
	Question    string   `json:"question"`
	PlaybookIDs []string `json:"playbookIds"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, models.Envelope[any]{Success: true, Data: data})
}

func fail(c echo.Context, err error) error {
	return c.JSON(httpStatusFor(err), models.Envelope[any]{Success: false, Message: err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return fail(c, fmt.Errorf("%w: %s", services.ErrInvalidRequest, msg))
}

func (h *handlers) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "SERVING"})
}

func (h *handlers) searchTicket(c echo.Context) error {
	var ticket models.Ticket
	if err := c.Bind(&ticket); err != nil {
		return badRequest(c, "ticket body is not valid JSON")
	}
	ticket.ID = c.Param("id")

	view, err := h.console.Search(c.Request().Context(), ticket)
	switch {
	case err == nil:
		return ok(c, view)
	case errors.Is(err, services.ErrStaleSearch), view.Status == services.StatusError:
		return c.JSON(httpStatusFor(err), models.Envelope[any]{Success: false, Data: view, Message: err.Error()})
	default:
		return fail(c, err)
	}
}

func (h *handlers) ticketView(c echo.Context) error {
	view, err := h.console.View(c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

func (h *handlers) ticketGuidance(c echo.Context) error {
	var body guidanceBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "guidance body is not valid JSON")
	}
	reply, err := h.console.Guidance(c.Request().Context(), c.Param("id"), body.Question)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, reply)
}

func (h *handlers) guidance(c echo.Context) error {
	var body guidanceBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "guidance body is not valid JSON")
	}
	reply, err := h.console.GuidanceFor(c.Request().Context(), body.PlaybookIDs, body.Question)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, reply)
}

func (h *handlers) listPlaybooks(c echo.Context) error {
	q := models.CatalogQuery{
		Text:       c.QueryParam("q"),
		Tag:        c.QueryParam("tag"),
		Sort:       catalog.ParseSortField(c.QueryParam("sort")),
		Descending: strings.EqualFold(c.QueryParam("order"), "desc"),
	}
	if raw := c.QueryParam("priority"); raw != "" {
		if q.Priority = services.ParsePriority(raw); q.Priority == "" {
			return badRequest(c, "unknown priority "+strconv.Quote(raw))
		}
	}
	var err error
	if q.Page, err = intParam(c, "page"); err != nil {
		return badRequest(c, err.Error())
	}
	if q.PageSize, err = intParam(c, "pageSize"); err != nil {
		return badRequest(c, err.Error())
	}

	page, err := h.console.ListCatalog(c.Request().Context(), q)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Envelope[models.CatalogPage]{Success: true, Data: page, Total: page.Total})
}

func (h *handlers) searchPlaybooks(c echo.Context) error {
	req := services.PlaybookSearch{
		Mode:     services.SearchMode(strings.ToLower(c.QueryParam("mode"))),
		Query:    c.QueryParam("q"),
		Tags:     splitTags(c.QueryParams()["tag"]),
		Priority: services.ParsePriority(c.QueryParam("priority")),
	}
	if raw := c.QueryParam("priority"); raw != "" && req.Priority == "" {
		return badRequest(c, "unknown priority "+strconv.Quote(raw))
	}
	candidates, err := h.console.SearchPlaybooks(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Envelope[[]models.PlaybookCandidate]{Success: true, Data: candidates, Total: len(candidates)})
}

func (h *handlers) getPlaybook(c echo.Context) error {
	pb, err := h.console.GetPlaybook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, pb)
}

func (h *handlers) createPlaybook(c echo.Context) error {
	var pb models.Playbook
	if err := c.Bind(&pb); err != nil {
		return badRequest(c, "playbook body is not valid JSON")
	}
	created, err := h.console.CreatePlaybook(c.Request().Context(), pb)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, models.Envelope[models.Playbook]{Success: true, Data: created})
}

func (h *handlers) updatePlaybook(c echo.Context) error {
	var pb models.Playbook
	if err := c.Bind(&pb); err != nil {
		return badRequest(c, "playbook body is not valid JSON")
	}
	updated, err := h.console.UpdatePlaybook(c.Request().Context(), c.Param("id"), pb)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, updated)
}

func (h *handlers) deletePlaybook(c echo.Context) error {
	if err := h.console.DeletePlaybook(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Envelope[any]{Success: true, Message: "playbook deleted"})
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

func splitTags(values []string) []string {
	var tags []string
	for _, v := range values {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
