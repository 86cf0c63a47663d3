package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/poll-service/internal/api/dto"
	"github.com/spec-kit/poll-service/internal/auth"
	"github.com/spec-kit/poll-service/internal/service"
	apperrors "github.com/spec-kit/poll-service/pkg/util"
)

// PollsHandler exposes the poll lifecycle routes.
type PollsHandler struct {
	polls *service.PollService
}

// NewPollsHandler constructs handler.
func NewPollsHandler(pollService *service.PollService) *PollsHandler {
	return &PollsHandler{polls: pollService}
}

// List handles GET / and GET /polls.
func (h *PollsHandler) List(c *fiber.Ctx) error {
	polls, err := h.polls.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPollListResponse(polls)})
}

// NewForm handles GET /polls/new.
func (h *PollsHandler) NewForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "poll-create"})
}

// Create handles POST /polls.
func (h *PollsHandler) Create(c *fiber.Ctx) error {
	identity, _ := auth.UserFromContext(c)

	var req dto.CreatePollRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	poll, err := h.polls.Create(c.UserContext(), identity, req.Title, req.Options)
	if err != nil {
		return err
	}
	return c.Redirect("/polls/"+poll.ID, fiber.StatusFound)
}

// Show handles GET /polls/:id.
func (h *PollsHandler) Show(c *fiber.Ctx) error {
	poll, err := h.polls.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPollResponse(poll)})
}

// Vote handles POST /polls/:id/vote. Anonymous voting is allowed.
func (h *PollsHandler) Vote(c *fiber.Ctx) error {
	identity, _ := auth.UserFromContext(c)

	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	index, err := strconv.Atoi(strings.TrimSpace(req.Option))
	if err != nil {
		return apperrors.NewValidationError("option index must be a number", nil)
	}

	poll, err := h.polls.Vote(c.UserContext(), identity, c.Params("id"), index)
	if err != nil {
		return err
	}
	return c.Redirect("/polls/"+poll.ID, fiber.StatusFound)
}

// AddOption handles POST /polls/:id/options.
func (h *PollsHandler) AddOption(c *fiber.Ctx) error {
	identity, _ := auth.UserFromContext(c)

	var req dto.AddOptionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	poll, err := h.polls.AddOption(c.UserContext(), identity, c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return c.Redirect("/polls/"+poll.ID, fiber.StatusFound)
}

// Delete handles POST /polls/:id/delete.
func (h *PollsHandler) Delete(c *fiber.Ctx) error {
	identity, _ := auth.UserFromContext(c)

	if err := h.polls.Delete(c.UserContext(), identity, c.Params("id")); err != nil {
		return err
	}
	return c.Redirect("/polls/mine", fiber.StatusFound)
}

// Mine handles GET /polls/mine, a short link to the owned list.
func (h *PollsHandler) Mine(c *fiber.Ctx) error {
	return c.Redirect("/polls/mine/list", fiber.StatusFound)
}

// MineList handles GET /polls/mine/list.
func (h *PollsHandler) MineList(c *fiber.Ctx) error {
	identity, _ := auth.UserFromContext(c)

	polls, err := h.polls.ListOwnedBy(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPollListResponse(polls)})
}
