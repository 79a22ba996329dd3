package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lucasbessegato/TrokaiBackend/internal/events"
	"github.com/lucasbessegato/TrokaiBackend/internal/logging"
	"github.com/lucasbessegato/TrokaiBackend/internal/models"
	"github.com/lucasbessegato/TrokaiBackend/internal/proposal"
)

type ProposalHandler struct {
	Svc      *proposal.Service
	Producer *events.Producer
}

func (h *ProposalHandler) GetProposals(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "proposal.get_proposals")

	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	items, err := h.Svc.List(ctx, actorID, c.QueryParam("tab"))
	if err != nil {
		l.Error("get_proposals_failed", "status", 500, "reason", "cannot list proposals", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list proposals")
	}

	return c.JSON(http.StatusOK, items)
}

func (h *ProposalHandler) GetProposal(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "proposal.get_proposal")

	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	p, err := h.Svc.Get(ctx, actorID, uint(id))
	if err != nil {
		l.Warn("get_proposal_failed", "proposalID", id, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProposalHandler) CreateProposal(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "proposal.create_proposal")

	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req proposal.CreateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_proposal_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.Create(ctx, actorID, req)
	if err != nil {
		l.Warn("create_proposal_failed", "userID", actorID, "error", err)
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicProposalEvents, map[string]interface{}{
		"type":       "proposal_created",
		"proposalID": p.ID,
		"userID":     actorID,
		"toUserID":   p.ToUserID,
	})

	l.Info("create_proposal_success", "proposalID", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *ProposalHandler) UpdateProposalStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "proposal.update_status")

	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var req struct {
		Status models.ProposalStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.UpdateStatus(ctx, actorID, uint(id), req.Status)
	if err != nil {
		l.Warn("update_status_failed", "proposalID", id, "userID", actorID, "error", err)
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicProposalEvents, map[string]interface{}{
		"type":       "proposal_status_changed",
		"proposalID": p.ID,
		"userID":     actorID,
		"status":     p.Status,
	})

	l.Info("update_status_success", "proposalID", p.ID, "status", p.Status)
	return c.JSON(http.StatusOK, p)
}
