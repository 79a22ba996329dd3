package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasbessegato/TrokaiBackend/internal/models"
	"github.com/lucasbessegato/TrokaiBackend/internal/proposal"
)

// Exercises the full exchange flow: B proposes P2-for-P1 to A, A accepts.
func TestProposalFlow(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProposalHandler{Svc: newProposalService(db)}

	userA := createUser(t, db, "A", "5511999999999")
	userB := createUser(t, db, "B", "")
	p1 := createProduct(t, db, userA, "P1")
	p2 := createProduct(t, db, userB, "P2")

	// B proposes
	rec, c := jsonCtx(t, e, http.MethodPost, "/api/v1/proposal", map[string]any{
		"product_offered_id":   p2.ID,
		"product_requested_id": p1.ID,
		"to_user_id":           userA.ID,
		"message":              "troco?",
	}, userB.ID)
	require.NoError(t, h.CreateProposal(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Proposal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, models.ProposalPending, created.Status)

	var toA []models.Notification
	require.NoError(t, db.Where("user_id = ?", userA.ID).Find(&toA).Error)
	require.Len(t, toA, 1)
	assert.Equal(t, "Nova proposta de B", toA[0].Title)

	// A accepts
	rec, c = jsonCtx(t, e, http.MethodPatch, "/api/v1/proposal/:id/status", map[string]any{
		"status": "accepted",
	}, userA.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(created.ID)))
	require.NoError(t, h.UpdateProposalStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var accepted models.Proposal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	assert.Equal(t, models.ProposalAccepted, accepted.Status)

	var toB []models.Notification
	require.NoError(t, db.Where("user_id = ?", userB.ID).Find(&toB).Error)
	require.Len(t, toB, 1)
	assert.Equal(t, models.NotificationProposalAccepted, toB[0].Type)
	assert.Equal(t, "https://wa.me/5511999999999", toB[0].LinkTo)
}

func TestGetProposals_TabFiltering(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProposalHandler{Svc: newProposalService(db)}

	userA := createUser(t, db, "A", "")
	userB := createUser(t, db, "B", "")
	p1 := createProduct(t, db, userA, "P1")
	p2 := createProduct(t, db, userB, "P2")

	_, err := h.Svc.Create(t.Context(), userB.ID, proposal.CreateRequest{
		ProductOfferedID:   p2.ID,
		ProductRequestedID: p1.ID,
		ToUserID:           userA.ID,
		Message:            "troco?",
	})
	require.NoError(t, err)

	list := func(actorID uint, tab string) []models.Proposal {
		rec, c := jsonCtx(t, e, http.MethodGet, "/api/v1/proposal?tab="+tab, nil, actorID)
		require.NoError(t, h.GetProposals(c))
		require.Equal(t, http.StatusOK, rec.Code)
		var items []models.Proposal
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		return items
	}

	assert.Len(t, list(userA.ID, "recebidas"), 1)
	assert.Len(t, list(userB.ID, "enviadas"), 1)
	assert.Empty(t, list(userA.ID, "enviadas"))
	assert.Empty(t, list(userB.ID, "recebidas"))
	assert.Empty(t, list(userA.ID, ""), "missing tab must not return everything")
}

func TestGetProposal_CrossTenantIsNotFound(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProposalHandler{Svc: newProposalService(db)}

	userA := createUser(t, db, "A", "")
	userB := createUser(t, db, "B", "")
	stranger := createUser(t, db, "C", "")
	p1 := createProduct(t, db, userA, "P1")
	p2 := createProduct(t, db, userB, "P2")

	p, err := h.Svc.Create(t.Context(), userB.ID, proposal.CreateRequest{
		ProductOfferedID:   p2.ID,
		ProductRequestedID: p1.ID,
		ToUserID:           userA.ID,
	})
	require.NoError(t, err)

	_, c := jsonCtx(t, e, http.MethodGet, "/api/v1/proposal/:id", nil, stranger.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(p.ID)))
	requireHTTPError(t, h.GetProposal(c), http.StatusNotFound)

	_, c = jsonCtx(t, e, http.MethodPatch, "/api/v1/proposal/:id/status", map[string]any{"status": "accepted"}, stranger.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(p.ID)))
	requireHTTPError(t, h.UpdateProposalStatus(c), http.StatusNotFound)
}

func TestUpdateProposalStatus_TerminalEdgeIsBadRequest(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProposalHandler{Svc: newProposalService(db)}

	userA := createUser(t, db, "A", "")
	userB := createUser(t, db, "B", "")
	p1 := createProduct(t, db, userA, "P1")
	p2 := createProduct(t, db, userB, "P2")

	p, err := h.Svc.Create(t.Context(), userB.ID, proposal.CreateRequest{
		ProductOfferedID:   p2.ID,
		ProductRequestedID: p1.ID,
		ToUserID:           userA.ID,
	})
	require.NoError(t, err)

	_, err = h.Svc.UpdateStatus(t.Context(), userA.ID, p.ID, models.ProposalRejected)
	require.NoError(t, err)

	_, c := jsonCtx(t, e, http.MethodPatch, "/api/v1/proposal/:id/status", map[string]any{"status": "accepted"}, userA.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(p.ID)))
	requireHTTPError(t, h.UpdateProposalStatus(c), http.StatusBadRequest)
}
