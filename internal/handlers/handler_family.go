package handlers

import (
	"log/slog"
	"net/http"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	portssvc "github.com/fintrove/family_finance_app/internal/core/ports/services"
	"github.com/fintrove/family_finance_app/internal/dto"
	"github.com/fintrove/family_finance_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// familyHandler handles HTTP requests related to families, their members,
// invitations and join requests.
type familyHandler struct {
	familyService portssvc.FamilySvcFacade
	ledgerService portssvc.LedgerSvcFacade
}

func newFamilyHandler(fs portssvc.FamilySvcFacade, ls portssvc.LedgerSvcFacade) *familyHandler {
	return &familyHandler{familyService: fs, ledgerService: ls}
}

// registerFamilyRoutes registers routes related to families.
func registerFamilyRoutes(rg *gin.RouterGroup, familyService portssvc.FamilySvcFacade, ledgerService portssvc.LedgerSvcFacade) {
	h := newFamilyHandler(familyService, ledgerService)

	families := rg.Group("/families")
	{
		families.POST("", h.createFamily)
		families.GET("", h.listMyFamilies)
		families.GET("/:id", h.getFamily)
		families.PUT("/:id", h.updateFamily)
		families.DELETE("/:id", h.deleteFamily)
		families.GET("/:id/transactions", h.listFamilyTransactions)

		families.GET("/:id/members", h.listMembers)
		families.PUT("/:id/members/:userID", h.updateMember)
		families.DELETE("/:id/members/:userID", h.removeMember)
		families.POST("/:id/leave", h.leaveFamily)

		families.POST("/:id/invitations", h.createInvitation)
		families.GET("/:id/invitations", h.listInvitations)

		families.POST("/:id/join-requests", h.requestToJoin)
		families.GET("/:id/join-requests", h.listJoinRequests)
		families.POST("/:id/join-requests/:requestID/review", h.reviewJoinRequest)
	}

	// Invitation acceptance is token addressed; the invitee does not know the
	// family ID yet.
	invitations := rg.Group("/invitations")
	{
		invitations.POST("/:token/accept", h.acceptInvitation)
		invitations.POST("/:token/decline", h.declineInvitation)
	}
}

// createFamily godoc
// @Summary Create a family
// @Description Creates a family with the logged-in user as owner
// @Tags families
// @Accept json
// @Produce json
// @Param family body dto.CreateFamilyRequest true "Family details"
// @Success 201 {object} dto.FamilyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /families [post]
func (h *familyHandler) createFamily(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	family, err := h.familyService.CreateFamily(c.Request.Context(), req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create family")
		return
	}

	logger.Info("Family created", slog.String("family_id", family.FamilyID))
	c.JSON(http.StatusCreated, dto.ToFamilyResponse(family))
}

// getFamily godoc
// @Summary Get a family by ID
// @Tags families
// @Produce json
// @Param id path string true "Family ID"
// @Success 200 {object} dto.FamilyResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /families/{id} [get]
func (h *familyHandler) getFamily(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	family, err := h.familyService.GetFamily(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve family")
		return
	}
	c.JSON(http.StatusOK, dto.ToFamilyResponse(family))
}

// listMyFamilies godoc
// @Summary List the user's families
// @Tags families
// @Produce json
// @Success 200 {array} dto.FamilyResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /families [get]
func (h *familyHandler) listMyFamilies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	families, err := h.familyService.ListMyFamilies(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list families")
		return
	}
	c.JSON(http.StatusOK, dto.ToFamilyResponses(families))
}

// updateFamily godoc
// @Summary Update a family
// @Description Updates family settings; owner or admin only
// @Tags families
// @Accept json
// @Produce json
// @Param id path string true "Family ID"
// @Param family body dto.UpdateFamilyRequest true "Family changes"
// @Success 200 {object} dto.FamilyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /families/{id} [put]
func (h *familyHandler) updateFamily(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	family, err := h.familyService.UpdateFamily(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update family")
		return
	}
	c.JSON(http.StatusOK, dto.ToFamilyResponse(family))
}

// deleteFamily godoc
// @Summary Delete a family
// @Description Deletes the family and all membership data; owner only
// @Tags families
// @Produce json
// @Param id path string true "Family ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /families/{id} [delete]
func (h *familyHandler) deleteFamily(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.familyService.DeleteFamily(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete family")
		return
	}
	c.Status(http.StatusNoContent)
}

// listFamilyTransactions godoc
// @Summary List a family's transactions
// @Description Pages through the family-scoped transaction history, newest first
// @Tags families
// @Produce json
// @Param id path string true "Family ID"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Opaque pagination token"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /families/{id}/transactions [get]
func (h *familyHandler) listFamilyTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.ledgerService.ListFamilyTransactions(c.Request.Context(), c.Param("id"), userID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list family transactions")
		return
	}
	c.JSON(http.StatusOK, page)
}

// listMembers godoc
// @Summary List family members
// @Tags families
// @Produce json
// @Param id path string true "Family ID"
// @Success 200 {array} dto.FamilyMemberResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /families/{id}/members [get]
func (h *familyHandler) listMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	familyID := c.Param("id")
	family, err := h.familyService.GetFamily(c.Request.Context(), familyID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve family")
		return
	}

	members, err := h.familyService.ListMembers(c.Request.Context(), familyID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list members")
		return
	}
	c.JSON(http.StatusOK, dto.ToFamilyMemberResponses(members, family.CreatedByUserID))
}

// updateMember godoc
// @Summary Update a member's role or capabilities
// @Description Changes the member's role and flags; owner or admin only, the owner row is untouchable
// @Tags families
// @Accept json
// @Produce json
// @Param id path string true "Family ID"
// @Param userID path string true "Member user ID"
// @Param member body dto.UpdateMemberRequest true "Member changes"
// @Success 200 {object} dto.FamilyMemberResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /families/{id}/members/{userID} [put]
func (h *familyHandler) updateMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	member, err := h.familyService.UpdateMember(c.Request.Context(), c.Param("id"), c.Param("userID"), req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update member")
		return
	}
	c.JSON(http.StatusOK, dto.ToFamilyMemberResponse(member, ""))
}

// removeMember godoc
// @Summary Remove a family member
// @Tags families
// @Produce json
// @Param id path string true "Family ID"
// @Param userID path string true "Member user ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /families/{id}/members/{userID} [delete]
func (h *familyHandler) removeMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.familyService.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("userID"), userID); err != nil {
		respondServiceError(c, logger, err, "Failed to remove member")
		return
	}
	c.Status(http.StatusNoContent)
}

// leaveFamily godoc
// @Summary Leave a family
// @Description Deactivates the user's own membership; the owner cannot leave
// @Tags families
// @Produce json
// @Param id path string true "Family ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Owner cannot leave"
// @Security BearerAuth
// @Router /families/{id}/leave [post]
func (h *familyHandler) leaveFamily(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.familyService.LeaveFamily(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondServiceError(c, logger, err, "Failed to leave family")
		return
	}
	c.Status(http.StatusNoContent)
}

// createInvitation godoc
// @Summary Invite a user into the family
// @Description Creates a time-limited invitation addressed to an email
// @Tags families
// @Accept json
// @Produce json
// @Param id path string true "Family ID"
// @Param invitation body dto.CreateInvitationRequest true "Invitation details"
// @Success 201 {object} dto.InvitationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Missing can_invite_members"
// @Failure 409 {object} ErrorResponse "Pending invitation already exists"
// @Security BearerAuth
// @Router /families/{id}/invitations [post]
func (h *familyHandler) createInvitation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	invitation, err := h.familyService.CreateInvitation(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create invitation")
		return
	}

	logger.Info("Invitation created", slog.String("invitation_id", invitation.InvitationID))
	c.JSON(http.StatusCreated, dto.ToInvitationResponse(invitation))
}

// listInvitations godoc
// @Summary List family invitations
// @Tags families
// @Produce json
// @Param id path string true "Family ID"
// @Success 200 {array} dto.InvitationResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /families/{id}/invitations [get]
func (h *familyHandler) listInvitations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	invitations, err := h.familyService.ListInvitations(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list invitations")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvitationResponses(invitations))
}

// acceptInvitation godoc
// @Summary Accept an invitation
// @Description Joins the family named by the invitation token; fails if the invitation expired or the family is full
// @Tags families
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} dto.FamilyMemberResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Expired, already a member, or family full"
// @Security BearerAuth
// @Router /invitations/{token}/accept [post]
func (h *familyHandler) acceptInvitation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	member, err := h.familyService.AcceptInvitation(c.Request.Context(), c.Param("token"), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to accept invitation")
		return
	}

	logger.Info("Invitation accepted", slog.String("family_id", member.FamilyID))
	c.JSON(http.StatusOK, dto.ToFamilyMemberResponse(member, ""))
}

// declineInvitation godoc
// @Summary Decline an invitation
// @Tags families
// @Produce json
// @Param token path string true "Invitation token"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /invitations/{token}/decline [post]
func (h *familyHandler) declineInvitation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.familyService.DeclineInvitation(c.Request.Context(), c.Param("token"), userID); err != nil {
		respondServiceError(c, logger, err, "Failed to decline invitation")
		return
	}
	c.Status(http.StatusNoContent)
}

// requestToJoin godoc
// @Summary Request to join a family
// @Tags families
// @Accept json
// @Produce json
// @Param id path string true "Family ID"
// @Param request body dto.CreateJoinRequestRequest true "Join request message"
// @Success 201 {object} dto.JoinRequestResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already a member or already pending"
// @Security BearerAuth
// @Router /families/{id}/join-requests [post]
func (h *familyHandler) requestToJoin(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateJoinRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	request, err := h.familyService.RequestToJoin(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to request to join")
		return
	}
	c.JSON(http.StatusCreated, dto.ToJoinRequestResponse(request))
}

// listJoinRequests godoc
// @Summary List join requests
// @Description Lists the family's join requests, optionally filtered by status; owner or admin only
// @Tags families
// @Produce json
// @Param id path string true "Family ID"
// @Param status query string false "Status filter" Enums(PENDING, APPROVED, REJECTED)
// @Success 200 {array} dto.JoinRequestResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /families/{id}/join-requests [get]
func (h *familyHandler) listJoinRequests(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var status *domain.JoinRequestStatus
	if v := c.Query("status"); v != "" {
		s := domain.JoinRequestStatus(v)
		status = &s
	}

	requests, err := h.familyService.ListJoinRequests(c.Request.Context(), c.Param("id"), userID, status)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list join requests")
		return
	}
	c.JSON(http.StatusOK, dto.ToJoinRequestResponses(requests))
}

// reviewJoinRequest godoc
// @Summary Review a join request
// @Description Approves or rejects a pending join request; approval activates the membership if capacity allows
// @Tags families
// @Accept json
// @Produce json
// @Param id path string true "Family ID"
// @Param requestID path string true "Join request ID"
// @Param review body dto.ReviewJoinRequestRequest true "Review decision"
// @Success 200 {object} dto.JoinRequestResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "No longer pending or family full"
// @Security BearerAuth
// @Router /families/{id}/join-requests/{requestID}/review [post]
func (h *familyHandler) reviewJoinRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.ReviewJoinRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	request, err := h.familyService.ReviewJoinRequest(c.Request.Context(), c.Param("id"), c.Param("requestID"), req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to review join request")
		return
	}
	c.JSON(http.StatusOK, dto.ToJoinRequestResponse(request))
}
