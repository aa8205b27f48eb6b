package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/researchdt/internal/common"
	"github.com/dmitrijs2005/researchdt/internal/server/apierror"
	"github.com/dmitrijs2005/researchdt/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) handleRegister(c *gin.Context) {
	var req createUserRequest
	if err := s.bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	acc, err := s.accounts.Create(ctx, req.input())
	if err != nil {
		fail(c, err)
		return
	}
	pair, err := s.tokens.Issue(ctx, acc.User.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserWithTokens(acc, pair))
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := s.bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	acc, err := s.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	pair, err := s.tokens.Issue(ctx, acc.User.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserWithTokens(acc, pair))
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if err := s.bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	pair, err := s.tokens.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, refreshResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

func (s *Server) handleLogout(c *gin.Context) {
	var req refreshRequest
	if err := s.bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	if err := s.tokens.Revoke(c.Request.Context(), req.Refresh); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: "Logged out"})
}

// ownedAccount loads the account named in the path and checks that the
// caller owns it: 401, then 404, then 403.
func (s *Server) ownedAccount(c *gin.Context) (*models.Account, bool) {
	claims, ok := claimsFrom(c)
	if !ok {
		fail(c, common.ErrNotAuthenticated)
		return nil, false
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, apierror.NotFound())
		return nil, false
	}

	acc, err := s.accounts.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	if acc.User.ID != claims.UserID {
		fail(c, common.ErrPermissionDenied)
		return nil, false
	}
	return acc, true
}

func (s *Server) handleGetUser(c *gin.Context) {
	acc, ok := s.ownedAccount(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newUserDetail(acc))
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	acc, ok := s.ownedAccount(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := s.bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	updated, err := s.accounts.Update(c.Request.Context(), &acc.User, req.input())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserDetail(updated))
}

func (s *Server) handleRequestReset(c *gin.Context) {
	var req resetRequest
	if err := s.bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	if err := s.reset.RequestReset(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{
		Success: fmt.Sprintf("We have sent you a code to reset your password, key lifetime %d sec",
			int(s.resetTTL/time.Second)),
	})
}

func (s *Server) handleConfirmReset(c *gin.Context) {
	var req resetConfirmRequest
	if err := s.bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	if err := s.reset.ConfirmReset(c.Request.Context(), req.Email, req.Code, req.Password); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: "Done"})
}

func methodNotAllowed(c *gin.Context) {
	fail(c, apierror.MethodNotAllowed(c.Request.Method))
}

func notFound(c *gin.Context) {
	fail(c, apierror.NotFound())
}
