package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/dmitrijs2005/bookledger/internal/server/services"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token,omitempty"`
	User    models.User `json:"user"`
}

type borrowRequest struct {
	UserID string `json:"userId"`
	BookID string `json:"bookId" binding:"required"`
}

type borrowResponse struct {
	Success       bool      `json:"success"`
	TransactionID string    `json:"transactionId"`
	DueDate       time.Time `json:"dueDate"`
}

type returnRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
}

type addBookRequest struct {
	Title    string `json:"title" binding:"required"`
	Author   string `json:"author" binding:"required"`
	ISBN     string `json:"isbn"`
	Category string `json:"category"`
	Copies   int    `json:"copies" binding:"required,min=1"`
}

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *HTTPServer) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, email and password are required")
		return
	}

	user, err := s.svc.Identity.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{Success: true, User: *user})
}

func (s *HTTPServer) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	session, err := s.svc.Identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Success: true, Token: session.AccessToken, User: session.User})
}

func (s *HTTPServer) handleGuest(c *gin.Context) {
	session, err := s.svc.Identity.Guest(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Success: true, Token: session.AccessToken, User: session.User})
}

func (s *HTTPServer) handleCatalog(c *gin.Context) {
	books, err := s.svc.Catalog.ListCatalog(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// handleBorrow lends a book to the caller. Admins may borrow on behalf of
// another user by naming userId.
func (s *HTTPServer) handleBorrow(c *gin.Context) {
	var req borrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "book id is required")
		return
	}

	p := principal(c)
	if !p.Role.CanBorrow() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "guests cannot borrow books"})
		return
	}

	userID := p.UserID
	if req.UserID != "" && req.UserID != p.UserID {
		if p.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "cannot borrow for another user"})
			return
		}
		userID = req.UserID
	}

	receipt, err := s.svc.Circulation.Borrow(c.Request.Context(), userID, req.BookID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, borrowResponse{Success: true, TransactionID: receipt.LoanID, DueDate: receipt.DueAt})
}

func (s *HTTPServer) handleBorrowed(c *gin.Context) {
	userID := c.Param("userId")
	p := principal(c)
	if p.Role != models.RoleAdmin && userID != p.UserID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	loans, err := s.svc.Circulation.ListUserLoans(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loans)
}

func (s *HTTPServer) handleReturn(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "transaction id is required")
		return
	}

	ctx := c.Request.Context()
	p := principal(c)

	var err error
	switch p.Role {
	case models.RoleAdmin:
		err = s.svc.Circulation.Return(ctx, req.TransactionID)
	default:
		err = s.svc.Circulation.ReturnOwned(ctx, p.UserID, req.TransactionID)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *HTTPServer) handleTransactions(c *gin.Context) {
	loans, err := s.svc.Circulation.ListAllLoans(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loans)
}

func (s *HTTPServer) handleStats(c *gin.Context) {
	stats, err := s.svc.Stats.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *HTTPServer) handleReconcile(c *gin.Context) {
	report, err := s.svc.Reconciler.Reconcile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *HTTPServer) handleAddBook(c *gin.Context) {
	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title, author and copies (>= 1) are required")
		return
	}

	book, err := s.svc.Catalog.AddBook(c.Request.Context(), services.NewBook{
		Title:    req.Title,
		Author:   req.Author,
		ISBN:     req.ISBN,
		Category: req.Category,
		Copies:   req.Copies,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}
