package grpc

import (
	"context"

	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/dmitrijs2005/bookledger/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {

	return &PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*SessionResponse, error) {

	user, err := s.identity.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &SessionResponse{User: *user}, nil

}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*SessionResponse, error) {

	session, err := s.identity.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	return &SessionResponse{AccessToken: session.AccessToken, User: session.User}, nil

}

func (s *GRPCServer) Guest(ctx context.Context, req *GuestRequest) (*SessionResponse, error) {

	session, err := s.identity.Guest(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return &SessionResponse{AccessToken: session.AccessToken, User: session.User}, nil

}

func (s *GRPCServer) ListCatalog(ctx context.Context, req *ListCatalogRequest) (*ListCatalogResponse, error) {

	books, err := s.catalog.ListCatalog(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return &ListCatalogResponse{Books: books}, nil

}

func (s *GRPCServer) AddBook(ctx context.Context, req *AddBookRequest) (*models.Book, error) {

	book, err := s.catalog.AddBook(ctx, services.NewBook{
		Title:    req.Title,
		Author:   req.Author,
		ISBN:     req.ISBN,
		Category: req.Category,
		Copies:   req.Copies,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return book, nil

}

func (s *GRPCServer) Borrow(ctx context.Context, req *BorrowRequest) (*BorrowResponse, error) {

	p, _ := PrincipalFromContext(ctx)
	if !p.Role.CanBorrow() {
		return nil, status.Error(codes.PermissionDenied, "guests cannot borrow books")
	}

	userID := p.UserID
	if req.UserID != "" && req.UserID != p.UserID {
		if p.Role != models.RoleAdmin {
			return nil, status.Error(codes.PermissionDenied, "cannot borrow for another user")
		}
		userID = req.UserID
	}

	receipt, err := s.circulation.Borrow(ctx, userID, req.BookID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &BorrowResponse{LoanID: receipt.LoanID, DueAt: receipt.DueAt}, nil

}

func (s *GRPCServer) Return(ctx context.Context, req *ReturnRequest) (*ReturnResponse, error) {

	p, _ := PrincipalFromContext(ctx)

	var err error
	if p.Role == models.RoleAdmin {
		err = s.circulation.Return(ctx, req.LoanID)
	} else {
		err = s.circulation.ReturnOwned(ctx, p.UserID, req.LoanID)
	}
	if err != nil {
		return nil, toStatus(err)
	}

	return &ReturnResponse{}, nil

}

// ListUserLoans lists the caller's loans. Admins may name any user.
func (s *GRPCServer) ListUserLoans(ctx context.Context, req *ListUserLoansRequest) (*LoansResponse, error) {

	p, _ := PrincipalFromContext(ctx)

	userID := req.UserID
	if userID == "" {
		userID = p.UserID
	}
	if userID != p.UserID && p.Role != models.RoleAdmin {
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}

	loans, err := s.circulation.ListUserLoans(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &LoansResponse{Loans: loans}, nil

}

func (s *GRPCServer) ListAllLoans(ctx context.Context, req *ListAllLoansRequest) (*LoansResponse, error) {

	loans, err := s.circulation.ListAllLoans(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return &LoansResponse{Loans: loans}, nil

}

func (s *GRPCServer) Stats(ctx context.Context, req *StatsRequest) (*models.Stats, error) {

	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return stats, nil

}

func (s *GRPCServer) Reconcile(ctx context.Context, req *ReconcileRequest) (*models.ReconcileReport, error) {

	report, err := s.reconciler.Reconcile(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return report, nil

}
