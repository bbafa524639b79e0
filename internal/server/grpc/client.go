package grpc

import (
	"context"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client calls bookledger.Circulation over an existing connection using the
// JSON codec. SetAccessToken attaches a token to every subsequent call.
type Client struct {
	conn        grpc.ClientConnInterface
	accessToken string
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) SetAccessToken(token string) {
	c.accessToken = token
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	if c.accessToken != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, c.accessToken)
	}
	return c.conn.Invoke(ctx, fullMethod(method), in, out, grpc.CallContentSubtype(CodecName))
}

func call[T any](ctx context.Context, c *Client, method string, in any) (*T, error) {
	out := new(T)
	if err := c.invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	return call[PingResponse](ctx, c, "Ping", &PingRequest{})
}

func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*SessionResponse, error) {
	return call[SessionResponse](ctx, c, "Register", req)
}

func (c *Client) Login(ctx context.Context, req *LoginRequest) (*SessionResponse, error) {
	return call[SessionResponse](ctx, c, "Login", req)
}

func (c *Client) Guest(ctx context.Context) (*SessionResponse, error) {
	return call[SessionResponse](ctx, c, "Guest", &GuestRequest{})
}

func (c *Client) ListCatalog(ctx context.Context) (*ListCatalogResponse, error) {
	return call[ListCatalogResponse](ctx, c, "ListCatalog", &ListCatalogRequest{})
}

func (c *Client) AddBook(ctx context.Context, req *AddBookRequest) (*models.Book, error) {
	return call[models.Book](ctx, c, "AddBook", req)
}

func (c *Client) Borrow(ctx context.Context, req *BorrowRequest) (*BorrowResponse, error) {
	return call[BorrowResponse](ctx, c, "Borrow", req)
}

func (c *Client) Return(ctx context.Context, loanID string) error {
	return c.invoke(ctx, "Return", &ReturnRequest{LoanID: loanID}, new(ReturnResponse))
}

func (c *Client) ListUserLoans(ctx context.Context, userID string) (*LoansResponse, error) {
	return call[LoansResponse](ctx, c, "ListUserLoans", &ListUserLoansRequest{UserID: userID})
}

func (c *Client) ListAllLoans(ctx context.Context) (*LoansResponse, error) {
	return call[LoansResponse](ctx, c, "ListAllLoans", &ListAllLoansRequest{})
}

func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	return call[models.Stats](ctx, c, "Stats", &StatsRequest{})
}

func (c *Client) Reconcile(ctx context.Context) (*models.ReconcileReport, error) {
	return call[models.ReconcileReport](ctx, c, "Reconcile", &ReconcileRequest{})
}
