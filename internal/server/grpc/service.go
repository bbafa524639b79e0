package grpc

import (
	"context"

	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"google.golang.org/grpc"
)

const ServiceName = "bookledger.Circulation"

// CirculationServer is the RPC surface of the library.
type CirculationServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*SessionResponse, error)
	Login(context.Context, *LoginRequest) (*SessionResponse, error)
	Guest(context.Context, *GuestRequest) (*SessionResponse, error)
	ListCatalog(context.Context, *ListCatalogRequest) (*ListCatalogResponse, error)
	AddBook(context.Context, *AddBookRequest) (*models.Book, error)
	Borrow(context.Context, *BorrowRequest) (*BorrowResponse, error)
	Return(context.Context, *ReturnRequest) (*ReturnResponse, error)
	ListUserLoans(context.Context, *ListUserLoansRequest) (*LoansResponse, error)
	ListAllLoans(context.Context, *ListAllLoansRequest) (*LoansResponse, error)
	Stats(context.Context, *StatsRequest) (*models.Stats, error)
	Reconcile(context.Context, *ReconcileRequest) (*models.ReconcileReport, error)
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary adapts a typed handler to grpc.MethodDesc, running the server's
// interceptor chain the same way generated code does.
func unary[Req, Resp any](name string, call func(CirculationServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(CirculationServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

var CirculationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CirculationServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", CirculationServer.Ping),
		unary("Register", CirculationServer.Register),
		unary("Login", CirculationServer.Login),
		unary("Guest", CirculationServer.Guest),
		unary("ListCatalog", CirculationServer.ListCatalog),
		unary("AddBook", CirculationServer.AddBook),
		unary("Borrow", CirculationServer.Borrow),
		unary("Return", CirculationServer.Return),
		unary("ListUserLoans", CirculationServer.ListUserLoans),
		unary("ListAllLoans", CirculationServer.ListAllLoans),
		unary("Stats", CirculationServer.Stats),
		unary("Reconcile", CirculationServer.Reconcile),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bookledger/circulation",
}
