package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/bookledger/internal/logging"
	"github.com/dmitrijs2005/bookledger/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address     string
	identity    *services.IdentityService
	catalog     *services.CatalogService
	circulation *services.CirculationService
	reconciler  *services.AvailabilityReconciler
	stats       *services.StatisticsService
	logger      logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, is *services.IdentityService, cs *services.CatalogService,
	circ *services.CirculationService, rec *services.AvailabilityReconciler, ss *services.StatisticsService) *GRPCServer {
	return &GRPCServer{
		address:     a,
		logger:      l.With("module", "grpc_server"),
		identity:    is,
		catalog:     cs,
		circulation: circ,
		reconciler:  rec,
		stats:       ss,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(&CirculationServiceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
