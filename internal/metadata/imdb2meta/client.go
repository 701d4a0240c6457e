// Package imdb2meta is an optional, faster metadata Source backed by a
// private imdb2meta gRPC service. It is wired as the Resolver's primary
// when configured; Cinemeta (or TMDB) remains the fallback on every
// error.
package imdb2meta

import (
	"context"
	"fmt"
	"time"

	"github.com/deflix-tv/imdb2meta/pb"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/scavengarr/scavengarr/internal/domain"
)

// Client wraps a pb.MetaFetcherClient connection.
type Client struct {
	grpcClient pb.MetaFetcherClient
	conn       *grpc.ClientConn
	logger     *zap.Logger
}

// NewClient dials address and returns a ready Client. Callers must call
// Close when done.
func NewClient(ctx context.Context, address string, dialTimeout time.Duration, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	logger.Info("connecting to imdb2meta gRPC server", zap.String("address", address))
	conn, err := grpc.DialContext(dialCtx, address, grpc.WithInsecure(), grpc.WithBlock())
	if err != nil {
		return nil, fmt.Errorf("imdb2meta dial failed: %w", err)
	}
	logger.Info("connected to imdb2meta gRPC server")

	return &Client{
		grpcClient: pb.NewMetaFetcherClient(conn),
		conn:       conn,
		logger:     logger,
	}, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Resolve implements metadata.Source. The gRPC service only understands
// native IMDb IDs; a tmdb:<id> fallback ID is rejected immediately so
// the Resolver moves straight to its secondary source.
func (c *Client) Resolve(ctx context.Context, externalID string, kind domain.Kind) (domain.ReferenceTitle, error) {
	if len(externalID) < 2 || externalID[:2] != "tt" {
		return domain.ReferenceTitle{}, fmt.Errorf("imdb2meta: not an IMDb ID: %s", externalID)
	}

	res, err := c.grpcClient.Get(ctx, &pb.MetaRequest{Id: externalID})
	if err != nil {
		return domain.ReferenceTitle{}, fmt.Errorf("imdb2meta gRPC Get failed: %w", err)
	}

	return domain.ReferenceTitle{
		Title: res.GetPrimaryTitle(),
		Year:  int(res.GetStartYear()),
		Kind:  kind,
	}, nil
}
