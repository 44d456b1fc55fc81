// Package vectorutils is the vector driver utility package
package vectorutils

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/vector"
	"github.com/knolhq/knol/pkg/vector/memory"
	"github.com/knolhq/knol/pkg/vector/pgvector"
	"github.com/knolhq/knol/pkg/vector/qdrant"
	"github.com/knolhq/knol/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	ProviderType string

	// Target is provider-specific: the SQLite database path for sqlitevec,
	// "host:port" for qdrant, a connection string for pgvector. Unused by
	// the memory provider.
	Target string

	Collection string
	Dimensions int
	ModelID    string
	APIKey     string
	Logger     *zap.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "memory":
		return memory.NewDriver(memory.Config{
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "sqlitevec":
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
			ModelID:    o.ModelID,
		}, o.Logger)
	case "qdrant":
		host := o.Target
		port := 0
		if h, p, err := net.SplitHostPort(o.Target); err == nil {
			host = h
			port, _ = strconv.Atoi(p)
		}
		return qdrant.NewDriver(ctx, qdrant.Config{
			Host:       host,
			Port:       port,
			APIKey:     o.APIKey,
			Collection: o.Collection,
			Dimensions: o.Dimensions,
			ModelID:    o.ModelID,
		}, o.Logger)
	case "pgvector":
		return pgvector.NewDriver(ctx, pgvector.Config{
			ConnStr:    o.Target,
			Dimensions: o.Dimensions,
			ModelID:    o.ModelID,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
