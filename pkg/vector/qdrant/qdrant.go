// Package qdrant provides a Qdrant-backed vector driver. Chunk text and
// document metadata travel in point payloads, so search results come back
// complete without a second lookup.
package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	qd "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/vector"
)

const (
	// DefaultCollection is the default collection name.
	DefaultCollection = "knol"

	// scrollPageSize bounds Documents listing pages.
	scrollPageSize = 256
)

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Host is the Qdrant gRPC host. Required.
	Host string

	// Port is the Qdrant gRPC port. Defaults to 6334 if zero.
	Port int

	// APIKey authenticates against Qdrant Cloud. Optional.
	APIKey string

	// Collection is the collection name. Defaults to DefaultCollection.
	Collection string

	// Dimensions is the embedding dimension. Required.
	Dimensions int

	// ModelID is the embedding model identity, stored so mismatched reuse
	// is detected. Required.
	ModelID string
}

// Driver implements vector.Driver against a Qdrant server.
type Driver struct {
	client     *qd.Client
	config     Config
	collection string
	logger     *zap.Logger
}

// NewDriver connects to Qdrant and ensures the collection exists with
// cosine distance. An existing collection with a different vector size,
// or written by a different embedding model, fails with
// knowledge.ErrIndexCorrupt.
func NewDriver(ctx context.Context, c Config, logger *zap.Logger) (*Driver, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}
	if c.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be configured")
	}
	if c.ModelID == "" {
		return nil, fmt.Errorf("embedding model identity must be configured")
	}

	port := c.Port
	if port == 0 {
		port = 6334
	}

	collection := c.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := qd.NewClient(&qd.Config{
		Host:   c.Host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: c.APIKey != "",
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	d := &Driver{
		client:     client,
		config:     c,
		collection: collection,
		logger:     logger,
	}

	if err := d.ensureCollection(ctx); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("qdrant vector driver initialized",
		zap.String("host", c.Host),
		zap.String("collection", collection),
		zap.Int("dimensions", c.Dimensions),
	)

	return d, nil
}

func (d *Driver) ensureCollection(ctx context.Context) error {
	exists, err := d.client.CollectionExists(ctx, d.collection)
	if err != nil {
		return fmt.Errorf("checking collection %q: %w", d.collection, err)
	}

	if !exists {
		err := d.client.CreateCollection(ctx, &qd.CreateCollection{
			CollectionName: d.collection,
			VectorsConfig: qd.NewVectorsConfig(&qd.VectorParams{
				Size:     uint64(d.config.Dimensions),
				Distance: qd.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("creating collection %q: %w", d.collection, err)
		}
		return nil
	}

	info, err := d.client.GetCollectionInfo(ctx, d.collection)
	if err != nil {
		return fmt.Errorf("inspecting collection %q: %w", d.collection, err)
	}

	size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if size != 0 && size != uint64(d.config.Dimensions) {
		return fmt.Errorf("%w: collection %q has dimension %d, configured embedder produces %d",
			knowledge.ErrIndexCorrupt, d.collection, size, d.config.Dimensions)
	}

	return d.checkModel(ctx)
}

// checkModel reads the model identity carried in point payloads and rejects
// reuse of a collection written by a different embedder. An empty collection
// passes; the first Add stamps every point with the configured model.
func (d *Driver) checkModel(ctx context.Context) error {
	points, err := d.client.Scroll(ctx, &qd.ScrollPoints{
		CollectionName: d.collection,
		Limit:          qd.PtrOf(uint32(1)),
		WithPayload:    qd.NewWithPayloadInclude("model_id"),
	})
	if err != nil {
		return fmt.Errorf("reading collection %q metadata: %w", d.collection, err)
	}
	return verifyStoredModel(points, d.collection, d.config.ModelID)
}

func verifyStoredModel(points []*qd.RetrievedPoint, collection, modelID string) error {
	if len(points) == 0 {
		return nil
	}
	stored := points[0].GetPayload()["model_id"].GetStringValue()
	if stored == "" || stored == modelID {
		return nil
	}
	return fmt.Errorf("%w: collection %q written with model %s, configured model %s",
		knowledge.ErrIndexCorrupt, collection, stored, modelID)
}

// pointID derives a stable Qdrant point UUID from a chunk ID.
func pointID(chunkID string) *qd.PointId {
	return qd.NewID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String())
}

// Add upserts all chunks of a document in one request with wait=true, so
// the document becomes searchable as a whole.
func (d *Driver) Add(ctx context.Context, doc knowledge.Document, chunks []knowledge.Chunk) error {
	points := make([]*qd.PointStruct, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Embedding) != d.config.Dimensions {
			return fmt.Errorf("%w: chunk %s has dimension %d, index expects %d",
				knowledge.ErrIndexCorrupt, chunk.ID, len(chunk.Embedding), d.config.Dimensions)
		}

		points = append(points, &qd.PointStruct{
			Id:      pointID(chunk.ID),
			Vectors: qd.NewVectors(chunk.Embedding...),
			Payload: qd.NewValueMap(map[string]any{
				"chunk_id":    chunk.ID,
				"document_id": chunk.DocumentID,
				"seq":         int64(chunk.Seq),
				"text":        chunk.Text,
				"start":       int64(chunk.Start),
				"end":         int64(chunk.End),
				"filename":    doc.Filename,
				"format":      string(doc.Format),
				"preview":     vector.Preview(doc.Text),
				"ingested_at": doc.IngestedAt.Format(time.RFC3339Nano),
				"model_id":    d.config.ModelID,
			}),
		})
	}

	_, err := d.client.Upsert(ctx, &qd.UpsertPoints{
		CollectionName: d.collection,
		Wait:           qd.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", doc.ID, err)
	}

	d.logger.Debug("added document to qdrant",
		zap.String("document_id", doc.ID),
		zap.Int("chunks", len(chunks)),
	)

	return nil
}

// Query performs a cosine similarity search.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int, scoreThreshold float32) ([]knowledge.SearchResult, error) {
	if topK <= 0 {
		topK = 10
	}

	query := &qd.QueryPoints{
		CollectionName: d.collection,
		Query:          qd.NewQuery(embedding...),
		Limit:          qd.PtrOf(uint64(topK)),
		WithPayload:    qd.NewWithPayload(true),
	}
	if scoreThreshold > 0 {
		query.ScoreThreshold = qd.PtrOf(scoreThreshold)
	}

	points, err := d.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying qdrant: %w", err)
	}

	results := make([]knowledge.SearchResult, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		results = append(results, knowledge.SearchResult{
			Chunk: knowledge.Chunk{
				ID:         payload["chunk_id"].GetStringValue(),
				DocumentID: payload["document_id"].GetStringValue(),
				Seq:        int(payload["seq"].GetIntegerValue()),
				Text:       payload["text"].GetStringValue(),
				Start:      int(payload["start"].GetIntegerValue()),
				End:        int(payload["end"].GetIntegerValue()),
			},
			Filename: payload["filename"].GetStringValue(),
			Score:    p.GetScore(),
		})
	}

	return vector.RankResults(results, topK, scoreThreshold), nil
}

// RemoveDocument deletes every point whose payload carries the document ID.
func (d *Driver) RemoveDocument(ctx context.Context, docID string) error {
	_, err := d.client.Delete(ctx, &qd.DeletePoints{
		CollectionName: d.collection,
		Wait:           qd.PtrOf(true),
		Points: qd.NewPointsSelectorFilter(&qd.Filter{
			Must: []*qd.Condition{qd.NewMatch("document_id", docID)},
		}),
	})
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", docID, err)
	}
	return nil
}

// Reset drops and recreates the collection.
func (d *Driver) Reset(ctx context.Context) error {
	if err := d.client.DeleteCollection(ctx, d.collection); err != nil {
		return fmt.Errorf("dropping collection %q: %w", d.collection, err)
	}
	return d.ensureCollection(ctx)
}

// Documents scrolls the collection and aggregates per-document metadata.
func (d *Driver) Documents(ctx context.Context) ([]knowledge.DocumentInfo, error) {
	byID := make(map[string]*knowledge.DocumentInfo)
	var order []string

	var offset *qd.PointId
	for {
		points, err := d.client.Scroll(ctx, &qd.ScrollPoints{
			CollectionName: d.collection,
			Limit:          qd.PtrOf(uint32(scrollPageSize)),
			Offset:         offset,
			WithPayload:    qd.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("scrolling collection: %w", err)
		}
		if len(points) == 0 {
			break
		}

		for _, p := range points {
			payload := p.GetPayload()
			docID := payload["document_id"].GetStringValue()

			info, ok := byID[docID]
			if !ok {
				ingestedAt, _ := time.Parse(time.RFC3339Nano, payload["ingested_at"].GetStringValue())
				info = &knowledge.DocumentInfo{
					ID:         docID,
					Filename:   payload["filename"].GetStringValue(),
					Format:     knowledge.Format(payload["format"].GetStringValue()),
					Preview:    payload["preview"].GetStringValue(),
					IngestedAt: ingestedAt,
				}
				byID[docID] = info
				order = append(order, docID)
			}
			info.Chunks++
		}

		if len(points) < scrollPageSize {
			break
		}
		offset = points[len(points)-1].GetId()
	}

	infos := make([]knowledge.DocumentInfo, 0, len(order))
	for _, id := range order {
		infos = append(infos, *byID[id])
	}

	return infos, nil
}

// Close releases the client connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

var _ vector.Driver = (*Driver)(nil)
