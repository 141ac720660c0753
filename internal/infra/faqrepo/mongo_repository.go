package faqrepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/pkg/util"
)

// mongoDocument mirrors the questions collection. Embeddings are stored as BSON doubles and
// created_at as an ISO-8601 string; BSON dates written by other tools are read too.
type mongoDocument struct {
	Identifier string    `bson:"question_id"`
	Question   string    `bson:"question"`
	Answer     string    `bson:"answer"`
	Category   string    `bson:"category"`
	Embedding  []float64 `bson:"embedding,omitempty"`
	CreatedAt  any       `bson:"created_at,omitempty"`
	AddedBy    string    `bson:"added_by,omitempty"`
}

// MongoRepository implements faq.Store over a MongoDB collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository constructs the repository over coll.
func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// ConnectMongo dials uri and pings the primary.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(timeout).SetConnectTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Close disconnects the underlying client.
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.coll.Database().Client().Disconnect(ctx)
}

// EnsureIndexes creates the unique question_id index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "question_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "question", Value: 1}}},
	})
	return err
}

// FindAll returns every document in natural order.
func (r *MongoRepository) FindAll(ctx context.Context, proj faq.Projection) ([]faq.Record, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 0})
	if proj.OmitEmbedding {
		opts.SetProjection(bson.M{"_id": 0, "embedding": 0})
	}
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []faq.Record
	for cur.Next(ctx) {
		var doc mongoDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.record())
	}
	return out, cur.Err()
}

// FindOne returns the first document matching filter.
func (r *MongoRepository) FindOne(ctx context.Context, filter faq.Filter) (faq.Record, bool, error) {
	var doc mongoDocument
	err := r.coll.FindOne(ctx, mongoFilter(filter), options.FindOne().SetProjection(bson.M{"_id": 0})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return faq.Record{}, false, nil
	}
	if err != nil {
		return faq.Record{}, false, err
	}
	return doc.record(), true, nil
}

// InsertOne inserts a document; a reused question_id maps to faq.ErrDuplicateIdentifier.
func (r *MongoRepository) InsertOne(ctx context.Context, record faq.Record) (string, error) {
	if _, err := r.coll.InsertOne(ctx, toDocument(record)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: %s", faq.ErrDuplicateIdentifier, record.Identifier)
		}
		return "", err
	}
	return record.Identifier, nil
}

// InsertMany inserts records unordered so one duplicate does not abort the batch.
func (r *MongoRepository) InsertMany(ctx context.Context, records []faq.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	docs := make([]any, len(records))
	for i, rec := range records {
		docs[i] = toDocument(rec)
	}
	res, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	inserted := 0
	if res != nil {
		inserted = len(res.InsertedIDs)
	}
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return inserted, err
	}
	return inserted, nil
}

// DeleteMany removes documents matching filter.
func (r *MongoRepository) DeleteMany(ctx context.Context, filter faq.Filter) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, mongoFilter(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountDocuments counts documents matching filter.
func (r *MongoRepository) CountDocuments(ctx context.Context, filter faq.Filter) (int64, error) {
	return r.coll.CountDocuments(ctx, mongoFilter(filter))
}

// UpdateEmbedding replaces the vector of one document.
func (r *MongoRepository) UpdateEmbedding(ctx context.Context, identifier string, embedding []float32) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"question_id": identifier}, bson.M{"$set": bson.M{"embedding": toFloat64(embedding)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", faq.ErrNotFound, identifier)
	}
	return nil
}

func mongoFilter(filter faq.Filter) bson.M {
	m := bson.M{}
	if filter.Identifier != "" {
		m["question_id"] = filter.Identifier
	}
	if filter.Question != "" {
		m["question"] = filter.Question
	}
	if filter.Category != "" {
		m["category"] = bson.M{"$regex": `^\s*` + regexp.QuoteMeta(strings.TrimSpace(filter.Category)) + `\s*$`, "$options": "i"}
	}
	return m
}

func toDocument(rec faq.Record) mongoDocument {
	doc := mongoDocument{
		Identifier: rec.Identifier,
		Question:   rec.Question,
		Answer:     rec.Answer,
		Category:   rec.Category,
		Embedding:  toFloat64(rec.Embedding),
		AddedBy:    rec.AddedBy,
	}
	if ts := util.FormatTimestamp(rec.CreatedAt); ts != "" {
		doc.CreatedAt = ts
	}
	return doc
}

func (d mongoDocument) record() faq.Record {
	rec := faq.Record{
		Identifier: d.Identifier,
		Question:   d.Question,
		Answer:     d.Answer,
		Category:   d.Category,
		AddedBy:    d.AddedBy,
	}
	if len(d.Embedding) > 0 {
		rec.Embedding = make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			rec.Embedding[i] = float32(v)
		}
	}
	switch v := d.CreatedAt.(type) {
	case string:
		if ts, err := util.ParseTimestamp(v); err == nil {
			rec.CreatedAt = ts
		}
	case primitive.DateTime:
		rec.CreatedAt = v.Time().UTC()
	case time.Time:
		rec.CreatedAt = v.UTC()
	}
	return rec
}

func toFloat64(v []float32) []float64 {
	if len(v) == 0 {
		return nil
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

var _ faq.Store = (*MongoRepository)(nil)
