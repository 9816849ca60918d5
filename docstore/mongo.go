// ABOUTME: Hosted document store on MongoDB
// ABOUTME: Server timestamps are assigned by the database through $currentDate
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a MongoDB database, one collection per
// document collection.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo dials uri and pings the server before returning.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) Add(ctx context.Context, collection string, fields Fields) (Document, error) {
	if !validCollection(collection) {
		return Document{}, ErrInvalidCollection
	}

	id := ulid.Make().String()
	update, err := mongoUpdate(fields)
	if err != nil {
		return Document{}, err
	}

	// Upsert instead of InsertOne so $currentDate can stamp the new document
	_, err = s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return Document{}, err
	}

	return s.GetByID(ctx, collection, id)
}

// Put replaces the document stored under id, inserting it if missing.
func (s *MongoStore) Put(ctx context.Context, collection, id string, fields Fields) error {
	if !validCollection(collection) {
		return ErrInvalidCollection
	}

	doc := bson.M{"_id": id}
	for k, v := range resolveFields(fields, time.Now().UTC()) {
		if !validField(k) {
			return fmt.Errorf("invalid field %q", k)
		}
		doc[k] = toBSONValue(v)
	}

	_, err := s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) GetByID(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Get(ctx context.Context, collection string, q Query) ([]Document, error) {
	if !validCollection(collection) {
		return nil, ErrInvalidCollection
	}

	filter, err := mongoFilter(q)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find()
	if len(q.OrderBy) > 0 {
		sort := bson.D{}
		for _, o := range q.OrderBy {
			dir := 1
			if o.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: o.Field, Value: dir})
		}
		tie := 1
		if q.OrderBy[0].Desc {
			tie = -1
		}
		sort = append(sort, bson.E{Key: "_id", Value: tie})
		findOptions.SetSort(sort)
	}
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, fromBSON(raw))
	}
	return docs, nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields Fields) error {
	update, err := mongoUpdate(fields)
	if err != nil {
		return err
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func mongoFilter(q Query) (bson.M, error) {
	filter := bson.M{}
	for _, f := range q.Filters {
		if !validField(f.Field) {
			return nil, fmt.Errorf("invalid filter field %q", f.Field)
		}
		filter[f.Field] = toBSONValue(f.Value)
	}
	return filter, nil
}

func mongoUpdate(fields Fields) (bson.M, error) {
	set := bson.M{}
	current := bson.M{}
	for k, v := range fields {
		if !validField(k) {
			return nil, fmt.Errorf("invalid field %q", k)
		}
		if IsServerTimestamp(v) {
			current[k] = true
			continue
		}
		set[k] = toBSONValue(v)
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(current) > 0 {
		update["$currentDate"] = current
	}
	return update, nil
}

func toBSONValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case Timestamp:
		return primitive.NewDateTimeFromTime(tv.ToTime())
	case time.Time:
		return primitive.NewDateTimeFromTime(tv)
	}
	return v
}

func fromBSON(raw bson.M) Document {
	doc := Document{Fields: make(Fields, len(raw))}
	for k, v := range raw {
		if k == "_id" {
			doc.ID = fmt.Sprint(v)
			continue
		}
		switch tv := v.(type) {
		case primitive.DateTime:
			doc.Fields[k] = TimestampFromTime(tv.Time())
		case int32:
			doc.Fields[k] = int64(tv)
		default:
			doc.Fields[k] = v
		}
	}
	return doc
}
