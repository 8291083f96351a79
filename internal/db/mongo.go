package db

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/websites/internal/models"
)

const defaultMongoDatabase = "websites"

type (
	websiteDocument struct {
		ID           bson.ObjectID `bson:"_id"`
		Title        string        `bson:"title"`
		URL          string        `bson:"url"`
		Note         string        `bson:"note"`
		UserID       string        `bson:"userId"`
		PreviewImage string        `bson:"previewImage"`
		Tags         []string      `bson:"tags"`
		IsPublic     bool          `bson:"isPublic"`
		CreatedAt    time.Time     `bson:"createdAt"`
		UpdatedAt    time.Time     `bson:"updatedAt"`
	}

	MongoStore struct {
		client *mongo.Client
		coll   *mongo.Collection
		host   string
		logger *zap.SugaredLogger
	}
)

// DialMongo connects, pings the primary and makes sure the collection
// indexes exist.
func DialMongo(ctx context.Context, uri string, l *zap.SugaredLogger) (*MongoStore, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrap(err, "parse mongo uri")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}

	s := &MongoStore{
		client: client,
		coll:   client.Database(mongoDatabaseName(u)).Collection(collectionName),
		host:   u.Host,
		logger: l,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	l.Debugw("Mongo collection ready", "database", s.coll.Database().Name(), "collection", collectionName)
	return s, nil
}

func mongoDatabaseName(u *url.URL) string {
	name := strings.Trim(u.Path, "/")
	if name == "" {
		return defaultMongoDatabase
	}
	return name
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "url", Value: 1}},
			Options: options.Index().SetName("uidx_user_url").SetUnique(true),
		},
	})
	return errors.Wrap(err, "create indexes")
}

func (s *MongoStore) List(ctx context.Context, userID string) ([]models.Website, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.D{{Key: "userId", Value: userID}}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find websites")
	}

	docs := make([]websiteDocument, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode websites")
	}

	websites := make([]models.Website, len(docs))
	for i := range docs {
		websites[i] = docs[i].toModel()
	}
	return websites, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*models.Website, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound()
	}

	doc := websiteDocument{}
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound()
		}
		return nil, errors.Wrap(err, "get website")
	}
	w := doc.toModel()
	return &w, nil
}

func (s *MongoStore) Create(ctx context.Context, w *models.Website) error {
	ts := now()
	doc := toDocument(w)
	doc.ID = bson.NewObjectID()
	doc.CreatedAt = ts
	doc.UpdatedAt = ts

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicate(err)
		}
		return errors.Wrap(err, "insert website")
	}

	*w = doc.toModel()
	return nil
}

func (s *MongoStore) Update(ctx context.Context, id string, patch models.WebsitePatch) (*models.Website, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound()
	}

	set := bson.D{{Key: "updatedAt", Value: now()}}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.URL != nil {
		set = append(set, bson.E{Key: "url", Value: *patch.URL})
	}
	if patch.Note != nil {
		set = append(set, bson.E{Key: "note", Value: *patch.Note})
	}
	if patch.Tags != nil {
		set = append(set, bson.E{Key: "tags", Value: *patch.Tags})
	}
	if patch.IsPublic != nil {
		set = append(set, bson.E{Key: "isPublic", Value: *patch.IsPublic})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	doc := websiteDocument{}
	err = s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound()
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicate(err)
		}
		return nil, errors.Wrap(err, "update website")
	}

	w := doc.toModel()
	return &w, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return notFound()
	}

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return errors.Wrap(err, "delete website")
	}
	if res.DeletedCount == 0 {
		return notFound()
	}
	return nil
}

func (s *MongoStore) Describe(ctx context.Context) (models.ConnectionInfo, error) {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return models.ConnectionInfo{State: "disconnected"}, errors.Wrap(err, "ping mongo")
	}

	db := s.coll.Database()
	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return models.ConnectionInfo{}, errors.Wrap(err, "list collections")
	}

	return models.ConnectionInfo{
		State:       "connected",
		Backend:     "mongodb",
		Host:        s.host,
		Name:        db.Name(),
		Collections: names,
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDocument(w *models.Website) websiteDocument {
	return websiteDocument{
		Title:        w.Title,
		URL:          w.URL,
		Note:         w.Note,
		UserID:       w.UserID,
		PreviewImage: w.PreviewImage,
		Tags:         w.Tags,
		IsPublic:     w.IsPublic,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

func (d websiteDocument) toModel() models.Website {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Website{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		URL:          d.URL,
		Note:         d.Note,
		UserID:       d.UserID,
		PreviewImage: d.PreviewImage,
		Tags:         tags,
		IsPublic:     d.IsPublic,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}
