package project

import (
	"bytes"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/panecraft/pkg/design"
	perrors "github.com/matzehuels/panecraft/pkg/errors"
)

// CollectionName is the MongoDB collection holding projects.
const CollectionName = "projects"

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// MongoStore keeps projects in MongoDB. The design is stored as a nested
// document so it stays readable in the shell.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoProject is the stored document.
type mongoProject struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Title     string    `bson:"title"`
	Design    bson.Raw  `bson:"designData"`
	IsPublic  bool      `bson:"isPublic"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// NewMongoStore connects, pings and ensures the listing index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "panecraft"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "ping mongodb")
	}
	s := &MongoStore{client: client, coll: client.Database(cfg.Database).Collection(CollectionName)}
	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "create project index")
	}
	return s, nil
}

func (s *MongoStore) Create(ctx context.Context, p *Project) (err error) {
	defer observe(ctx, "mongo", "project.create", time.Now(), &err)
	if err := p.Validate(); err != nil {
		return err
	}
	p.CreatedAt = clock()
	p.UpdatedAt = p.CreatedAt
	doc, err := toMongo(p)
	if err != nil {
		return err
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errExists(p.ID)
		}
		return perrors.Wrap(perrors.ErrCodeStorage, err, "insert project")
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (p *Project, err error) {
	defer observe(ctx, "mongo", "project.get", time.Now(), &err)
	var doc mongoProject
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "find project")
	}
	return fromMongo(doc)
}

func (s *MongoStore) ListByUser(ctx context.Context, userID string, opts ListOptions) (page *Page, err error) {
	defer observe(ctx, "mongo", "project.list", time.Now(), &err)
	filter := bson.D{{Key: "userId", Value: userID}}
	if opts.After != "" {
		c, err := parseCursor(opts.After)
		if err != nil {
			return nil, err
		}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "updatedAt", Value: bson.D{{Key: "$lt", Value: c.UpdatedAt}}}},
			bson.D{{Key: "updatedAt", Value: c.UpdatedAt}, {Key: "_id", Value: bson.D{{Key: "$lt", Value: c.ID}}}},
		}})
	}
	limit := opts.limit()
	findOpts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit + 1))

	cur, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "list projects")
	}
	var docs []mongoProject
	if err := cur.All(ctx, &docs); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "list projects")
	}
	items := make([]*Project, 0, len(docs))
	for _, d := range docs {
		p, err := fromMongo(d)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return page(items, limit), nil
}

// Update is a read-modify-write guarded by the previous UpdatedAt, so a
// concurrent writer makes it fail with a conflict instead of being lost.
func (s *MongoStore) Update(ctx context.Context, id string, u Update) (p *Project, err error) {
	defer observe(ctx, "mongo", "project.update", time.Now(), &err)
	p, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := p.UpdatedAt
	u.apply(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = bump(prev)
	doc, err := toMongo(p)
	if err != nil {
		return nil, err
	}
	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "updatedAt", Value: prev}}, doc)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "update project")
	}
	if res.MatchedCount == 0 {
		return nil, perrors.New(perrors.ErrCodeConflict, "project %s was changed concurrently", id)
	}
	return p, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) (err error) {
	defer observe(ctx, "mongo", "project.delete", time.Now(), &err)
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeStorage, err, "delete project")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toMongo(p *Project) (mongoProject, error) {
	var buf bytes.Buffer
	if err := design.WriteJSON(&buf, p.Design); err != nil {
		return mongoProject{}, perrors.Wrap(perrors.ErrCodeInternal, err, "encode design")
	}
	var raw bson.Raw
	if err := bson.UnmarshalExtJSON(buf.Bytes(), false, &raw); err != nil {
		return mongoProject{}, perrors.Wrap(perrors.ErrCodeInternal, err, "convert design")
	}
	return mongoProject{
		ID:        p.ID,
		UserID:    p.UserID,
		Title:     p.Title,
		Design:    raw,
		IsPublic:  p.IsPublic,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func fromMongo(d mongoProject) (*Project, error) {
	js, err := bson.MarshalExtJSON(d.Design, false, false)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "decode design of %s", d.ID)
	}
	s, err := design.ReadJSON(bytes.NewReader(js))
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "decode design of %s", d.ID)
	}
	return &Project{
		ID:        d.ID,
		UserID:    d.UserID,
		Title:     d.Title,
		Design:    s,
		IsPublic:  d.IsPublic,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

var _ Store = (*MongoStore)(nil)
