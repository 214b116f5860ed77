package cartrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
)

type lineDoc struct {
	LineID    string `bson:"line_id"`
	ProductID string `bson:"product_id"`
	Quantity  int    `bson:"quantity"`
	UnitPrice int64  `bson:"unit_price"`
	Size      string `bson:"size"`
	Color     string `bson:"color"`
}

type cartDoc struct {
	ID        string    `bson:"_id,omitempty"`
	OwnerID   string    `bson:"owner_id"`
	Lines     []lineDoc `bson:"lines"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toDoc(c *cart.Cart) *cartDoc {
	doc := &cartDoc{OwnerID: c.OwnerID, UpdatedAt: c.UpdatedAt}
	for _, l := range c.Lines {
		doc.Lines = append(doc.Lines, lineDoc{
			LineID:    l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Size:      l.Size,
			Color:     l.Color,
		})
	}
	return doc
}

func fromDoc(doc *cartDoc) *cart.Cart {
	c := cart.Cart{OwnerID: doc.OwnerID, UpdatedAt: doc.UpdatedAt}
	for _, l := range doc.Lines {
		c.Lines = append(c.Lines, cart.Line{
			ID:        l.LineID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Size:      l.Size,
			Color:     l.Color,
		})
	}
	c = cart.Recalculate(c)
	return &c
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *MongoRepository) Get(ctx context.Context, ownerID string) (*cart.Cart, error) {
	var doc cartDoc

	filter := bson.M{"owner_id": ownerID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return fromDoc(&doc), nil
}

func (m *MongoRepository) Upsert(ctx context.Context, c *cart.Cart) error {
	now := time.Now()
	doc := toDoc(c)
	doc.UpdatedAt = now

	filter := bson.M{"owner_id": c.OwnerID}
	update := bson.M{
		"$set":         bson.M{"lines": doc.Lines, "updated_at": now},
		"$setOnInsert": bson.M{"owner_id": c.OwnerID, "created_at": now},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

func (m *MongoRepository) AddItem(ctx context.Context, ownerID string, line cart.Line) error {
	now := time.Now()
	filter := bson.M{"owner_id": ownerID}

	var existing cartDoc
	err := m.collection.FindOne(ctx, filter).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			doc := &cartDoc{
				OwnerID:   ownerID,
				Lines:     toDoc(&cart.Cart{Lines: []cart.Line{line}}).Lines,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, err = m.collection.InsertOne(ctx, doc); err != nil {
				return fmt.Errorf("failed to create cart with line: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to check existing cart: %w", err)
	}

	// A line with the same (product, size, color) identity accumulates
	// quantity instead of duplicating.
	var match *lineDoc
	for i := range existing.Lines {
		l := existing.Lines[i]
		if l.ProductID == line.ProductID && l.Size == line.Size && l.Color == line.Color {
			match = &existing.Lines[i]
			break
		}
	}

	if match != nil {
		update := bson.M{
			"$set": bson.M{
				"lines.$[elem].quantity": match.Quantity + line.Quantity,
				"updated_at":             now,
			},
		}
		arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{
				bson.M{"elem.line_id": match.LineID},
			},
		})
		if _, err = m.collection.UpdateOne(ctx, filter, update, arrayFilters); err != nil {
			return fmt.Errorf("failed to update existing line: %w", err)
		}
		return nil
	}

	update := bson.M{
		"$push": bson.M{"lines": toDoc(&cart.Cart{Lines: []cart.Line{line}}).Lines[0]},
		"$set":  bson.M{"updated_at": now},
	}
	if _, err = m.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to add new line: %w", err)
	}
	return nil
}

func (m *MongoRepository) SetQuantity(ctx context.Context, ownerID, lineID string, quantity int) error {
	if quantity <= 0 {
		return m.RemoveItem(ctx, ownerID, lineID)
	}

	filter := bson.M{
		"owner_id":      ownerID,
		"lines.line_id": lineID,
	}
	update := bson.M{
		"$set": bson.M{
			"lines.$[elem].quantity": quantity,
			"updated_at":             time.Now(),
		},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.line_id": lineID},
		},
	})

	result, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to set line quantity: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (m *MongoRepository) RemoveItem(ctx context.Context, ownerID, lineID string) error {
	filter := bson.M{"owner_id": ownerID}
	update := bson.M{
		"$pull": bson.M{
			"lines": bson.M{"line_id": lineID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove line: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (m *MongoRepository) Delete(ctx context.Context, ownerID string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
