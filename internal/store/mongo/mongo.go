// Package mongo implements the store contracts on the official MongoDB
// driver. The stock decrement is a single UpdateOne whose filter pins the
// observed stock value, so the document server applies the check and the
// mutation atomically.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matheusmosca/workout-gear-server/internal/domain"
)

// Store is the MongoDB-backed implementation of store.Store.
type Store struct {
	products *mongo.Collection
	carts    *mongo.Collection
	orders   *mongo.Collection
}

// New wraps the collections of the given database.
func New(db *mongo.Database) *Store {
	return &Store{
		products: db.Collection("products"),
		carts:    db.Collection("cart_lines"),
		orders:   db.Collection("orders"),
	}
}

type productDoc struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Category    string               `bson:"category"`
	Price       primitive.Decimal128 `bson:"price"`
	Stock       int                  `bson:"stock"`
	Description string               `bson:"description"`
	Images      []string             `bson:"images"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

type cartLineDoc struct {
	CartID    string               `bson:"cart_id"`
	ProductID string               `bson:"product_id"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Quantity  int                  `bson:"quantity"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

type orderDoc struct {
	ID        string               `bson:"_id"`
	Lines     []orderLineDoc       `bson:"lines"`
	Total     primitive.Decimal128 `bson:"total"`
	CreatedAt time.Time            `bson:"created_at"`
}

type orderLineDoc struct {
	ProductID string               `bson:"product_id"`
	Name      string               `bson:"name"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
	Quantity  int                  `bson:"quantity"`
}

func (s *Store) CreateProduct(ctx context.Context, p domain.Product) error {
	doc, err := toProductDoc(p)
	if err != nil {
		return err
	}
	if _, err := s.products.InsertOne(ctx, doc); err != nil {
		return storeErr("create product", err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var doc productDoc
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, storeErr("get product", err)
	}
	return fromProductDoc(doc)
}

func (s *Store) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	filter := bson.M{}
	if f.Search != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{
			Pattern: regexp.QuoteMeta(f.Search),
			Options: "i",
		}}
	}
	if len(f.Categories) > 0 {
		filter["category"] = bson.M{"$in": f.Categories}
	}
	price := bson.M{}
	if f.MinPrice != nil {
		min, err := toDecimal128(*f.MinPrice)
		if err != nil {
			return nil, err
		}
		price["$gte"] = min
	}
	if f.MaxPrice != nil {
		max, err := toDecimal128(*f.MaxPrice)
		if err != nil {
			return nil, err
		}
		price["$lte"] = max
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	opts := options.Find()
	switch f.Sort {
	case domain.SortPriceAsc:
		opts.SetSort(bson.D{{Key: "price", Value: 1}, {Key: "created_at", Value: 1}})
	case domain.SortPriceDesc:
		opts.SetSort(bson.D{{Key: "price", Value: -1}, {Key: "created_at", Value: 1}})
	default:
		opts.SetSort(bson.D{{Key: "created_at", Value: 1}})
	}

	cur, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr("list products", err)
	}
	defer cur.Close(ctx)

	out := make([]domain.Product, 0)
	for cur.Next(ctx) {
		var doc productDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, storeErr("decode product", err)
		}
		p, err := fromProductDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := cur.Err(); err != nil {
		return nil, storeErr("list products", err)
	}
	return out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Price != nil {
		price, err := toDecimal128(*patch.Price)
		if err != nil {
			return domain.Product{}, err
		}
		set["price"] = price
	}
	if patch.Stock != nil {
		set["stock"] = *patch.Stock
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Images != nil {
		set["images"] = *patch.Images
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDoc
	err := s.products.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, storeErr("update product", err)
	}
	return fromProductDoc(doc)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (domain.Product, error) {
	var doc productDoc
	err := s.products.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, storeErr("delete product", err)
	}
	return fromProductDoc(doc)
}

func (s *Store) CompareAndDecrementStock(ctx context.Context, id string, observed, qty int) (bool, error) {
	res, err := s.products.UpdateOne(ctx,
		bson.M{"_id": id, "stock": observed},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, storeErr("decrement stock", err)
	}
	return res.ModifiedCount == 1, nil
}

func (s *Store) GetCart(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "product_id", Value: 1}})
	cur, err := s.carts.Find(ctx, bson.M{"cart_id": cartID}, opts)
	if err != nil {
		return nil, storeErr("get cart", err)
	}
	defer cur.Close(ctx)

	lines := make([]domain.CartLine, 0)
	for cur.Next(ctx) {
		var doc cartLineDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, storeErr("decode cart line", err)
		}
		price, err := fromDecimal128(doc.Price)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.CartLine{
			ProductID: doc.ProductID,
			Name:      doc.Name,
			Price:     price,
			Quantity:  doc.Quantity,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, storeErr("get cart", err)
	}
	return lines, nil
}

func (s *Store) UpsertCartLine(ctx context.Context, cartID string, line domain.CartLine) (domain.CartLine, error) {
	price, err := toDecimal128(line.Price)
	if err != nil {
		return domain.CartLine{}, err
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc cartLineDoc
	err = s.carts.FindOneAndUpdate(ctx,
		bson.M{"cart_id": cartID, "product_id": line.ProductID},
		bson.M{
			"$inc": bson.M{"quantity": line.Quantity},
			"$set": bson.M{
				"name":       line.Name,
				"price":      price,
				"updated_at": time.Now().UTC(),
			},
		},
		opts,
	).Decode(&doc)
	if err != nil {
		return domain.CartLine{}, storeErr("upsert cart line", err)
	}

	merged := domain.CartLine{
		ProductID: doc.ProductID,
		Name:      doc.Name,
		Quantity:  doc.Quantity,
		UpdatedAt: doc.UpdatedAt,
	}
	merged.Price, err = fromDecimal128(doc.Price)
	if err != nil {
		return domain.CartLine{}, err
	}
	return merged, nil
}

func (s *Store) CreateOrder(ctx context.Context, o domain.Order) error {
	total, err := toDecimal128(o.Total)
	if err != nil {
		return err
	}
	doc := orderDoc{
		ID:        o.ID,
		Total:     total,
		CreatedAt: o.CreatedAt,
	}
	for _, ln := range o.Lines {
		price, err := toDecimal128(ln.UnitPrice)
		if err != nil {
			return err
		}
		doc.Lines = append(doc.Lines, orderLineDoc{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			UnitPrice: price,
			Quantity:  ln.Quantity,
		})
	}
	if _, err := s.orders.InsertOne(ctx, doc); err != nil {
		return storeErr("create order", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	var doc orderDoc
	err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, storeErr("get order", err)
	}

	o := domain.Order{ID: doc.ID, CreatedAt: doc.CreatedAt}
	if o.Total, err = fromDecimal128(doc.Total); err != nil {
		return domain.Order{}, err
	}
	for _, ln := range doc.Lines {
		price, err := fromDecimal128(ln.UnitPrice)
		if err != nil {
			return domain.Order{}, err
		}
		o.Lines = append(o.Lines, domain.OrderLine{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			UnitPrice: price,
			Quantity:  ln.Quantity,
		})
	}
	return o, nil
}

func toProductDoc(p domain.Product) (productDoc, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return productDoc{}, err
	}
	return productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       price,
		Stock:       p.Stock,
		Description: p.Description,
		Images:      p.Images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func fromProductDoc(doc productDoc) (domain.Product, error) {
	price, err := fromDecimal128(doc.Price)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ID:          doc.ID,
		Name:        doc.Name,
		Category:    doc.Category,
		Price:       price,
		Stock:       doc.Stock,
		Description: doc.Description,
		Images:      doc.Images,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	d128, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode decimal: %w", err)
	}
	return d128, nil
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	out, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode decimal: %w", err)
	}
	return out, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}
