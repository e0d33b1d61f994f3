package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	booksCollection   = "books"
	borrowsCollection = "borrow_records"
)

type bookDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Author      string             `bson:"author"`
	Genre       string             `bson:"genre"`
	TotalCopies int                `bson:"total_copies"`
	LegacyID    *int64             `bson:"legacy_id,omitempty"`
}

type borrowDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     int64              `bson:"user_id"`
	Username   string             `bson:"username"`
	BookID     primitive.ObjectID `bson:"book_id"`
	BookTitle  string             `bson:"book_title"`
	BorrowDate time.Time          `bson:"borrow_date"`
	Returned   bool               `bson:"returned"`
	ReturnDate *time.Time         `bson:"return_date,omitempty"`
}

func (d *bookDoc) toModel() Book {
	return Book{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Author:      d.Author,
		Genre:       d.Genre,
		TotalCopies: d.TotalCopies,
		LegacyID:    d.LegacyID,
	}
}

func (d *borrowDoc) toModel() BorrowRecord {
	r := BorrowRecord{
		ID:         d.ID.Hex(),
		UserID:     d.UserID,
		Username:   d.Username,
		BookID:     d.BookID.Hex(),
		BookTitle:  d.BookTitle,
		BorrowDate: d.BorrowDate.UTC(),
		Returned:   d.Returned,
	}
	if d.ReturnDate != nil {
		v := d.ReturnDate.UTC()
		r.ReturnDate = &v
	}
	return r
}

// MongoStore keeps books and borrow records in two collections.
type MongoStore struct {
	books   *mongo.Collection
	borrows *mongo.Collection
}

func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{
		books:   database.Collection(booksCollection),
		borrows: database.Collection(borrowsCollection),
	}
}

var _ Store = (*MongoStore)(nil)

// EnsureIndexes creates the plain lookup indexes on the ledger.
// There is no unique index on (user_id, book_id, returned).
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.borrows.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "book_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create borrow indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) ListBooks(ctx context.Context) ([]Book, error) {
	cur, err := s.books.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	var docs []bookDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	out := make([]Book, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

func (s *MongoStore) GetBook(ctx context.Context, id string) (*Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound("book not found")
	}
	return s.findOneBook(ctx, bson.M{"_id": oid}, true)
}

func (s *MongoStore) FindBook(ctx context.Context, title, author string) (*Book, error) {
	return s.findOneBook(ctx, bson.M{"title": title, "author": author}, false)
}

func (s *MongoStore) GetBookByLegacyID(ctx context.Context, legacyID int64) (*Book, error) {
	return s.findOneBook(ctx, bson.M{"legacy_id": legacyID}, false)
}

func (s *MongoStore) findOneBook(ctx context.Context, filter bson.M, notFoundErr bool) (*Book, error) {
	var d bookDoc
	err := s.books.FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if notFoundErr {
			return nil, ErrNotFound("book not found")
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find book: %w", err)
	}
	b := d.toModel()
	return &b, nil
}

func (s *MongoStore) InsertBook(ctx context.Context, b *Book) error {
	d := bookDoc{
		Title:       b.Title,
		Author:      b.Author,
		Genre:       b.Genre,
		TotalCopies: b.TotalCopies,
		LegacyID:    b.LegacyID,
	}
	res, err := s.books.InsertOne(ctx, d)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert book: unexpected id type %T", res.InsertedID)
	}
	b.ID = oid.Hex()
	return nil
}

func (s *MongoStore) UpdateBook(ctx context.Context, b *Book) error {
	oid, err := primitive.ObjectIDFromHex(b.ID)
	if err != nil {
		return ErrNotFound("book not found")
	}
	res, err := s.books.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":        b.Title,
		"author":       b.Author,
		"genre":        b.Genre,
		"total_copies": b.TotalCopies,
	}})
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound("book not found")
	}
	return nil
}

func (s *MongoStore) DeleteBook(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound("book not found")
	}
	res, err := s.books.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound("book not found")
	}
	return nil
}

func (s *MongoStore) CountActiveBorrows(ctx context.Context, bookID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return 0, nil
	}
	n, err := s.borrows.CountDocuments(ctx, bson.M{"book_id": oid, "returned": false})
	if err != nil {
		return 0, fmt.Errorf("count borrows: %w", err)
	}
	return n, nil
}

func (s *MongoStore) HasActiveBorrow(ctx context.Context, userID int64, bookID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return false, nil
	}
	n, err := s.borrows.CountDocuments(ctx,
		bson.M{"user_id": userID, "book_id": oid, "returned": false},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count borrows: %w", err)
	}
	return n > 0, nil
}

func (s *MongoStore) InsertBorrow(ctx context.Context, r *BorrowRecord) error {
	bookOID, err := primitive.ObjectIDFromHex(r.BookID)
	if err != nil {
		return ErrInvalid("book id is not an ObjectID")
	}
	d := borrowDoc{
		UserID:     r.UserID,
		Username:   r.Username,
		BookID:     bookOID,
		BookTitle:  r.BookTitle,
		BorrowDate: r.BorrowDate,
		Returned:   r.Returned,
		ReturnDate: r.ReturnDate,
	}
	res, err := s.borrows.InsertOne(ctx, d)
	if err != nil {
		return fmt.Errorf("insert borrow: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert borrow: unexpected id type %T", res.InsertedID)
	}
	r.ID = oid.Hex()
	return nil
}

func (s *MongoStore) GetBorrow(ctx context.Context, id string) (*BorrowRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound("borrow record not found")
	}
	var d borrowDoc
	err = s.borrows.FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound("borrow record not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find borrow: %w", err)
	}
	r := d.toModel()
	return &r, nil
}

func (s *MongoStore) MarkReturned(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound("borrow record not found")
	}
	res, err := s.borrows.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"returned":    true,
		"return_date": at,
	}})
	if err != nil {
		return fmt.Errorf("mark returned: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound("borrow record not found")
	}
	return nil
}

func (s *MongoStore) ListActiveBorrows(ctx context.Context, userID *int64) ([]BorrowRecord, error) {
	filter := bson.M{"returned": false}
	if userID != nil {
		filter["user_id"] = *userID
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "user_id", Value: 1},
		{Key: "borrow_date", Value: -1},
	})
	cur, err := s.borrows.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find borrows: %w", err)
	}
	var docs []borrowDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode borrows: %w", err)
	}
	out := make([]BorrowRecord, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}
