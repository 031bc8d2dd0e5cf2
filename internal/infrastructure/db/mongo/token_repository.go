package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nadscarim/task-management/internal/core/domain"
)

type RefreshTokenRepository struct {
	col   *mongo.Collection
	users *mongo.Collection
}

func NewRefreshTokenRepository(db *mongo.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{
		col:   db.Collection(collectionRefreshTokens),
		users: db.Collection(collectionUsers),
	}
}

type refreshTokenDoc struct {
	ID        string    `bson:"_id"`
	Token     string    `bson:"token"`
	UserID    string    `bson:"user_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

func (r *RefreshTokenRepository) Store(ctx context.Context, t *domain.RefreshToken) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, refreshTokenDoc{
		ID:        t.ID,
		Token:     t.Token,
		UserID:    t.UserID,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// FindActive resolves the grant and then its owner; there is no join, so a
// grant whose owner vanished in between is treated as missing.
func (r *RefreshTokenRepository) FindActive(ctx context.Context, token, userID string, now time.Time) (*domain.RefreshToken, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc refreshTokenDoc
	err := r.col.FindOne(ctx, bson.M{
		"token":      token,
		"user_id":    userID,
		"expires_at": bson.M{"$gte": now},
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, domain.ErrRefreshTokenInvalid
		}
		return nil, nil, fmt.Errorf("find refresh token: %w", err)
	}

	var owner userDoc
	if err := r.users.FindOne(ctx, bson.M{"_id": doc.UserID}).Decode(&owner); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, domain.ErrRefreshTokenInvalid
		}
		return nil, nil, fmt.Errorf("find refresh token owner: %w", err)
	}

	return &domain.RefreshToken{
		ID:        doc.ID,
		Token:     doc.Token,
		UserID:    doc.UserID,
		ExpiresAt: doc.ExpiresAt.UTC(),
		CreatedAt: doc.CreatedAt.UTC(),
	}, owner.toDomain(), nil
}

func (r *RefreshTokenRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	return r.deleteMany(ctx, "delete refresh token", bson.M{"token": token})
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.deleteMany(ctx, "delete expired refresh tokens", bson.M{"expires_at": bson.M{"$lt": now}})
}

func (r *RefreshTokenRepository) TrimUser(ctx context.Context, userID string, keep int) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(keep)).
		SetProjection(bson.M{"_id": 1})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return 0, fmt.Errorf("trim refresh tokens: %w", err)
	}

	var stale []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &stale); err != nil {
		return 0, fmt.Errorf("trim refresh tokens: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(stale))
	for _, s := range stale {
		ids = append(ids, s.ID)
	}
	return r.deleteMany(ctx, "trim refresh tokens", bson.M{"_id": bson.M{"$in": ids}})
}

func (r *RefreshTokenRepository) deleteMany(ctx context.Context, op string, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.DeletedCount, nil
}
