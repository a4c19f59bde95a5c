package nonce

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo keeps counters in the relational store.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Increment creates the counter with value 1 or adds one to it and returns the new value
func (r *Repo) Increment(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("nonce_counters.value + 1")}),
		}).Create(&Counter{Name: name, Value: 1}).Error
		if err != nil {
			return err
		}

		return tx.Model(&Counter{}).Select("value").Where("name = ?", name).Scan(&value).Error
	})
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", name, err)
	}

	return value, nil
}

// RedisRepo keeps counters as redis keys.
type RedisRepo struct {
	client *redis.Client
}

func NewRedisRepo(client *redis.Client) *RedisRepo {
	return &RedisRepo{client: client}
}

func (r *RedisRepo) Increment(ctx context.Context, name string) (int64, error) {
	value, err := r.client.Incr(ctx, name).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", name, err)
	}

	return value, nil
}
