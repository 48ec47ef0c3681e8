package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"process_mate/internal/bootstrap"
	"process_mate/internal/domain/game"
	errs "process_mate/internal/errors"
)

// GameRepository keeps imported games in the Mongo "games" collection and
// the live tree+cursor of each session in Redis under the game key.
type GameRepository struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewGameRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *GameRepository {
	return &GameRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

func (g *GameRepository) GenerateGameKey(ctx context.Context) string {
	return uuid.New().String()
}

func (g *GameRepository) PutGameRecord(ctx context.Context, record game.Record) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection("games")

	_, err := collection.InsertOne(ctx, record)
	if err != nil {
		g.log.Errorf("failed to insert game record: %v", err)
		return err
	}

	g.log.Infof("game record stored with key: %s", record.GameKey)
	return nil
}

func (g *GameRepository) GetGameRecord(ctx context.Context, gameKey string) (game.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection("games")
	filter := bson.M{"game_key": gameKey}

	var record game.Record
	err := collection.FindOne(ctx, filter).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Record{}, errs.ErrGameNotFound
	} else if err != nil {
		g.log.Error(err)
		return game.Record{}, err
	}

	return record, nil
}

// SaveLiveState stores the serialized tree+cursor of a session.
func (g *GameRepository) SaveLiveState(ctx context.Context, gameKey string, state []byte) error {
	return g.redis.Set(ctx, liveStateKey(gameKey), state, 0).Err()
}

func (g *GameRepository) LoadLiveState(ctx context.Context, gameKey string) ([]byte, error) {
	data, err := g.redis.Get(ctx, liveStateKey(gameKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.ErrGameNotFound
	}
	return data, err
}

func (g *GameRepository) DeleteLiveState(ctx context.Context, gameKey string) error {
	return g.redis.Del(ctx, liveStateKey(gameKey)).Err()
}

func liveStateKey(gameKey string) string {
	return "board:" + gameKey
}
