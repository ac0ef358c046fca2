package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/sadopc/studyplan/internal/study"
)

const redisPrefix = "studyplan"

// RedisStore keeps each plan document under studyplan:<user>:<kind> with a
// studyplan:<user>:revision counter. Settings live in one shared hash.
type RedisStore struct {
	rdb     *goredis.Client
	timeout time.Duration
}

var _ Backend = (*RedisStore)(nil)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds the settings calls, which take no context.
	Timeout time.Duration
}

// NewRedis connects and seeds missing default settings.
func NewRedis(opts RedisOptions) (*RedisStore, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	r := &RedisStore{rdb: rdb, timeout: opts.Timeout}
	pipe := rdb.Pipeline()
	for k, v := range defaultSettings {
		pipe.HSetNX(ctx, r.settingsKey(), k, v)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("seed settings: %w", err)
	}
	return r, nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

func (r *RedisStore) docKey(userID string, kind Kind) string {
	return fmt.Sprintf("%s:%s:%s", redisPrefix, userID, kind)
}

func (r *RedisStore) revisionKey(userID string) string {
	return fmt.Sprintf("%s:%s:revision", redisPrefix, userID)
}

func (r *RedisStore) settingsKey() string {
	return redisPrefix + ":settings"
}

// LoadPlan fetches the revision and every document concurrently.
func (r *RedisStore) LoadPlan(ctx context.Context, userID string) (*study.Plan, Revision, error) {
	userID, err := checkUser(userID)
	if err != nil {
		return nil, 0, err
	}

	bodies := make([][]byte, len(Kinds))
	var rev int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.rdb.Get(gctx, r.revisionKey(userID)).Int64()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("get revision: %w", err)
		}
		rev = n
		return nil
	})
	for i, kind := range Kinds {
		g.Go(func() error {
			b, err := r.rdb.Get(gctx, r.docKey(userID, kind)).Bytes()
			if errors.Is(err, goredis.Nil) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("get %s: %w", kind, err)
			}
			bodies[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("load plan %s: %w", userID, err)
	}

	docs := make(map[Kind][]byte, len(Kinds))
	for i, kind := range Kinds {
		if bodies[i] != nil {
			docs[kind] = bodies[i]
		}
	}
	p, err := decodePlan(docs)
	if err != nil {
		return nil, 0, fmt.Errorf("load plan %s: %w", userID, err)
	}
	return p, Revision(rev), nil
}

// SavePlan writes every document and bumps the revision in one MULTI block.
func (r *RedisStore) SavePlan(ctx context.Context, userID string, p *study.Plan) error {
	userID, err := checkUser(userID)
	if err != nil {
		return err
	}
	docs, err := encodePlan(p)
	if err != nil {
		return err
	}
	_, err = r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, kind := range Kinds {
			pipe.Set(ctx, r.docKey(userID, kind), docs[kind], 0)
		}
		pipe.Incr(ctx, r.revisionKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("save plan %s: %w", userID, err)
	}
	return nil
}

// DeletePlan removes every key of userID.
func (r *RedisStore) DeletePlan(ctx context.Context, userID string) error {
	userID, err := checkUser(userID)
	if err != nil {
		return err
	}
	keys := []string{r.revisionKey(userID)}
	for _, kind := range Kinds {
		keys = append(keys, r.docKey(userID, kind))
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete plan %s: %w", userID, err)
	}
	return nil
}

func (r *RedisStore) GetSetting(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	v, err := r.rdb.HGet(ctx, r.settingsKey(), key).Result()
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return v, nil
}

func (r *RedisStore) SetSetting(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.rdb.HSet(ctx, r.settingsKey(), key, value).Err()
}

func (r *RedisStore) GetAllSettings() ([]Setting, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	m, err := r.rdb.HGetAll(ctx, r.settingsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	settings := make([]Setting, 0, len(m))
	for k, v := range m {
		settings = append(settings, Setting{Key: k, Value: v})
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, nil
}
