package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"famjam-cli/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	maxWatchRetries     = 16
	defaultPingInterval = 30 * time.Second
)

var redisLogOnce sync.Once

// redisLogger sends go-redis internal messages (reconnects, bad pub/sub connections) to logrus
// instead of stderr, which the TUI owns.
type redisLogger struct {
	logger log.FieldLogger
}

func (l redisLogger) Printf(_ context.Context, format string, v ...interface{}) {
	l.logger.Warnf(format, v...)
}

// Redis keeps each board as a sorted set of task ids (score = createdAt µs), one hash per task
// and a pub/sub channel that receives a message after every committed write.
type Redis struct {
	rc     *redis.Client
	prefix string
	logger log.FieldLogger

	// pingInterval bounds how long a quiet subscription waits before checking the connection.
	pingInterval time.Duration
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedis connects and pings. A failed ping is reported as ConfigError.
func NewRedis(ctx context.Context, opts RedisOptions, logger log.FieldLogger) (*Redis, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	r := NewRedisFromClient(rc, opts.Prefix, logger)
	if err := r.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, ConfigError{Backend: "redis", Err: err}
	}
	return r, nil
}

// NewRedisFromClient wraps an existing client without pinging it.
func NewRedisFromClient(rc *redis.Client, prefix string, logger log.FieldLogger) *Redis {
	if logger == nil {
		logger = log.StandardLogger()
	}
	redisLogOnce.Do(func() {
		redis.SetLogger(redisLogger{logger: logger.WithField("component", "go-redis")})
	})
	return &Redis{
		rc:           rc,
		prefix:       prefix,
		logger:       logger.WithField("store", "redis"),
		pingInterval: defaultPingInterval,
	}
}

func (r *Redis) boardKey(board string) string { return r.prefix + "board:" + board }
func (r *Redis) indexKey(board string) string { return r.boardKey(board) + ":tasks" }
func (r *Redis) clockKey(board string) string { return r.boardKey(board) + ":clock" }
func (r *Redis) channel(board string) string { return r.boardKey(board) + ":changes" }
func (r *Redis) taskKey(board, id string) string { return r.boardKey(board) + ":task:" + id }

func (r *Redis) Ping(ctx context.Context) error {
	return r.rc.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.rc.Close()
}

// watch runs fn in a WATCH transaction, retrying when a watched key changed underneath.
func (r *Redis) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxWatchRetries; i++ {
		err := r.rc.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis: too much contention on %v", keys)
}

// serverClock returns a board-local timestamp from the Redis TIME command that is strictly
// greater than the last one handed out for this board. Must run inside a WATCH on clockKey.
func (r *Redis) serverClock(ctx context.Context, tx *redis.Tx, board string) (int64, error) {
	now, err := tx.Time(ctx).Result()
	if err != nil {
		return 0, err
	}
	ts := now.UnixMicro()
	last, err := tx.Get(ctx, r.clockKey(board)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	if ts <= last {
		ts = last + 1
	}
	return ts, nil
}

func (r *Redis) publish(ctx context.Context, board string) {
	if err := r.rc.Publish(ctx, r.channel(board), strconv.FormatInt(time.Now().UnixMicro(), 10)).Err(); err != nil {
		r.logger.WithError(err).WithField("board", board).Warn("publish change notification")
	}
}

func (r *Redis) Create(ctx context.Context, board string, fields map[string]string) (string, error) {
	id := uuid.NewString()
	doc := copyFields(fields)

	err := r.watch(ctx, func(tx *redis.Tx) error {
		ts, err := r.serverClock(ctx, tx, board)
		if err != nil {
			return err
		}
		stamp := strconv.FormatInt(ts, 10)
		doc[model.FieldCreatedAt] = stamp
		doc[model.FieldUpdatedAt] = stamp
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.clockKey(board), ts, 0)
			pipe.HSet(ctx, r.taskKey(board, id), hashValues(doc))
			pipe.ZAdd(ctx, r.indexKey(board), redis.Z{Score: float64(ts), Member: id})
			return nil
		})
		return err
	}, r.clockKey(board))
	if err != nil {
		return "", err
	}
	r.publish(ctx, board)
	return id, nil
}

func (r *Redis) Update(ctx context.Context, board, id string, fields map[string]string) error {
	key := r.taskKey(board, id)
	err := r.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		ts, err := r.serverClock(ctx, tx, board)
		if err != nil {
			return err
		}
		doc := copyFields(fields)
		delete(doc, model.FieldCreatedAt)
		doc[model.FieldUpdatedAt] = strconv.FormatInt(ts, 10)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.clockKey(board), ts, 0)
			pipe.HSet(ctx, key, hashValues(doc))
			return nil
		})
		return err
	}, key, r.clockKey(board))
	if err != nil {
		return err
	}
	r.publish(ctx, board)
	return nil
}

func (r *Redis) Delete(ctx context.Context, board, id string) error {
	return r.DeleteBatch(ctx, board, []string{id})
}

func (r *Redis) DeleteBatch(ctx context.Context, board string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	members := make([]any, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.taskKey(board, id))
		members = append(members, id)
	}
	_, err := r.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, r.indexKey(board), members...)
		return nil
	})
	if err != nil {
		return err
	}
	r.publish(ctx, board)
	return nil
}

func (r *Redis) Query(ctx context.Context, board string, where Where) ([]Doc, error) {
	ids, err := r.rc.ZRevRange(ctx, r.indexKey(board), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Doc{}, nil
	}

	pipe := r.rc.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, r.taskKey(board, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	docs := make([]Doc, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		// Index and hash are written together; an empty hash means a delete raced the read.
		if len(fields) == 0 || !where.matches(fields) {
			continue
		}
		docs = append(docs, Doc{ID: ids[i], Fields: fields})
	}
	return docs, nil
}

// Subscribe listens on the board's change channel and re-reads the whole board for every
// notification. The subscription is confirmed before the first snapshot is read so no write
// between the two can be missed.
//
// A broken connection is terminal: go-redis would silently resubscribe and any notification
// published meanwhile would be lost, so the first receive error goes to onError instead.
func (r *Redis) Subscribe(board string, onSnapshot func([]Doc), onError func(error)) func() {
	ctx, cancel := context.WithCancel(context.Background())
	logger := r.logger.WithField("board", board)
	// No channels yet, so this does no I/O.
	sub := r.rc.Subscribe(ctx)

	go func() {
		defer sub.Close()

		fail := func(err error) {
			if ctx.Err() != nil {
				return
			}
			logger.WithError(err).Warn("change feed failed")
			onError(err)
		}
		emit := func() bool {
			docs, err := r.Query(ctx, board, Where{})
			if err != nil {
				fail(err)
				return false
			}
			if ctx.Err() != nil {
				return false
			}
			onSnapshot(docs)
			return true
		}

		if err := sub.Subscribe(ctx, r.channel(board)); err != nil {
			fail(err)
			return
		}
		if _, err := sub.ReceiveTimeout(ctx, r.pingInterval); err != nil {
			fail(err)
			return
		}
		if !emit() {
			return
		}

		for {
			msg, err := sub.ReceiveTimeout(ctx, r.pingInterval)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				// An idle read deadline is not a failure; a ping proves the connection.
				var ne net.Error
				if errors.As(err, &ne) && ne.Timeout() {
					if err := sub.Ping(ctx); err != nil {
						fail(err)
						return
					}
					continue
				}
				fail(err)
				return
			}
			if _, ok := msg.(*redis.Message); ok && !emit() {
				return
			}
		}
	}()

	return func() {
		cancel()
		// Unblocks a pending receive.
		_ = sub.Close()
	}
}

func hashValues(doc map[string]string) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
