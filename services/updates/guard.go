package updates

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	redisAddrFlag     = "redis-addr"
	redisPasswordFlag = "redis-password"
	redisDBFlag       = "redis-db"
	dedupTTLFlag      = "update-dedup-ttl"
)

const keyPrefix = "ophim-bot:update:"

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   redisAddrFlag,
			Usage:  "redis address for update de-duplication, disabled when empty",
			EnvVar: "REDIS_ADDR",
		},
		cli.StringFlag{
			Name:   redisPasswordFlag,
			Usage:  "redis password",
			EnvVar: "REDIS_PASSWORD",
		},
		cli.IntFlag{
			Name:   redisDBFlag,
			Usage:  "redis db",
			EnvVar: "REDIS_DB",
		},
		cli.DurationFlag{
			Name:   dedupTTLFlag,
			Usage:  "how long a delivered update id is remembered",
			EnvVar: "UPDATE_DEDUP_TTL",
			Value:  10 * time.Minute,
		},
	)
}

// Guard drops updates the transport delivers more than once. A nil Guard
// lets everything through.
type Guard struct {
	cl  redis.UniversalClient
	ttl time.Duration
}

func New(c *cli.Context) *Guard {
	addr := c.String(redisAddrFlag)
	if addr == "" {
		return nil
	}
	log.Infof("update de-duplication with redis at %v", addr)
	return NewGuard(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: c.String(redisPasswordFlag),
		DB:       c.Int(redisDBFlag),
	}), c.Duration(dedupTTLFlag))
}

func NewGuard(cl redis.UniversalClient, ttl time.Duration) *Guard {
	return &Guard{cl: cl, ttl: ttl}
}

// First reports whether id is seen for the first time. Redis failures
// count as first delivery.
func (s *Guard) First(ctx context.Context, id int64) bool {
	if s == nil {
		return true
	}
	ok, err := s.cl.SetNX(ctx, keyPrefix+strconv.FormatInt(id, 10), 1, s.ttl).Result()
	if err != nil {
		log.WithError(err).WithField("update", id).Warn("failed to check update id")
		return true
	}
	return ok
}

func (s *Guard) Close() {
	if s == nil {
		return
	}
	_ = s.cl.Close()
}
