package scantoken

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenReplayed means the token's nonce was already consumed by an
// earlier decode.
var ErrTokenReplayed = errors.New("scan token already used")

// Service wraps the codec with a consumed-nonce set in redis, turning the
// 24-hour staleness window into a true single-use guarantee. The nonce keys
// carry a TTL matching the staleness window, after which the codec's own
// ErrTokenStale takes over.
type Service struct {
	codec *Codec
	redis *redis.Client
}

func NewService(codec *Codec, redisClient *redis.Client) *Service {
	return &Service{codec: codec, redis: redisClient}
}

func (s *Service) Encode(p Payload) (string, error) {
	return s.codec.Encode(p)
}

func (s *Service) Decode(ctx context.Context, token string) (*Payload, error) {
	p, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		ok, err := s.redis.SetNX(ctx, "scantoken:nonce:"+p.Nonce, 1, MaxTokenAge).Result()
		if err != nil {
			// Redis being down degrades to freshness-only checking rather
			// than rejecting every scan.
			return p, nil
		}
		if !ok {
			return nil, ErrTokenReplayed
		}
	}

	return p, nil
}

// WithClock overrides the codec's time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.codec.now = now
	return s
}
