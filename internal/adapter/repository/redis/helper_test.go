package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	infraredis "github.com/iho/assetvault/internal/infrastructure/redis"
)

// newTestRedisClient connects through the service's own client constructor
// to a throwaway miniredis instance.
func newTestRedisClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := infraredis.NewClient(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("failed to connect to miniredis: %v", err)
	}

	return client, mr
}
