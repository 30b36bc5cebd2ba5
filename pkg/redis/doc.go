// Package redis provides connection helpers for the Redis server that backs
// the job queues.
//
// It wraps the go-redis client with:
//
//   - Connect, which retries the initial connection using the supplied
//     configuration and verifies it with a ping.
//   - Healthcheck, a probe function for liveness/readiness endpoints.
//
// Configuration lives in the Config struct; its fields carry env tags so it
// can be populated through the config package.
//
// # Usage
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // terminate: the queue cannot run without its store
//	}
//	defer client.Close()
//
//	manager, err := queue.NewManager(client, queueCfg)
//
// Sentinel errors (ErrNotReady, ErrFailedToParseConnString) wrap the
// underlying go-redis errors via errors.Join and can be tested with
// errors.Is.
package redis
