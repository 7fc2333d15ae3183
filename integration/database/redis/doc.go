// Package redis connects to Redis with retries and exposes a health probe.
//
// The client backs the shared cookie jar and the cross-process session
// broadcast channel.
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL: "redis://localhost:6379/0",
//		RetryAttempts: 3,
//		RetryInterval: 5 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	ready := redis.Healthcheck(client)
//
// Errors: ErrEmptyConnectionURL, ErrFailedToParseRedisConnString,
// ErrRedisNotReady and ErrHealthcheckFailed, matched with errors.Is.
package redis
