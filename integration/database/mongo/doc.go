// Package mongo connects to MongoDB with retries and exposes a health probe.
//
// It backs the users listing endpoint.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, "")
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
// Environment:
//
//	MONGODB_URL                 (required to connect)
//	MONGODB_DATABASE            (default: brokerage)
//	MONGODB_CONNECT_TIMEOUT     (default: 10s)
//	MONGODB_MAX_POOL_SIZE       (default: 100)
//	MONGODB_MIN_POOL_SIZE       (default: 1)
//	MONGODB_MAX_CONN_IDLE_TIME  (default: 300s)
//	MONGODB_RETRY_WRITES        (default: true)
//	MONGODB_RETRY_READS         (default: true)
//	MONGODB_RETRY_ATTEMPTS      (default: 3)
//	MONGODB_RETRY_INTERVAL      (default: 5s)
package mongo
