package app

import "errors"

var (
	ErrConnectRedis = errors.New("failed to connect to redis")
	ErrConnectMongo = errors.New("failed to connect to mongodb")
	ErrClosed       = errors.New("app is closed")
)
