// Package users serves the site's user list from MongoDB.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, cfg.Database)
//	r.Get("/api/users", users.Handler[*router.Context](users.NewMongoRepository(db), log))
package users
