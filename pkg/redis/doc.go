// Package redis connects to the Redis server used by identity.RedisStorage.
//
// Connect retries the initial ping according to Config, which is usually
// populated from environment variables:
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := identity.NewStore(identity.NewRedisStorage(client))
package redis
