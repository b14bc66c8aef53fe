package redis_client

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/transitdb/transitdb/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["REDIS_ADDRESS"] != "" {
		address = env["REDIS_ADDRESS"]
	}

	if env["REDIS_PASSWORD"] != "" {
		password = env["REDIS_PASSWORD"]
	}

	if env["REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := Client.Ping(context.Background())

	return statusCmd.Err()
}
