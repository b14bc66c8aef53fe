package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createVehiclesIndexes()
	createStopsIndexes()
}

func createVehiclesIndexes() {
	vehiclesCollection := GetCollection("vehicles")
	vehiclesIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "city", Value: 1}, {Key: "sideno", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "city", Value: 1}, {Key: "uniqueid", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "city", Value: 1}, {Key: "gtfsid", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := vehiclesCollection.Indexes().CreateMany(context.Background(), vehiclesIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createStopsIndexes() {
	stopsCollection := GetCollection("stops")
	stopsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "city", Value: 1}, {Key: "gtfsid", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "city", Value: 1}, {Key: "type", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := stopsCollection.Indexes().CreateMany(context.Background(), stopsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	stopGroupsCollection := GetCollection("stop_groups")
	stopGroupsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "city", Value: 1}, {Key: "groupid", Value: 1}},
		},
	}

	opts = options.CreateIndexes()
	_, err = stopGroupsCollection.Indexes().CreateMany(context.Background(), stopGroupsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
