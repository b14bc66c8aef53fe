package storage

import (
	"context"

	"github.com/transitdb/transitdb/pkg/database"
	"github.com/transitdb/transitdb/pkg/transit"
	"github.com/transitdb/transitdb/pkg/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCityStorage persists one city's partition in MongoDB so identities
// survive restarts and are shared between instances.
type MongoCityStorage struct {
	city transit.City
}

type storeVehicle struct {
	City            transit.City `bson:"city"`
	transit.Vehicle `bson:",inline"`
}

type storeStop struct {
	City         transit.City `bson:"city"`
	transit.Stop `bson:",inline"`
}

type storeStopGroup struct {
	City              transit.City `bson:"city"`
	transit.StopGroup `bson:",inline"`
}

func NewMongoCityStorage(city transit.City) CityStorage {
	return &MongoCityStorage{city: city}
}

func (s *MongoCityStorage) City() transit.City {
	return s.city
}

func (s *MongoCityStorage) AddOrUpdateVehicle(ctx context.Context, vehicle transit.Vehicle, previous map[string]transit.Vehicle) (AddUpdateResult, error) {
	vehiclesCollection := database.GetCollection("vehicles")

	result := AddUpdateResultAdded

	if old, ok := previous[vehicle.SideNo]; ok {
		if old.GtfsID == vehicle.GtfsID && old.UniqueID == vehicle.UniqueID {
			return AddUpdateResultSkipped, nil
		}

		result = AddUpdateResultUpdated

		_, err := vehiclesCollection.DeleteMany(ctx, bson.M{
			"city":       s.city,
			"model.type": vehicle.Model.Type,
			"$or": bson.A{
				bson.M{"gtfsid": vehicle.GtfsID},
				bson.M{"uniqueid": vehicle.UniqueID},
				bson.M{"gtfsid": old.GtfsID},
				bson.M{"uniqueid": old.UniqueID},
				bson.M{"sideno": vehicle.SideNo},
			},
		})
		if err != nil {
			return AddUpdateResultSkipped, err
		}
	}

	filter := bson.M{"city": s.city, "sideno": vehicle.SideNo}
	replaceOptions := options.Replace().SetUpsert(true)
	_, err := vehiclesCollection.ReplaceOne(ctx, filter, storeVehicle{City: s.city, Vehicle: vehicle}, replaceOptions)
	if err != nil {
		return AddUpdateResultSkipped, err
	}

	return result, nil
}

func (s *MongoCityStorage) GetAllVehicles(ctx context.Context, vehicleType transit.VehicleType) ([]transit.Vehicle, error) {
	vehiclesCollection := database.GetCollection("vehicles")

	filter := bson.M{"city": s.city}
	if vehicleType != transit.VehicleTypeNone {
		filter["model.type"] = vehicleType
	}

	cursor, err := vehiclesCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var stored []storeVehicle
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, err
	}

	vehicles := make([]transit.Vehicle, 0, len(stored))
	for _, row := range stored {
		vehicles = append(vehicles, row.Vehicle)
	}

	return vehicles, nil
}

func (s *MongoCityStorage) GetVehicleByUniqueID(ctx context.Context, uniqueID int64, vehicleType transit.VehicleType) (*transit.Vehicle, error) {
	filter := bson.M{"city": s.city, "uniqueid": uniqueID}
	if vehicleType != transit.VehicleTypeNone {
		filter["model.type"] = vehicleType
	}

	return s.findOneVehicle(ctx, filter)
}

func (s *MongoCityStorage) GetVehicleByGtfsID(ctx context.Context, gtfsID int64, vehicleType transit.VehicleType) (*transit.Vehicle, error) {
	filter := bson.M{"city": s.city, "gtfsid": gtfsID}
	if vehicleType != transit.VehicleTypeNone {
		filter["model.type"] = vehicleType
	}

	return s.findOneVehicle(ctx, filter)
}

func (s *MongoCityStorage) GetVehicleBySideNo(ctx context.Context, sideNo string) (*transit.Vehicle, error) {
	return s.findOneVehicle(ctx, bson.M{"city": s.city, "sideno": sideNo})
}

func (s *MongoCityStorage) findOneVehicle(ctx context.Context, filter bson.M) (*transit.Vehicle, error) {
	vehiclesCollection := database.GetCollection("vehicles")

	var stored storeVehicle
	err := vehiclesCollection.FindOne(ctx, filter).Decode(&stored)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &stored.Vehicle, nil
}

func (s *MongoCityStorage) AddStops(ctx context.Context, stops []transit.Stop) error {
	if len(stops) == 0 {
		return nil
	}

	stopsCollection := database.GetCollection("stops")

	documents := make([]interface{}, 0, len(stops))
	for _, stop := range stops {
		documents = append(documents, storeStop{City: s.city, Stop: stop})
	}

	_, err := stopsCollection.InsertMany(ctx, documents)
	return err
}

func (s *MongoCityStorage) RemoveStops(ctx context.Context, gtfsIDs []string) error {
	if len(gtfsIDs) == 0 {
		return nil
	}

	stopsCollection := database.GetCollection("stops")

	_, err := stopsCollection.DeleteMany(ctx, bson.M{"city": s.city, "gtfsid": bson.M{"$in": gtfsIDs}})
	return err
}

func (s *MongoCityStorage) GetStopIDsByType(ctx context.Context, vehicleType transit.VehicleType) ([]string, error) {
	stopsCollection := database.GetCollection("stops")

	filter := bson.M{"city": s.city}
	if vehicleType != transit.VehicleTypeNone {
		filter["type"] = vehicleType
	}

	cursor, err := stopsCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var stored []storeStop
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(stored))
	for _, row := range stored {
		ids = append(ids, row.GtfsID)
	}

	return ids, nil
}

func (s *MongoCityStorage) CountStops(ctx context.Context) (int, error) {
	stopsCollection := database.GetCollection("stops")

	count, err := stopsCollection.CountDocuments(ctx, bson.M{"city": s.city})
	return int(count), err
}

func (s *MongoCityStorage) AddStopGroups(ctx context.Context, groups []transit.StopGroup) error {
	if len(groups) == 0 {
		return nil
	}

	stopGroupsCollection := database.GetCollection("stop_groups")

	documents := make([]interface{}, 0, len(groups))
	for _, group := range groups {
		documents = append(documents, storeStopGroup{City: s.city, StopGroup: group})
	}

	_, err := stopGroupsCollection.InsertMany(ctx, documents)
	return err
}

func (s *MongoCityStorage) RemoveStopGroups(ctx context.Context, groupIDs []string) error {
	if len(groupIDs) == 0 {
		return nil
	}

	stopGroupsCollection := database.GetCollection("stop_groups")

	_, err := stopGroupsCollection.DeleteMany(ctx, bson.M{"city": s.city, "groupid": bson.M{"$in": groupIDs}})
	return err
}

func (s *MongoCityStorage) GetAllStopGroupIDs(ctx context.Context) ([]string, error) {
	stopGroupsCollection := database.GetCollection("stop_groups")

	cursor, err := stopGroupsCollection.Find(ctx, bson.M{"city": s.city})
	if err != nil {
		return nil, err
	}

	var stored []storeStopGroup
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(stored))
	for _, row := range stored {
		ids = append(ids, row.GroupID)
	}

	return ids, nil
}

func (s *MongoCityStorage) FindStopGroups(ctx context.Context, query string, limit int) ([]transit.StopGroup, error) {
	stopGroupsCollection := database.GetCollection("stop_groups")

	cursor, err := stopGroupsCollection.Find(ctx, bson.M{"city": s.city})
	if err != nil {
		return nil, err
	}

	var stored []storeStopGroup
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, err
	}

	var groups []transit.StopGroup
	for _, row := range stored {
		if util.MatchesQuery(row.Name, query) {
			groups = append(groups, row.StopGroup)
			if limit > 0 && len(groups) >= limit {
				break
			}
		}
	}

	return groups, nil
}
