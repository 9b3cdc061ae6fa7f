package contract

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"croptrace/model"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Query Functions ---

// GetCropHistory returns every history entry of a crop in the order the events happened.
func (s *CropRegistryContract) GetCropHistory(ctx contractapi.TransactionContextInterface, id model.CropID) ([]model.HistoryEntry, error) {
	logger.Debugf("GetCropHistory: Querying history for crop %d", id)
	crop, err := s.getCropByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetCropHistory: %w", err)
	}

	historyIter, err := ctx.GetStub().GetStateByPartialCompositeKey(historyObjectType, []string{formatCropID(id)})
	if err != nil {
		return nil, fmt.Errorf("GetCropHistory: %w: failed to get history iterator for crop %d: %v", ErrLedger, id, err)
	}
	defer historyIter.Close()

	history := make([]model.HistoryEntry, 0, crop.HistoryLength)
	for historyIter.HasNext() {
		item, err := historyIter.Next()
		if err != nil {
			return nil, fmt.Errorf("GetCropHistory: %w: failed iterating history of crop %d: %v", ErrLedger, id, err)
		}
		var entry model.HistoryEntry
		if err := json.Unmarshal(item.Value, &entry); err != nil {
			return nil, fmt.Errorf("GetCropHistory: %w: failed to unmarshal history entry '%s': %v", ErrLedger, item.Key, err)
		}
		history = append(history, entry)
	}
	if uint32(len(history)) != crop.HistoryLength {
		logger.Warningf("GetCropHistory: crop %d records %d history entries but %d were found", id, crop.HistoryLength, len(history))
	}
	return history, nil
}

// GetCropNameByID returns the name a crop was registered with.
func (s *CropRegistryContract) GetCropNameByID(ctx contractapi.TransactionContextInterface, id model.CropID) (string, error) {
	crop, err := s.getCropByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("GetCropNameByID: %w", err)
	}
	return crop.Name, nil
}

// GetIDByCropName resolves a name through the name index. When several crops share a name the
// most recently created one wins; the indexed crop is re-read so a stale entry is never trusted.
// A name CreateCrop would refuse was never assigned, so it resolves to ErrNotFound.
func (s *CropRegistryContract) GetIDByCropName(ctx contractapi.TransactionContextInterface, name string) (model.CropID, error) {
	logger.Debugf("GetIDByCropName: Resolving crop name '%s'", name)
	if err := s.validateRequiredString(name, "name", maxStringInputLength); err != nil {
		return 0, fmt.Errorf("GetIDByCropName: %w: no crop named '%s' (%v)", ErrNotFound, name, err)
	}
	nameKey, err := s.createNameIndexKey(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("GetIDByCropName: %w", err)
	}
	idBytes, err := ctx.GetStub().GetState(nameKey)
	if err != nil {
		return 0, fmt.Errorf("GetIDByCropName: %w: failed to read name index for '%s': %v", ErrLedger, name, err)
	}
	if idBytes == nil {
		return 0, fmt.Errorf("GetIDByCropName: %w: no crop named '%s'", ErrNotFound, name)
	}
	id, err := strconv.ParseUint(string(idBytes), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("GetIDByCropName: %w: corrupt index entry for '%s': %v", ErrLedger, name, err)
	}

	crop, err := s.getCropByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("GetIDByCropName: %w", err)
	}
	if crop.Name != name {
		return 0, fmt.Errorf("GetIDByCropName: %w: no crop named '%s'", ErrNotFound, name)
	}
	return id, nil
}

// GetCropDetails returns the public view of a crop.
func (s *CropRegistryContract) GetCropDetails(ctx contractapi.TransactionContextInterface, id model.CropID) (*model.CropDetails, error) {
	crop, err := s.getCropByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetCropDetails: %w", err)
	}
	return &model.CropDetails{
		Name:         crop.Name,
		Origin:       crop.Origin,
		Destination:  crop.Destination,
		CurrentOwner: crop.CurrentOwner,
		IsDelivered:  crop.IsDelivered,
	}, nil
}

// GetCrop returns the full stored record, including timestamps and history length.
func (s *CropRegistryContract) GetCrop(ctx contractapi.TransactionContextInterface, id model.CropID) (*model.Crop, error) {
	crop, err := s.getCropByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetCrop: %w", err)
	}
	return crop, nil
}

// GetCropCount returns the number of crops ever registered, which is also the next id.
func (s *CropRegistryContract) GetCropCount(ctx contractapi.TransactionContextInterface) (uint64, error) {
	next, err := s.readNextCropID(ctx)
	if err != nil {
		return 0, fmt.Errorf("GetCropCount: %w", err)
	}
	return next, nil
}

// GetAllCrops lists crops in id order. The bookmark is the id of the last crop of the previous
// page; an empty NextBookmark means the listing is complete. Ids are dense and records are never
// removed, so a page is read key by key from the bookmark and costs the same wherever it starts.
func (s *CropRegistryContract) GetAllCrops(ctx contractapi.TransactionContextInterface, pageSizeStr string, bookmark string) (*model.PaginatedCropResponse, error) {
	pageSize := parsePageSize(pageSizeStr)
	logger.Infof("GetAllCrops: Listing crops (pageSize: %d, bookmark: '%s')", pageSize, bookmark)

	var start model.CropID
	if strings.TrimSpace(bookmark) != "" {
		after, err := strconv.ParseUint(strings.TrimSpace(bookmark), 10, 64)
		if err != nil || after == math.MaxUint64 {
			return nil, fmt.Errorf("GetAllCrops: %w: invalid bookmark '%s'", ErrInvalidInput, bookmark)
		}
		start = after + 1
	}

	count, err := s.readNextCropID(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetAllCrops: %w", err)
	}

	crops := []*model.Crop{}
	id := start
	for ; id < count && len(crops) < pageSize; id++ {
		cropKey, err := s.createCropCompositeKey(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("GetAllCrops: %w", err)
		}
		cropBytes, err := ctx.GetStub().GetState(cropKey)
		if err != nil {
			return nil, fmt.Errorf("GetAllCrops: %w: failed to read crop %d: %v", ErrLedger, id, err)
		}
		if cropBytes == nil {
			logger.Warningf("GetAllCrops: Crop %d is below the counter but has no record. Skipping.", id)
			continue
		}
		var crop model.Crop
		if err := json.Unmarshal(cropBytes, &crop); err != nil {
			logger.Warningf("GetAllCrops: Error unmarshalling crop (key: %s): %v. Skipping.", cropKey, err)
			continue
		}
		crops = append(crops, &crop)
	}

	nextBookmark := ""
	if id < count {
		nextBookmark = strconv.FormatUint(id-1, 10)
	}

	logger.Infof("GetAllCrops: Retrieved %d crops for this page.", len(crops))
	return &model.PaginatedCropResponse{
		Crops:        crops,
		NextBookmark: nextBookmark,
		FetchedCount: int32(len(crops)),
	}, nil
}

// GetCropsByOwner lists the crops currently in the custody of owner, delivered ones included.
func (s *CropRegistryContract) GetCropsByOwner(ctx contractapi.TransactionContextInterface, owner string) ([]*model.Crop, error) {
	if err := s.validateRequiredString(owner, "owner", maxIdentityLength); err != nil {
		return nil, fmt.Errorf("GetCropsByOwner: %w", err)
	}
	return s.cropsOwnedBy(ctx, "GetCropsByOwner", owner)
}

// GetMyCrops lists the crops currently in the caller's custody.
func (s *CropRegistryContract) GetMyCrops(ctx contractapi.TransactionContextInterface) ([]*model.Crop, error) {
	caller, err := getCallerIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetMyCrops: %w", err)
	}
	return s.cropsOwnedBy(ctx, "GetMyCrops", caller.FullID)
}

func (s *CropRegistryContract) cropsOwnedBy(ctx contractapi.TransactionContextInterface, op, owner string) ([]*model.Crop, error) {
	logger.Debugf("%s: Listing crops owned by '%s'", op, owner)
	resultsIterator, err := ctx.GetStub().GetStateByPartialCompositeKey(cropObjectType, []string{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: failed to get crops iterator: %v", op, ErrLedger, err)
	}
	defer resultsIterator.Close()

	crops := []*model.Crop{}
	err = s.scanCrops(resultsIterator, op, func(crop *model.Crop) bool {
		if crop.CurrentOwner == owner {
			crops = append(crops, crop)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return crops, nil
}

// scanCrops feeds decoded crops to visit until it returns false. Undecodable records are logged
// and skipped so one bad document cannot hide the rest of a listing.
func (s *CropRegistryContract) scanCrops(iterator shim.StateQueryIteratorInterface, op string, visit func(*model.Crop) bool) error {
	for iterator.HasNext() {
		queryResponse, err := iterator.Next()
		if err != nil {
			return fmt.Errorf("%s: %w: failed iterating crops: %v", op, ErrLedger, err)
		}
		var crop model.Crop
		if err := json.Unmarshal(queryResponse.Value, &crop); err != nil {
			logger.Warningf("%s: Error unmarshalling crop (key: %s): %v. Skipping.", op, queryResponse.Key, err)
			continue
		}
		if !visit(&crop) {
			return nil
		}
	}
	return nil
}
