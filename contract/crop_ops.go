package contract

import (
	"fmt"
	"strconv"

	"croptrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Lifecycle: Custody Operations ---

// CreateCrop registers a new crop owned by the caller and returns its id.
func (s *CropRegistryContract) CreateCrop(ctx contractapi.TransactionContextInterface, name string, origin string, destination string) (model.CropID, error) {
	caller, err := getCallerIdentity(ctx)
	if err != nil {
		return 0, fmt.Errorf("CreateCrop: %w", err)
	}

	if err := s.validateRequiredString(name, "name", maxStringInputLength); err != nil {
		return 0, fmt.Errorf("CreateCrop: %w", err)
	}
	if err := s.validateRequiredString(origin, "origin", maxStringInputLength); err != nil {
		return 0, fmt.Errorf("CreateCrop: %w", err)
	}
	if err := s.validateRequiredString(destination, "destination", maxStringInputLength); err != nil {
		return 0, fmt.Errorf("CreateCrop: %w", err)
	}
	nameKey, err := s.createNameIndexKey(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("CreateCrop: %w", err)
	}

	id, err := s.readNextCropID(ctx)
	if err != nil {
		return 0, fmt.Errorf("CreateCrop: %w", err)
	}
	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return 0, fmt.Errorf("CreateCrop: %w", err)
	}

	previousIDBytes, err := ctx.GetStub().GetState(nameKey)
	if err != nil {
		return 0, fmt.Errorf("CreateCrop: %w: failed to read name index for '%s': %v", ErrLedger, name, err)
	}
	if previousIDBytes != nil {
		// Later registrations take over the name; the earlier crop stays reachable by id only.
		logger.Warningf("CreateCrop: name '%s' already indexed to crop %s, re-indexing to crop %d", name, string(previousIDBytes), id)
	}

	crop := model.Crop{
		ObjectType:   cropObjectType,
		ID:           id,
		Name:         name,
		Origin:       origin,
		Destination:  destination,
		CurrentOwner: caller.FullID,
		IsDelivered:  false,
		CreatedAt:    now,
	}
	event := model.CropCreatedEvent{
		ID: id, Name: name, Origin: origin, Destination: destination, Owner: caller.FullID,
	}

	if err := ctx.GetStub().PutState(cropCounterKey, []byte(strconv.FormatUint(id+1, 10))); err != nil {
		return 0, fmt.Errorf("CreateCrop: %w: failed to advance crop counter: %v", ErrLedger, err)
	}
	if err := ctx.GetStub().PutState(nameKey, []byte(strconv.FormatUint(id, 10))); err != nil {
		return 0, fmt.Errorf("CreateCrop: %w: failed to index name '%s': %v", ErrLedger, name, err)
	}
	if err := s.commitCropChange(ctx, &crop, detailCreated, caller.FullID, now, model.EventCropCreated, event); err != nil {
		return 0, fmt.Errorf("CreateCrop: %w", err)
	}

	logger.Infof("Crop %d ('%s') created by '%s' (MSP %s)", id, name, caller.FullID, caller.MSPID)
	return id, nil
}

// TransferCrop hands custody of an undelivered crop from the caller to newOwner.
// A transfer to the current owner is accepted and recorded like any other.
func (s *CropRegistryContract) TransferCrop(ctx contractapi.TransactionContextInterface, id model.CropID, newOwner string) error {
	caller, err := getCallerIdentity(ctx)
	if err != nil {
		return fmt.Errorf("TransferCrop: %w", err)
	}

	crop, err := s.getMutableCropForOwner(ctx, id, caller.FullID)
	if err != nil {
		return fmt.Errorf("TransferCrop: %w", err)
	}
	if err := s.validateRequiredString(newOwner, "newOwner", maxIdentityLength); err != nil {
		return fmt.Errorf("TransferCrop: %w", err)
	}
	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("TransferCrop: %w", err)
	}

	previousOwner := crop.CurrentOwner
	if previousOwner == newOwner {
		logger.Debugf("TransferCrop: crop %d transferred to its current owner '%s'", id, newOwner)
	}
	crop.CurrentOwner = newOwner
	event := model.CropTransferredEvent{
		ID: crop.ID, Name: crop.Name, Origin: crop.Origin, Destination: crop.Destination,
		FromOwner: previousOwner, ToOwner: newOwner,
	}
	// The entry credits the receiving owner.
	if err := s.commitCropChange(ctx, crop, detailTransferred, newOwner, now, model.EventCropTransferred, event); err != nil {
		return fmt.Errorf("TransferCrop: %w", err)
	}

	logger.Infof("Crop %d transferred from '%s' to '%s'", id, previousOwner, newOwner)
	return nil
}

// DeliverCrop marks the crop delivered. Delivery is terminal.
func (s *CropRegistryContract) DeliverCrop(ctx contractapi.TransactionContextInterface, id model.CropID) error {
	caller, err := getCallerIdentity(ctx)
	if err != nil {
		return fmt.Errorf("DeliverCrop: %w", err)
	}

	crop, err := s.getMutableCropForOwner(ctx, id, caller.FullID)
	if err != nil {
		return fmt.Errorf("DeliverCrop: %w", err)
	}
	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("DeliverCrop: %w", err)
	}

	crop.IsDelivered = true
	event := model.CropDeliveredEvent{
		ID: crop.ID, Name: crop.Name, Origin: crop.Origin, Destination: crop.Destination,
		FinalOwner: crop.CurrentOwner,
	}
	if err := s.commitCropChange(ctx, crop, detailDelivered, caller.FullID, now, model.EventCropDelivered, event); err != nil {
		return fmt.Errorf("DeliverCrop: %w", err)
	}

	logger.Infof("Crop %d delivered by '%s'", id, caller.FullID)
	return nil
}

// UpdateDestination reroutes an undelivered crop. Name and origin stay fixed.
func (s *CropRegistryContract) UpdateDestination(ctx contractapi.TransactionContextInterface, id model.CropID, newDestination string) error {
	caller, err := getCallerIdentity(ctx)
	if err != nil {
		return fmt.Errorf("UpdateDestination: %w", err)
	}

	crop, err := s.getMutableCropForOwner(ctx, id, caller.FullID)
	if err != nil {
		return fmt.Errorf("UpdateDestination: %w", err)
	}
	if err := s.validateRequiredString(newDestination, "newDestination", maxStringInputLength); err != nil {
		return fmt.Errorf("UpdateDestination: %w", err)
	}
	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("UpdateDestination: %w", err)
	}

	oldDestination := crop.Destination
	crop.Destination = newDestination
	event := model.DestinationUpdatedEvent{
		ID: crop.ID, Name: crop.Name, Origin: crop.Origin,
		OldDestination: oldDestination, NewDestination: newDestination, Owner: crop.CurrentOwner,
	}
	if err := s.commitCropChange(ctx, crop, detailDestinationUpdated, caller.FullID, now, model.EventDestinationUpdated, event); err != nil {
		return fmt.Errorf("UpdateDestination: %w", err)
	}

	logger.Infof("Crop %d destination updated by '%s': '%s' -> '%s'", id, caller.FullID, oldDestination, newDestination)
	return nil
}
