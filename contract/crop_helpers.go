package contract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"croptrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Core Helper Methods (used across multiple operations) ---

// getCurrentTxTimestamp retrieves the current transaction timestamp from the stub.
func (s *CropRegistryContract) getCurrentTxTimestamp(ctx contractapi.TransactionContextInterface) (time.Time, error) {
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: failed to get transaction timestamp: %v", ErrLedger, err)
	}
	return ts.AsTime(), nil
}

// formatCropID renders an id as a fixed-width key attribute so key order equals id order.
func formatCropID(id model.CropID) string {
	return fmt.Sprintf("%020d", id)
}

func (s *CropRegistryContract) createCropCompositeKey(ctx contractapi.TransactionContextInterface, id model.CropID) (string, error) {
	key, err := ctx.GetStub().CreateCompositeKey(cropObjectType, []string{formatCropID(id)})
	if err != nil {
		return "", fmt.Errorf("%w: failed to create key for crop %d: %v", ErrLedger, id, err)
	}
	return key, nil
}

func (s *CropRegistryContract) createHistoryCompositeKey(ctx contractapi.TransactionContextInterface, id model.CropID, seq uint32) (string, error) {
	key, err := ctx.GetStub().CreateCompositeKey(historyObjectType, []string{formatCropID(id), fmt.Sprintf("%010d", seq)})
	if err != nil {
		return "", fmt.Errorf("%w: failed to create history key for crop %d: %v", ErrLedger, id, err)
	}
	return key, nil
}

// createNameIndexKey fails for names the ledger cannot use as a key attribute (e.g. invalid UTF-8).
func (s *CropRegistryContract) createNameIndexKey(ctx contractapi.TransactionContextInterface, name string) (string, error) {
	key, err := ctx.GetStub().CreateCompositeKey(nameIndexObjectType, []string{name})
	if err != nil {
		return "", fmt.Errorf("%w: name '%s' cannot be indexed: %v", ErrInvalidInput, name, err)
	}
	return key, nil
}

// --- Validation Helper Functions ---

// validateRequiredString rejects invalid UTF-8 because the JSON encoding of a record would
// silently replace those bytes and the stored value would no longer match the supplied one.
func (s *CropRegistryContract) validateRequiredString(input, field string, max int) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidInput, field)
	}
	if !utf8.ValidString(input) {
		return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidInput, field)
	}
	if len(input) > max {
		return fmt.Errorf("%w: %s exceeds max length %d", ErrInvalidInput, field, max)
	}
	return nil
}

// --- Guards ---
// Each guard inspects state only. Mutations run every guard before their first write.

func requireNotDelivered(crop *model.Crop) error {
	if crop.IsDelivered {
		return fmt.Errorf("%w: crop %d has already been delivered", ErrInvalidState, crop.ID)
	}
	return nil
}

func requireOwner(crop *model.Crop, callerID string) error {
	if crop.CurrentOwner != callerID {
		return fmt.Errorf("%w: caller '%s' is not the current owner of crop %d", ErrUnauthorized, callerID, crop.ID)
	}
	return nil
}

// getMutableCropForOwner loads a crop and runs the guards shared by every owner-gated mutation.
// Order matters for the reported reason: unknown id, then terminal state, then custody.
func (s *CropRegistryContract) getMutableCropForOwner(ctx contractapi.TransactionContextInterface, id model.CropID, callerID string) (*model.Crop, error) {
	crop, err := s.getCropByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireNotDelivered(crop); err != nil {
		return nil, err
	}
	if err := requireOwner(crop, callerID); err != nil {
		return nil, err
	}
	return crop, nil
}

// --- State access ---

// getCropByID reads a crop record. Existence is decided by key presence alone, so id 0 is an
// ordinary id.
func (s *CropRegistryContract) getCropByID(ctx contractapi.TransactionContextInterface, id model.CropID) (*model.Crop, error) {
	cropKey, err := s.createCropCompositeKey(ctx, id)
	if err != nil {
		return nil, err
	}
	cropBytes, err := ctx.GetStub().GetState(cropKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read crop %d from ledger: %v", ErrLedger, id, err)
	}
	if cropBytes == nil {
		return nil, fmt.Errorf("%w: crop with ID %d does not exist", ErrNotFound, id)
	}
	var crop model.Crop
	if err := json.Unmarshal(cropBytes, &crop); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal crop %d: %v", ErrLedger, id, err)
	}
	return &crop, nil
}

func (s *CropRegistryContract) putCrop(ctx contractapi.TransactionContextInterface, crop *model.Crop) error {
	cropKey, err := s.createCropCompositeKey(ctx, crop.ID)
	if err != nil {
		return err
	}
	cropBytes, err := json.Marshal(crop)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal crop %d: %v", ErrLedger, crop.ID, err)
	}
	if err := ctx.GetStub().PutState(cropKey, cropBytes); err != nil {
		return fmt.Errorf("%w: failed to save crop %d: %v", ErrLedger, crop.ID, err)
	}
	return nil
}

// readNextCropID returns the id the next CreateCrop will receive.
func (s *CropRegistryContract) readNextCropID(ctx contractapi.TransactionContextInterface) (model.CropID, error) {
	counterBytes, err := ctx.GetStub().GetState(cropCounterKey)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read crop counter: %v", ErrLedger, err)
	}
	if counterBytes == nil {
		return 0, nil
	}
	next, err := strconv.ParseUint(string(counterBytes), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: corrupt crop counter '%s': %v", ErrLedger, string(counterBytes), err)
	}
	return next, nil
}

// appendHistory writes the crop's next history entry under its own key. Existing entries are
// never rewritten; the sequence is taken from and advanced on the crop record, which the caller
// must persist in the same transaction.
func (s *CropRegistryContract) appendHistory(ctx contractapi.TransactionContextInterface, crop *model.Crop, detail, actor string, now time.Time) error {
	entry := model.HistoryEntry{
		CropID:    crop.ID,
		Sequence:  crop.HistoryLength,
		Detail:    detail,
		Actor:     actor,
		Timestamp: now,
		TxID:      ctx.GetStub().GetTxID(),
	}
	historyKey, err := s.createHistoryCompositeKey(ctx, crop.ID, entry.Sequence)
	if err != nil {
		return err
	}
	entryBytes, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal history entry for crop %d: %v", ErrLedger, crop.ID, err)
	}
	if err := ctx.GetStub().PutState(historyKey, entryBytes); err != nil {
		return fmt.Errorf("%w: failed to append history for crop %d: %v", ErrLedger, crop.ID, err)
	}
	crop.HistoryLength++
	crop.LastUpdatedAt = now
	return nil
}

// commitCropChange persists a mutated crop together with its history entry and event. The event
// payload is marshalled before this helper writes anything; if a write fails the returned error
// makes the peer discard the whole write set.
func (s *CropRegistryContract) commitCropChange(ctx contractapi.TransactionContextInterface, crop *model.Crop, detail, actor string, now time.Time, eventName string, eventPayload interface{}) error {
	eventBytes, err := json.Marshal(eventPayload)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal %s event for crop %d: %v", ErrLedger, eventName, crop.ID, err)
	}
	if err := s.appendHistory(ctx, crop, detail, actor, now); err != nil {
		return err
	}
	if err := s.putCrop(ctx, crop); err != nil {
		return err
	}
	if err := ctx.GetStub().SetEvent(eventName, eventBytes); err != nil {
		return fmt.Errorf("%w: failed to set event '%s' for crop %d: %v", ErrLedger, eventName, crop.ID, err)
	}
	return nil
}

// parsePageSize mirrors the listing defaults: invalid or non-positive sizes fall back to the
// default, oversized requests are capped.
func parsePageSize(pageSizeStr string) int {
	pageSize, err := strconv.Atoi(strings.TrimSpace(pageSizeStr))
	if err != nil || pageSize <= 0 {
		return defaultPageSize
	}
	if pageSize > maxPageSize {
		return maxPageSize
	}
	return pageSize
}
