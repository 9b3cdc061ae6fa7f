package contract

import (
	"fmt"

	"croptrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("croptrace.cropcontract")

// Object types used as composite key namespaces and as 'objectType' in stored documents.
const (
	cropObjectType      = "Crop"        // Crop record. Attribute: padded crop id.
	historyObjectType   = "CropHistory" // One history entry. Attributes: padded crop id, padded sequence.
	nameIndexObjectType = "CropName"    // Name -> decimal crop id. Attribute: crop name.
	cropCounterKey      = "CropCounter" // Next crop id to issue, as a decimal string.
)

// Constants for input validation and listings
const (
	maxStringInputLength = 256
	maxIdentityLength    = 512
	defaultPageSize      = 10
	maxPageSize          = 100
)

// History entry labels.
const (
	detailCreated            = "Crop created"
	detailTransferred        = "Transferred to new owner"
	detailDelivered          = "Crop delivered"
	detailDestinationUpdated = "Destination updated"
)

// CropRegistryContract tracks crops through creation, custody transfers and a single terminal
// delivery, keeping an append-only history per crop.
// @contract:CropRegistryContract
type CropRegistryContract struct {
	contractapi.Contract
}

// Instantiate is called during chaincode instantiation.
func (s *CropRegistryContract) Instantiate(ctx contractapi.TransactionContextInterface) {
	logger.Info("CropRegistryContract Instantiated/Upgraded")
}

// GetCallerIdentity returns the identity the registry will record for the invoker.
func (s *CropRegistryContract) GetCallerIdentity(ctx contractapi.TransactionContextInterface) (*model.CallerIdentity, error) {
	caller, err := getCallerIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetCallerIdentity: %w", err)
	}
	logger.Debugf("GetCallerIdentity: caller '%s' (MSP '%s')", caller.FullID, caller.MSPID)
	return caller, nil
}
