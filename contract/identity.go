package contract

import (
	"fmt"
	"strings"

	"croptrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

func isValidX509ID(id string) bool {
	return strings.HasPrefix(id, "x509::") || strings.HasPrefix(id, "eDUwOTo6") // "eDUwOTo6" is "x509::" base64 encoded
}

// getCallerIdentity resolves the invoker of the current transaction. The full ID is treated as an
// opaque token: the registry only ever compares it for equality with stored owners.
func getCallerIdentity(ctx contractapi.TransactionContextInterface) (*model.CallerIdentity, error) {
	clientIdentity := ctx.GetClientIdentity()
	if clientIdentity == nil {
		return nil, fmt.Errorf("%w: client identity is nil from context", ErrUnauthorized)
	}
	id, err := clientIdentity.GetID()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get client identity ID from context: %v", ErrUnauthorized, err)
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: client identity ID from context is empty", ErrUnauthorized)
	}
	if !isValidX509ID(id) {
		logger.Debugf("Caller ID '%s' does not appear to be a standard X.509 format.", id)
	}
	mspID, err := clientIdentity.GetMSPID()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get caller MSPID: %v", ErrUnauthorized, err)
	}
	return &model.CallerIdentity{FullID: id, MSPID: mspID}, nil
}
