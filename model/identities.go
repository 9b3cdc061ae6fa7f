// File: model/identities.go
package model

// CallerIdentity describes the invoker of a transaction as seen by the chaincode.
type CallerIdentity struct {
	FullID string `json:"fullId"` // Opaque identity token (x509::subject::issuer)
	MSPID  string `json:"mspId"`  // Membership service provider of the caller's organization
}
