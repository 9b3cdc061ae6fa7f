package contract

import (
	"crypto/x509"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/stretchr/testify/require"
)

const (
	owner1 = "x509::CN=owner1,OU=client::CN=ca.org1.example.com"
	owner2 = "x509::CN=owner2,OU=client::CN=ca.org1.example.com"
	owner3 = "x509::CN=owner3,OU=client::CN=ca.org2.example.com"
	owner4 = "x509::CN=owner4,OU=client::CN=ca.org2.example.com"
)

// fakeIdentity stands in for the certificate-backed client identity.
type fakeIdentity struct {
	id    string
	mspID string
	err   error
}

var _ cid.ClientIdentity = (*fakeIdentity)(nil)

func (f *fakeIdentity) GetID() (string, error)    { return f.id, f.err }
func (f *fakeIdentity) GetMSPID() (string, error) { return f.mspID, nil }

func (f *fakeIdentity) GetAttributeValue(string) (string, bool, error) { return "", false, nil }

func (f *fakeIdentity) AssertAttributeValue(attrName, attrValue string) error {
	return fmt.Errorf("attribute %s not present", attrName)
}

func (f *fakeIdentity) GetX509Certificate() (*x509.Certificate, error) { return nil, nil }

type recordedEvent struct {
	name    string
	payload []byte
}

// testLedger drives the contract against a mock world state, one transaction per call.
type testLedger struct {
	t        *testing.T
	stub     *shimtest.MockStub
	contract *CropRegistryContract
	txSeq    int
}

func newTestLedger(t *testing.T) *testLedger {
	t.Helper()
	contract := &CropRegistryContract{}
	cc, err := contractapi.NewChaincode(contract)
	require.NoError(t, err)
	return &testLedger{
		t:        t,
		stub:     shimtest.NewMockStub("croptrace", cc),
		contract: contract,
	}
}

// as opens a new transaction invoked by caller.
func (l *testLedger) as(caller string) *contractapi.TransactionContext {
	l.t.Helper()
	l.txSeq++
	l.stub.MockTransactionStart(fmt.Sprintf("tx-%d", l.txSeq))
	ctx := new(contractapi.TransactionContext)
	ctx.SetStub(l.stub)
	ctx.SetClientIdentity(&fakeIdentity{id: caller, mspID: "Org1MSP"})
	return ctx
}

// events drains every event emitted since the last call.
func (l *testLedger) events() []recordedEvent {
	var out []recordedEvent
	for {
		select {
		case ev := <-l.stub.ChaincodeEventsChannel:
			out = append(out, recordedEvent{name: ev.EventName, payload: ev.Payload})
		default:
			return out
		}
	}
}

func (l *testLedger) mustCreate(caller, name, origin, destination string) uint64 {
	l.t.Helper()
	id, err := l.contract.CreateCrop(l.as(caller), name, origin, destination)
	require.NoError(l.t, err)
	return id
}

func decodeEvent(t *testing.T, ev recordedEvent, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ev.payload, into))
}
