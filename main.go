package main

import (
	"fmt"
	"os"

	"croptrace/contract"
	"croptrace/internal/config"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("croptrace.main")

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Error loading configuration: " + err.Error())
	}
	if err := flogging.Global.ActivateSpec(cfg.Log.Spec); err != nil {
		panic("Error activating log spec '" + cfg.Log.Spec + "': " + err.Error())
	}

	cc, err := contractapi.NewChaincode(&contract.CropRegistryContract{})
	if err != nil {
		panic("Error creating CropRegistryContract: " + err.Error())
	}

	if !cfg.ExternalService() {
		if err := cc.Start(); err != nil {
			panic("Error starting chaincode: " + err.Error())
		}
		return
	}

	server, err := newChaincodeServer(cfg, cc)
	if err != nil {
		panic("Error configuring chaincode server: " + err.Error())
	}
	logger.Infof("Starting chaincode server '%s' on %s (TLS: %t)", cfg.Chaincode.ID, cfg.Chaincode.Address, cfg.Chaincode.TLS.Enabled)
	if err := server.Start(); err != nil {
		panic("Error starting chaincode server: " + err.Error())
	}
}

// newChaincodeServer builds the chaincode-as-a-service endpoint.
func newChaincodeServer(cfg config.Config, cc shim.Chaincode) (*shim.ChaincodeServer, error) {
	tlsProps := shim.TLSProperties{Disabled: !cfg.Chaincode.TLS.Enabled}
	if cfg.Chaincode.TLS.Enabled {
		key, err := os.ReadFile(cfg.Chaincode.TLS.Key)
		if err != nil {
			return nil, fmt.Errorf("read TLS key: %w", err)
		}
		cert, err := os.ReadFile(cfg.Chaincode.TLS.Cert)
		if err != nil {
			return nil, fmt.Errorf("read TLS cert: %w", err)
		}
		tlsProps.Key = key
		tlsProps.Cert = cert
		if cfg.Chaincode.TLS.ClientCACert != "" {
			clientCA, err := os.ReadFile(cfg.Chaincode.TLS.ClientCACert)
			if err != nil {
				return nil, fmt.Errorf("read TLS client CA cert: %w", err)
			}
			tlsProps.ClientCACerts = clientCA
		}
	}
	return &shim.ChaincodeServer{
		CCID:     cfg.Chaincode.ID,
		Address:  cfg.Chaincode.Address,
		CC:       cc,
		TLSProps: tlsProps,
	}, nil
}
