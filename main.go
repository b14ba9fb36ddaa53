/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"log"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	chaincode, err := contractapi.NewChaincode(NewSmartContract(logger))
	if err != nil {
		logger.Fatal("failed to create chaincode", zap.Error(err))
	}
	if err := chaincode.Start(); err != nil {
		logger.Fatal("failed to start chaincode", zap.Error(err))
	}
}
