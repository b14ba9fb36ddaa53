/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"go.uber.org/zap"
)

// SmartContract tracks recyclable waste units through the supply chain and
// settles token rewards against manufacturer incentive programs.
type SmartContract struct {
	contractapi.Contract
	logger *zap.Logger
}

// NewSmartContract builds the contract. A nil logger is replaced with a no-op
// logger so invocations never depend on logging being wired.
func NewSmartContract(logger *zap.Logger) *SmartContract {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SmartContract{logger: logger}
}

func (s *SmartContract) log() *zap.Logger {
	if s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}

// hasRole checks the caller's "role" identity attribute.
func (s *SmartContract) hasRole(ctx contractapi.TransactionContextInterface, role string) bool {
	val, found, err := ctx.GetClientIdentity().GetAttributeValue("role")
	if err != nil || !found {
		return false
	}
	return val == role
}

// isCaller compares the caller's enrollment ID against a participant id.
func (s *SmartContract) isCaller(ctx contractapi.TransactionContextInterface, id string) bool {
	enrollmentID, found, err := ctx.GetClientIdentity().GetAttributeValue("hf.EnrollmentID")
	if err != nil || !found {
		return false
	}
	return enrollmentID == id
}

func (s *SmartContract) requireCaller(ctx contractapi.TransactionContextInterface, id string) error {
	if !s.isCaller(ctx, id) {
		return fmt.Errorf("%w: caller is not %s", ErrUnauthorized, id)
	}
	return nil
}

func (s *SmartContract) requireAdmin(ctx contractapi.TransactionContextInterface) error {
	if !s.hasRole(ctx, "admin") {
		return fmt.Errorf("%w: admin role required", ErrUnauthorized)
	}
	return nil
}

// loadParticipant reads a participant record or fails with ErrNotFound.
func (s *SmartContract) loadParticipant(ctx contractapi.TransactionContextInterface, id string) (*Participant, error) {
	var p Participant
	found, err := getJSON(ctx, participantKey(id), &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: participant %s", ErrNotFound, id)
	}
	return &p, nil
}

// hasCapability is the single authorization predicate consulted by every
// role-gated operation. Unregistered identifiers hold no capabilities.
func (s *SmartContract) hasCapability(ctx contractapi.TransactionContextInterface, id string, c Capability) bool {
	p, err := s.loadParticipant(ctx, id)
	if err != nil {
		return false
	}
	return p.Role.HasCapability(c)
}

func (s *SmartContract) loadConfig(ctx contractapi.TransactionContextInterface) (*ChainConfig, error) {
	var cfg ChainConfig
	found, err := getJSON(ctx, configKey, &cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: configuration not initialized", ErrInvalidState)
	}
	return &cfg, nil
}

// InitializeConfig writes the initial configuration. Admin only; runs once.
func (s *SmartContract) InitializeConfig(ctx contractapi.TransactionContextInterface, collectorPercent uint64, ownerPercent uint64, tokenChaincode string, charity string) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	var existing ChainConfig
	found, err := getJSON(ctx, configKey, &existing)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: configuration already initialized", ErrInvalidState)
	}
	if collectorPercent > 100 || ownerPercent > 100 || collectorPercent+ownerPercent > 100 {
		return fmt.Errorf("%w: total percentages cannot exceed 100", ErrInvalidInput)
	}
	if tokenChaincode == "" {
		return fmt.Errorf("%w: token chaincode name required", ErrInvalidInput)
	}
	cfg := ChainConfig{
		CollectorPercent: collectorPercent,
		OwnerPercent:     ownerPercent,
		TokenChaincode:   tokenChaincode,
		Charity:          charity,
	}
	if err := putJSON(ctx, configKey, &cfg); err != nil {
		return err
	}
	s.log().Info("configuration initialized",
		zap.Uint64("collectorPercent", collectorPercent),
		zap.Uint64("ownerPercent", ownerPercent))
	return nil
}

// SetPercentages updates the reward split. Admin only; the sum must stay
// within 100 so the settlement remainder cannot go negative.
func (s *SmartContract) SetPercentages(ctx contractapi.TransactionContextInterface, collectorPercent uint64, ownerPercent uint64) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return err
	}
	if collectorPercent > 100 || ownerPercent > 100 || collectorPercent+ownerPercent > 100 {
		return fmt.Errorf("%w: total percentages cannot exceed 100", ErrInvalidInput)
	}
	cfg.CollectorPercent = collectorPercent
	cfg.OwnerPercent = ownerPercent
	return putJSON(ctx, configKey, cfg)
}

// GetCollectorPercentage returns the configured collector share.
func (s *SmartContract) GetCollectorPercentage(ctx contractapi.TransactionContextInterface) (uint64, error) {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return 0, err
	}
	return cfg.CollectorPercent, nil
}

// GetOwnerPercentage returns the configured submitter share.
func (s *SmartContract) GetOwnerPercentage(ctx contractapi.TransactionContextInterface) (uint64, error) {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return 0, err
	}
	return cfg.OwnerPercent, nil
}

// SetCharity points donations at a new charity participant. Admin only.
func (s *SmartContract) SetCharity(ctx contractapi.TransactionContextInterface, charity string) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if charity == "" {
		return fmt.Errorf("%w: charity identifier required", ErrInvalidInput)
	}
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg.Charity = charity
	return putJSON(ctx, configKey, cfg)
}
