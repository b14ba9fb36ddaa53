/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"go.uber.org/zap"
)

// RegisterParticipant registers a new supply-chain actor under a role.
// A participant registers itself; duplicate registration fails.
func (s *SmartContract) RegisterParticipant(ctx contractapi.TransactionContextInterface, id string, role string, name string) (*Participant, error) {
	if err := s.requireCaller(ctx, id); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: participant id required", ErrInvalidInput)
	}
	parsedRole, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	var existing Participant
	found, err := getJSON(ctx, participantKey(id), &existing)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, fmt.Errorf("%w: participant %s already registered", ErrInvalidState, id)
	}
	now, err := txTime(ctx)
	if err != nil {
		return nil, err
	}

	participant := Participant{
		ID:           id,
		Role:         parsedRole,
		Name:         name,
		RegisteredAt: now,
	}
	if err := putJSON(ctx, participantKey(id), &participant); err != nil {
		return nil, err
	}

	s.log().Info("participant registered", zap.String("id", id), zap.String("role", role))
	return &participant, nil
}

// GetParticipant retrieves a participant by id.
func (s *SmartContract) GetParticipant(ctx contractapi.TransactionContextInterface, id string) (*Participant, error) {
	return s.loadParticipant(ctx, id)
}

// IsParticipantRegistered reports whether an id is registered.
func (s *SmartContract) IsParticipantRegistered(ctx contractapi.TransactionContextInterface, id string) (bool, error) {
	var p Participant
	return getJSON(ctx, participantKey(id), &p)
}

// GetSupplyChainStats returns the global counters: units submitted, grams
// submitted and tokens paid out through settlements.
func (s *SmartContract) GetSupplyChainStats(ctx contractapi.TransactionContextInterface) (*SupplyChainStats, error) {
	totalWastes, err := getCounter(ctx, wasteCounterKey)
	if err != nil {
		return nil, err
	}
	var totalWeight, totalTokens uint64
	if _, err := getJSON(ctx, totalWeightKey, &totalWeight); err != nil {
		return nil, err
	}
	if _, err := getJSON(ctx, totalTokensKey, &totalTokens); err != nil {
		return nil, err
	}
	return &SupplyChainStats{
		TotalWastes:      totalWastes,
		TotalWeightGrams: totalWeight,
		TotalTokens:      totalTokens,
	}, nil
}

// creditEarnings adds a settlement payment to the payee's lifetime counter.
func (s *SmartContract) creditEarnings(ctx contractapi.TransactionContextInterface, id string, amount uint64) error {
	p, err := s.loadParticipant(ctx, id)
	if err != nil {
		return err
	}
	total, err := checkedAdd(p.TotalEarned, amount)
	if err != nil {
		return err
	}
	p.TotalEarned = total
	return putJSON(ctx, participantKey(id), p)
}

// creditProcessedWeight adds submitted weight to a participant's lifetime
// counter and to the global total.
func (s *SmartContract) creditProcessedWeight(ctx contractapi.TransactionContextInterface, id string, weightGrams uint64) error {
	p, err := s.loadParticipant(ctx, id)
	if err != nil {
		return err
	}
	total, err := checkedAdd(p.TotalWasteProcessed, weightGrams)
	if err != nil {
		return err
	}
	p.TotalWasteProcessed = total
	if err := putJSON(ctx, participantKey(id), p); err != nil {
		return err
	}
	return addToTotal(ctx, totalWeightKey, weightGrams)
}
