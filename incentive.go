/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"sort"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"go.uber.org/zap"
)

// loadIncentive reads an incentive program or fails with ErrNotFound.
func (s *SmartContract) loadIncentive(ctx contractapi.TransactionContextInterface, id uint64) (*IncentiveProgram, error) {
	var p IncentiveProgram
	found, err := getJSON(ctx, incentiveKey(id), &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: incentive %d", ErrNotFound, id)
	}
	return &p, nil
}

// CreateIncentive opens a new reward program. Only manufacturers may create
// incentives; rate and budget must be positive. Validation happens before the
// id counter advances so rejected calls never consume an id.
func (s *SmartContract) CreateIncentive(ctx contractapi.TransactionContextInterface, issuer string, category string, rewardRate uint64, totalBudget uint64) (*IncentiveProgram, error) {
	if err := s.requireCaller(ctx, issuer); err != nil {
		return nil, err
	}
	if !s.hasCapability(ctx, issuer, CapManufacture) {
		return nil, fmt.Errorf("%w: only manufacturers can create incentives", ErrUnauthorized)
	}
	parsedCategory, err := ParseWasteCategory(category)
	if err != nil {
		return nil, err
	}
	if rewardRate == 0 {
		return nil, fmt.Errorf("%w: reward rate must be greater than zero", ErrInvalidInput)
	}
	if totalBudget == 0 {
		return nil, fmt.Errorf("%w: total budget must be greater than zero", ErrInvalidInput)
	}
	now, err := txTime(ctx)
	if err != nil {
		return nil, err
	}

	id, err := nextID(ctx, incentiveCounterKey)
	if err != nil {
		return nil, err
	}
	program := IncentiveProgram{
		ID:              id,
		Issuer:          issuer,
		Category:        parsedCategory,
		RewardRate:      rewardRate,
		TotalBudget:     totalBudget,
		RemainingBudget: totalBudget,
		Active:          true,
		CreatedAt:       now,
	}
	if err := putJSON(ctx, incentiveKey(id), &program); err != nil {
		return nil, err
	}
	if err := appendIDOnce(ctx, issuerIndexKey(issuer), id); err != nil {
		return nil, err
	}
	if err := appendIDOnce(ctx, categoryIndexKey(parsedCategory), id); err != nil {
		return nil, err
	}

	emitEvent(ctx, eventIncentiveSet, incentiveEvent{
		IncentiveID: id,
		Issuer:      issuer,
		Category:    parsedCategory,
		RewardRate:  rewardRate,
		TotalBudget: totalBudget,
	})
	s.log().Info("incentive created",
		zap.Uint64("incentiveId", id),
		zap.String("issuer", issuer),
		zap.String("category", category))
	return &program, nil
}

// UpdateIncentive changes the rate and budget ceiling of an active program.
// The amount already spent is carried over: remaining = newBudget - used. If
// the new ceiling does not cover what was spent, the program deactivates with
// a zero remainder instead of going negative.
func (s *SmartContract) UpdateIncentive(ctx contractapi.TransactionContextInterface, incentiveID uint64, caller string, newRewardRate uint64, newTotalBudget uint64) (*IncentiveProgram, error) {
	if err := s.requireCaller(ctx, caller); err != nil {
		return nil, err
	}
	program, err := s.loadIncentive(ctx, incentiveID)
	if err != nil {
		return nil, err
	}
	if program.Issuer != caller {
		return nil, fmt.Errorf("%w: only the issuer can update an incentive", ErrUnauthorized)
	}
	if !program.Active {
		return nil, fmt.Errorf("%w: incentive %d is not active", ErrInvalidState, incentiveID)
	}
	if newRewardRate == 0 {
		return nil, fmt.Errorf("%w: reward rate must be greater than zero", ErrInvalidInput)
	}
	if newTotalBudget == 0 {
		return nil, fmt.Errorf("%w: total budget must be greater than zero", ErrInvalidInput)
	}

	used := program.TotalBudget - program.RemainingBudget
	program.RewardRate = newRewardRate
	program.TotalBudget = newTotalBudget
	if newTotalBudget > used {
		program.RemainingBudget = newTotalBudget - used
	} else {
		program.RemainingBudget = 0
		program.Active = false
	}
	if err := putJSON(ctx, incentiveKey(incentiveID), program); err != nil {
		return nil, err
	}

	emitEvent(ctx, eventIncentiveUpdated, incentiveEvent{
		IncentiveID: incentiveID,
		Issuer:      program.Issuer,
		Category:    program.Category,
		RewardRate:  newRewardRate,
		TotalBudget: newTotalBudget,
	})
	return program, nil
}

// SetIncentiveActive toggles a program's active flag. Issuer only.
func (s *SmartContract) SetIncentiveActive(ctx contractapi.TransactionContextInterface, incentiveID uint64, caller string, active bool) (*IncentiveProgram, error) {
	if err := s.requireCaller(ctx, caller); err != nil {
		return nil, err
	}
	program, err := s.loadIncentive(ctx, incentiveID)
	if err != nil {
		return nil, err
	}
	if program.Issuer != caller {
		return nil, fmt.Errorf("%w: only the issuer can change an incentive", ErrUnauthorized)
	}
	program.Active = active
	if err := putJSON(ctx, incentiveKey(incentiveID), program); err != nil {
		return nil, err
	}
	return program, nil
}

// GetIncentiveByID retrieves an incentive program by id. Inactive programs
// remain queryable for history.
func (s *SmartContract) GetIncentiveByID(ctx contractapi.TransactionContextInterface, incentiveID uint64) (*IncentiveProgram, error) {
	return s.loadIncentive(ctx, incentiveID)
}

// IncentiveExists reports whether an incentive id is known.
func (s *SmartContract) IncentiveExists(ctx contractapi.TransactionContextInterface, incentiveID uint64) (bool, error) {
	var p IncentiveProgram
	return getJSON(ctx, incentiveKey(incentiveID), &p)
}

// GetIncentivesByIssuer lists the ids of every program an issuer created, in
// creation order.
func (s *SmartContract) GetIncentivesByIssuer(ctx contractapi.TransactionContextInterface, issuer string) ([]uint64, error) {
	return getIDList(ctx, issuerIndexKey(issuer))
}

// GetIncentivesByCategory lists the ids of every program targeting a
// category, in creation order.
func (s *SmartContract) GetIncentivesByCategory(ctx contractapi.TransactionContextInterface, category string) ([]uint64, error) {
	parsedCategory, err := ParseWasteCategory(category)
	if err != nil {
		return nil, err
	}
	return getIDList(ctx, categoryIndexKey(parsedCategory))
}

// GetBestActiveIncentiveFor returns the issuer's active program with the
// highest reward rate for a category. Ties keep the earliest-created program.
func (s *SmartContract) GetBestActiveIncentiveFor(ctx contractapi.TransactionContextInterface, issuer string, category string) (*IncentiveProgram, error) {
	parsedCategory, err := ParseWasteCategory(category)
	if err != nil {
		return nil, err
	}
	ids, err := getIDList(ctx, issuerIndexKey(issuer))
	if err != nil {
		return nil, err
	}
	var best *IncentiveProgram
	for _, id := range ids {
		program, err := s.loadIncentive(ctx, id)
		if err != nil {
			return nil, err
		}
		if !program.Active || program.Category != parsedCategory {
			continue
		}
		if best == nil || program.RewardRate > best.RewardRate {
			best = program
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no active incentive for %s from %s", ErrNotFound, category, issuer)
	}
	return best, nil
}

// GetActiveIncentivesSorted returns the active programs for a category,
// reward rate descending. Ties keep creation order.
func (s *SmartContract) GetActiveIncentivesSorted(ctx contractapi.TransactionContextInterface, category string) ([]IncentiveProgram, error) {
	parsedCategory, err := ParseWasteCategory(category)
	if err != nil {
		return nil, err
	}
	ids, err := getIDList(ctx, categoryIndexKey(parsedCategory))
	if err != nil {
		return nil, err
	}
	programs := []IncentiveProgram{}
	for _, id := range ids {
		program, err := s.loadIncentive(ctx, id)
		if err != nil {
			return nil, err
		}
		if program.Active {
			programs = append(programs, *program)
		}
	}
	sort.SliceStable(programs, func(i, j int) bool {
		return programs[i].RewardRate > programs[j].RewardRate
	})
	return programs, nil
}
