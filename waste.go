/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"go.uber.org/zap"
)

// loadWaste reads a waste unit or fails with ErrNotFound.
func (s *SmartContract) loadWaste(ctx contractapi.TransactionContextInterface, id uint64) (*WasteUnit, error) {
	var w WasteUnit
	found, err := getJSON(ctx, wasteKey(id), &w)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: waste %d", ErrNotFound, id)
	}
	return &w, nil
}

// loadActiveWaste additionally rejects deactivated units. Inactive is a
// distinct failure from unknown so callers can tell the two apart.
func (s *SmartContract) loadActiveWaste(ctx contractapi.TransactionContextInterface, id uint64) (*WasteUnit, error) {
	w, err := s.loadWaste(ctx, id)
	if err != nil {
		return nil, err
	}
	if !w.IsActive {
		return nil, fmt.Errorf("%w: waste %d is deactivated", ErrInvalidState, id)
	}
	return w, nil
}

// SubmitWaste registers a new waste unit owned by its submitter. Weight must
// be positive on this path; zero-weight placeholders are created only through
// TransferBulkWaste.
func (s *SmartContract) SubmitWaste(ctx contractapi.TransactionContextInterface, category string, weightGrams uint64, submitter string, location string) (*WasteUnit, error) {
	if err := s.requireCaller(ctx, submitter); err != nil {
		return nil, err
	}
	if _, err := s.loadParticipant(ctx, submitter); err != nil {
		return nil, fmt.Errorf("%w: submitter %s not registered", ErrUnauthorized, submitter)
	}
	parsedCategory, err := ParseWasteCategory(category)
	if err != nil {
		return nil, err
	}
	if weightGrams == 0 {
		return nil, fmt.Errorf("%w: weight must be greater than zero", ErrInvalidInput)
	}
	now, err := txTime(ctx)
	if err != nil {
		return nil, err
	}

	id, err := nextID(ctx, wasteCounterKey)
	if err != nil {
		return nil, err
	}
	unit := WasteUnit{
		ID:           id,
		Category:     parsedCategory,
		WeightGrams:  weightGrams,
		Submitter:    submitter,
		CurrentOwner: submitter,
		Status:       StatusPending,
		IsConfirmed:  false,
		Confirmer:    submitter,
		IsActive:     true,
		Location:     location,
		CreatedAt:    now,
	}
	if err := putJSON(ctx, wasteKey(id), &unit); err != nil {
		return nil, err
	}
	if err := appendIDOnce(ctx, participantWastesKey(submitter), id); err != nil {
		return nil, err
	}
	if err := s.creditProcessedWeight(ctx, submitter, weightGrams); err != nil {
		return nil, err
	}

	emitEvent(ctx, eventWasteRegistered, wasteEvent{WasteID: id, Category: parsedCategory, Actor: submitter, Timestamp: now})
	s.log().Info("waste submitted",
		zap.Uint64("wasteId", id),
		zap.String("category", category),
		zap.Uint64("weightGrams", weightGrams),
		zap.String("submitter", submitter))
	return &unit, nil
}

// UpdateWasteStatus moves the unit to a new status. It returns true on
// success and false, without mutating, when the current status is final.
// A final status is a caller-visible signal rather than a fault.
func (s *SmartContract) UpdateWasteStatus(ctx contractapi.TransactionContextInterface, wasteID uint64, status string) (bool, error) {
	newStatus, err := ParseWasteStatus(status)
	if err != nil {
		return false, err
	}
	unit, err := s.loadActiveWaste(ctx, wasteID)
	if err != nil {
		return false, err
	}
	if unit.Status.IsFinal() {
		return false, nil
	}
	unit.Status = newStatus
	if err := putJSON(ctx, wasteKey(wasteID), unit); err != nil {
		return false, err
	}
	return true, nil
}

// ConfirmWaste records third-party confirmation of a unit's details. The
// current owner may not confirm their own unit, and a confirmed unit stays
// confirmed until its owner resets it.
func (s *SmartContract) ConfirmWaste(ctx contractapi.TransactionContextInterface, wasteID uint64, confirmer string) (*WasteUnit, error) {
	if err := s.requireCaller(ctx, confirmer); err != nil {
		return nil, err
	}
	unit, err := s.loadActiveWaste(ctx, wasteID)
	if err != nil {
		return nil, err
	}
	if unit.CurrentOwner == confirmer {
		return nil, fmt.Errorf("%w: owner cannot confirm own waste", ErrUnauthorized)
	}
	if unit.IsConfirmed {
		return nil, fmt.Errorf("%w: waste %d already confirmed", ErrInvalidState, wasteID)
	}
	unit.Confirm(confirmer)
	if err := putJSON(ctx, wasteKey(wasteID), unit); err != nil {
		return nil, err
	}
	now, err := txTime(ctx)
	if err != nil {
		return nil, err
	}
	emitEvent(ctx, eventWasteConfirmed, wasteEvent{WasteID: wasteID, Actor: confirmer, Timestamp: now})
	return unit, nil
}

// ResetWasteConfirmation clears a confirmation. Only the current owner may
// reset, and only while the unit is confirmed.
func (s *SmartContract) ResetWasteConfirmation(ctx contractapi.TransactionContextInterface, wasteID uint64, owner string) (*WasteUnit, error) {
	if err := s.requireCaller(ctx, owner); err != nil {
		return nil, err
	}
	unit, err := s.loadActiveWaste(ctx, wasteID)
	if err != nil {
		return nil, err
	}
	if unit.CurrentOwner != owner {
		return nil, fmt.Errorf("%w: only the owner can reset confirmation", ErrUnauthorized)
	}
	if !unit.IsConfirmed {
		return nil, fmt.Errorf("%w: waste %d is not confirmed", ErrInvalidState, wasteID)
	}
	unit.ResetConfirmation()
	if err := putJSON(ctx, wasteKey(wasteID), unit); err != nil {
		return nil, err
	}
	now, err := txTime(ctx)
	if err != nil {
		return nil, err
	}
	emitEvent(ctx, eventConfirmReset, wasteEvent{WasteID: wasteID, Actor: owner, Timestamp: now})
	return unit, nil
}

// DeactivateWaste permanently removes a unit from circulation. Admin only.
// There is no reactivation operation.
func (s *SmartContract) DeactivateWaste(ctx contractapi.TransactionContextInterface, wasteID uint64) (*WasteUnit, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	unit, err := s.loadWaste(ctx, wasteID)
	if err != nil {
		return nil, err
	}
	if !unit.IsActive {
		return nil, fmt.Errorf("%w: waste %d already deactivated", ErrInvalidState, wasteID)
	}
	unit.Deactivate()
	if err := putJSON(ctx, wasteKey(wasteID), unit); err != nil {
		return nil, err
	}
	now, err := txTime(ctx)
	if err != nil {
		return nil, err
	}
	emitEvent(ctx, eventWasteDeactivated, wasteEvent{WasteID: wasteID, Actor: "admin", Timestamp: now})
	s.log().Info("waste deactivated", zap.Uint64("wasteId", wasteID))
	return unit, nil
}

// FinalizeBulkWeight sets the weight of a zero-weight placeholder created by
// a bulk hand-off. Only the current owner may finalize, exactly once.
func (s *SmartContract) FinalizeBulkWeight(ctx contractapi.TransactionContextInterface, wasteID uint64, caller string, weightGrams uint64) (*WasteUnit, error) {
	if err := s.requireCaller(ctx, caller); err != nil {
		return nil, err
	}
	unit, err := s.loadActiveWaste(ctx, wasteID)
	if err != nil {
		return nil, err
	}
	if unit.CurrentOwner != caller {
		return nil, fmt.Errorf("%w: only the owner can finalize the weight", ErrUnauthorized)
	}
	if unit.WeightGrams != 0 {
		return nil, fmt.Errorf("%w: waste %d weight already set", ErrInvalidState, wasteID)
	}
	if weightGrams == 0 {
		return nil, fmt.Errorf("%w: weight must be greater than zero", ErrInvalidInput)
	}
	unit.WeightGrams = weightGrams
	if err := putJSON(ctx, wasteKey(wasteID), unit); err != nil {
		return nil, err
	}
	if err := s.creditProcessedWeight(ctx, caller, weightGrams); err != nil {
		return nil, err
	}
	now, err := txTime(ctx)
	if err != nil {
		return nil, err
	}
	emitEvent(ctx, eventWeightFinalized, wasteEvent{WasteID: wasteID, Actor: caller, Timestamp: now})
	return unit, nil
}

// GetWaste retrieves a waste unit by id.
func (s *SmartContract) GetWaste(ctx contractapi.TransactionContextInterface, wasteID uint64) (*WasteUnit, error) {
	return s.loadWaste(ctx, wasteID)
}

// WasteExists reports whether a waste id is known.
func (s *SmartContract) WasteExists(ctx contractapi.TransactionContextInterface, wasteID uint64) (bool, error) {
	var w WasteUnit
	return getJSON(ctx, wasteKey(wasteID), &w)
}

// GetParticipantWastes lists every waste id the participant is or has been
// associated with: submitted, received or handed off. The index is
// append-only, so past associations survive later transfers.
func (s *SmartContract) GetParticipantWastes(ctx contractapi.TransactionContextInterface, participant string) ([]uint64, error) {
	return getIDList(ctx, participantWastesKey(participant))
}
