/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"go.uber.org/zap"
)

// allowedRoutes is the single source of truth for legal ownership moves.
// Manufacturer is always a terminal hop.
var allowedRoutes = map[Role][]Role{
	RoleRecycler:  {RoleCollector, RoleManufacturer},
	RoleCollector: {RoleManufacturer},
}

func routeAllowed(from, to Role) bool {
	for _, allowed := range allowedRoutes[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// appendTransfer allocates a transfer id and appends the record to the
// unit's history. Histories are append-only; insertion order is
// chronological order.
func (s *SmartContract) appendTransfer(ctx contractapi.TransactionContextInterface, wasteID uint64, from, to, note string, timestamp int64) (*TransferRecord, error) {
	id, err := nextID(ctx, transferCounterKey)
	if err != nil {
		return nil, err
	}
	record := TransferRecord{
		ID:        id,
		WasteID:   wasteID,
		From:      from,
		To:        to,
		Timestamp: timestamp,
		Note:      note,
	}
	history := []TransferRecord{}
	if _, err := getJSON(ctx, transfersKey(wasteID), &history); err != nil {
		return nil, err
	}
	if err := putJSON(ctx, transfersKey(wasteID), append(history, record)); err != nil {
		return nil, err
	}
	return &record, nil
}

// TransferWaste moves ownership of a unit along the supply chain. The sender
// must be the current owner and the sender/receiver roles must form a legal
// route.
func (s *SmartContract) TransferWaste(ctx contractapi.TransactionContextInterface, wasteID uint64, from string, to string, note string) (*WasteUnit, error) {
	if err := s.requireCaller(ctx, from); err != nil {
		return nil, err
	}
	unit, err := s.loadActiveWaste(ctx, wasteID)
	if err != nil {
		return nil, err
	}
	if unit.CurrentOwner != from {
		return nil, fmt.Errorf("%w: %s does not own waste %d", ErrUnauthorized, from, wasteID)
	}
	fromParticipant, err := s.loadParticipant(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("%w: sender %s not registered", ErrUnauthorized, from)
	}
	toParticipant, err := s.loadParticipant(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("%w: receiver %s not registered", ErrUnauthorized, to)
	}
	if !routeAllowed(fromParticipant.Role, toParticipant.Role) {
		return nil, fmt.Errorf("%w: transfer from %s to %s is not allowed", ErrUnauthorized, fromParticipant.Role, toParticipant.Role)
	}
	now, err := txTime(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.appendTransfer(ctx, wasteID, from, to, note, now); err != nil {
		return nil, err
	}
	unit.TransferTo(to)
	if err := putJSON(ctx, wasteKey(wasteID), unit); err != nil {
		return nil, err
	}
	if err := appendIDOnce(ctx, participantWastesKey(to), wasteID); err != nil {
		return nil, err
	}

	emitEvent(ctx, eventWasteTransferred, transferEvent{WasteID: wasteID, From: from, To: to, Timestamp: now})
	s.log().Info("waste transferred",
		zap.Uint64("wasteId", wasteID),
		zap.String("from", from),
		zap.String("to", to))
	return unit, nil
}

// TransferBulkWaste hands aggregated material from a collector straight to a
// manufacturer as a zero-weight placeholder unit. The manufacturer weighs the
// load afterwards with FinalizeBulkWeight.
func (s *SmartContract) TransferBulkWaste(ctx contractapi.TransactionContextInterface, category string, collector string, manufacturer string, note string) (*WasteUnit, error) {
	if err := s.requireCaller(ctx, collector); err != nil {
		return nil, err
	}
	parsedCategory, err := ParseWasteCategory(category)
	if err != nil {
		return nil, err
	}
	collectorParticipant, err := s.loadParticipant(ctx, collector)
	if err != nil {
		return nil, fmt.Errorf("%w: collector %s not registered", ErrUnauthorized, collector)
	}
	if collectorParticipant.Role != RoleCollector {
		return nil, fmt.Errorf("%w: only collectors can hand off bulk waste", ErrUnauthorized)
	}
	manufacturerParticipant, err := s.loadParticipant(ctx, manufacturer)
	if err != nil {
		return nil, fmt.Errorf("%w: manufacturer %s not registered", ErrUnauthorized, manufacturer)
	}
	if !manufacturerParticipant.Role.HasCapability(CapManufacture) {
		return nil, fmt.Errorf("%w: recipient must be a manufacturer", ErrUnauthorized)
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
		WeightGrams:  0,
		Submitter:    manufacturer,
		CurrentOwner: manufacturer,
		Status:       StatusPending,
		IsConfirmed:  false,
		Confirmer:    manufacturer,
		IsActive:     true,
		CreatedAt:    now,
	}
	if err := putJSON(ctx, wasteKey(id), &unit); err != nil {
		return nil, err
	}
	if _, err := s.appendTransfer(ctx, id, collector, manufacturer, note, now); err != nil {
		return nil, err
	}
	if err := appendIDOnce(ctx, participantWastesKey(collector), id); err != nil {
		return nil, err
	}
	if err := appendIDOnce(ctx, participantWastesKey(manufacturer), id); err != nil {
		return nil, err
	}

	emitEvent(ctx, eventBulkTransfer, transferEvent{WasteID: id, From: collector, To: manufacturer, Timestamp: now})
	s.log().Info("bulk waste transferred",
		zap.Uint64("wasteId", id),
		zap.String("collector", collector),
		zap.String("manufacturer", manufacturer))
	return &unit, nil
}

// GetWasteTransferHistory returns the unit's chronological transfer history.
// Unknown ids and untransferred units yield an empty history, not an error.
func (s *SmartContract) GetWasteTransferHistory(ctx contractapi.TransactionContextInterface, wasteID uint64) ([]TransferRecord, error) {
	history := []TransferRecord{}
	if _, err := getJSON(ctx, transfersKey(wasteID), &history); err != nil {
		return nil, err
	}
	return history, nil
}
