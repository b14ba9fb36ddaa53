/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"encoding/json"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// Event names. Fabric delivers at most one event per transaction, so each
// operation emits exactly one. Events are best-effort notifications and are
// never consulted for control flow.
const (
	eventWasteRegistered  = "waste_registered"
	eventWasteTransferred = "waste_transfer"
	eventBulkTransfer     = "bulk_transfer"
	eventWasteConfirmed   = "waste_confirmed"
	eventConfirmReset     = "confirm_reset"
	eventWasteDeactivated = "waste_deactivated"
	eventWeightFinalized  = "weight_finalized"
	eventIncentiveSet     = "incentive_set"
	eventIncentiveUpdated = "incentive_updated"
	eventRewardsSettled   = "rewards_settled"
	eventDonationMade     = "donation_made"
)

type wasteEvent struct {
	WasteID   uint64        `json:"wasteId"`
	Category  WasteCategory `json:"category,omitempty"`
	Actor     string        `json:"actor"`
	Timestamp int64         `json:"timestamp"`
}

type transferEvent struct {
	WasteID   uint64 `json:"wasteId"`
	From      string `json:"from"`
	To        string `json:"to"`
	Timestamp int64  `json:"timestamp"`
}

type incentiveEvent struct {
	IncentiveID uint64        `json:"incentiveId"`
	Issuer      string        `json:"issuer"`
	Category    WasteCategory `json:"category"`
	RewardRate  uint64        `json:"rewardRate"`
	TotalBudget uint64        `json:"totalBudget"`
}

type settlementEvent struct {
	WasteID     uint64 `json:"wasteId"`
	IncentiveID uint64 `json:"incentiveId"`
	Issuer      string `json:"issuer"`
	TotalReward uint64 `json:"totalReward"`
}

type donationEvent struct {
	Donor   string `json:"donor"`
	Charity string `json:"charity"`
	Amount  uint64 `json:"amount"`
}

// emitEvent marshals the payload and sets it as the transaction event.
// Failures are swallowed: notifications must never fail the operation.
func emitEvent(ctx contractapi.TransactionContextInterface, name string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = ctx.GetStub().SetEvent(name, data)
}
