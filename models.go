/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import "fmt"

// WasteCategory is the material type of a waste unit.
type WasteCategory string

const (
	CategoryPaper      WasteCategory = "PAPER"
	CategoryPetPlastic WasteCategory = "PETPLASTIC"
	CategoryPlastic    WasteCategory = "PLASTIC"
	CategoryMetal      WasteCategory = "METAL"
	CategoryGlass      WasteCategory = "GLASS"
)

// ParseWasteCategory validates a raw category argument.
func ParseWasteCategory(raw string) (WasteCategory, error) {
	switch WasteCategory(raw) {
	case CategoryPaper, CategoryPetPlastic, CategoryPlastic, CategoryMetal, CategoryGlass:
		return WasteCategory(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown waste category '%s'", ErrInvalidInput, raw)
	}
}

// WasteStatus is the lifecycle status of a waste unit. Pending and Processing
// are modifiable; Processed and Rejected are final.
type WasteStatus string

const (
	StatusPending    WasteStatus = "PENDING"
	StatusProcessing WasteStatus = "PROCESSING"
	StatusProcessed  WasteStatus = "PROCESSED"
	StatusRejected   WasteStatus = "REJECTED"
)

// ParseWasteStatus validates a raw status argument.
func ParseWasteStatus(raw string) (WasteStatus, error) {
	switch WasteStatus(raw) {
	case StatusPending, StatusProcessing, StatusProcessed, StatusRejected:
		return WasteStatus(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown waste status '%s'", ErrInvalidInput, raw)
	}
}

// IsFinal reports whether the status can no longer change.
func (s WasteStatus) IsFinal() bool {
	return s == StatusProcessed || s == StatusRejected
}

// Role is a participant's position in the supply chain.
type Role string

const (
	RoleRecycler     Role = "RECYCLER"
	RoleCollector    Role = "COLLECTOR"
	RoleManufacturer Role = "MANUFACTURER"
)

// ParseRole validates a raw role argument.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleRecycler, RoleCollector, RoleManufacturer:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown role '%s'", ErrInvalidInput, raw)
	}
}

// Capability is a role-derived permission checked before an operation.
type Capability string

const (
	CapCollect     Capability = "COLLECT"
	CapManufacture Capability = "MANUFACTURE"
	CapProcess     Capability = "PROCESS"
)

// HasCapability reports whether the role grants the capability.
func (r Role) HasCapability(c Capability) bool {
	switch c {
	case CapCollect:
		return r == RoleRecycler || r == RoleCollector
	case CapManufacture:
		return r == RoleManufacturer
	case CapProcess:
		return r == RoleRecycler
	default:
		return false
	}
}

// Participant is a registered supply-chain actor. Lifetime counters are
// updated by submissions and settlements.
type Participant struct {
	ID                  string `json:"id"`
	Role                Role   `json:"role"`
	Name                string `json:"name"`
	RegisteredAt        int64  `json:"registeredAt"`
	TotalWasteProcessed uint64 `json:"totalWasteProcessed"`
	TotalEarned         uint64 `json:"totalEarned"`
}

// WasteUnit is one tracked batch of recyclable material.
type WasteUnit struct {
	ID           uint64        `json:"id"`
	Category     WasteCategory `json:"category"`
	WeightGrams  uint64        `json:"weightGrams"`
	Submitter    string        `json:"submitter"`
	CurrentOwner string        `json:"currentOwner"`
	Status       WasteStatus   `json:"status"`
	IsConfirmed  bool          `json:"isConfirmed"`
	Confirmer    string        `json:"confirmer"`
	IsActive     bool          `json:"isActive"`
	Location     string        `json:"location"`
	CreatedAt    int64         `json:"createdAt"`
}

// Confirm marks the unit confirmed by the given party.
func (w *WasteUnit) Confirm(confirmer string) {
	w.IsConfirmed = true
	w.Confirmer = confirmer
}

// ResetConfirmation clears the confirmation and points the confirmer back at
// the current owner.
func (w *WasteUnit) ResetConfirmation() {
	w.IsConfirmed = false
	w.Confirmer = w.CurrentOwner
}

// Deactivate permanently removes the unit from circulation.
func (w *WasteUnit) Deactivate() {
	w.IsActive = false
}

// TransferTo hands ownership to a new holder.
func (w *WasteUnit) TransferTo(newOwner string) {
	w.CurrentOwner = newOwner
}

// TransferRecord is an immutable log entry of one ownership move.
type TransferRecord struct {
	ID        uint64 `json:"id"`
	WasteID   uint64 `json:"wasteId"`
	From      string `json:"from"`
	To        string `json:"to"`
	Timestamp int64  `json:"timestamp"`
	Note      string `json:"note"`
}

// IncentiveProgram is a manufacturer-funded standing reward offer for one
// material category, bounded by a budget.
type IncentiveProgram struct {
	ID              uint64        `json:"id"`
	Issuer          string        `json:"issuer"`
	Category        WasteCategory `json:"category"`
	RewardRate      uint64        `json:"rewardRate"`
	TotalBudget     uint64        `json:"totalBudget"`
	RemainingBudget uint64        `json:"remainingBudget"`
	Active          bool          `json:"active"`
	CreatedAt       int64         `json:"createdAt"`
}

// RewardFor computes the reward for a weight in grams: rate per kilogram,
// fractional kilograms ignored. Fails instead of wrapping on overflow.
func (p *IncentiveProgram) RewardFor(weightGrams uint64) (uint64, error) {
	return checkedMul(p.RewardRate, weightGrams/1000)
}

// Debit reduces the remaining budget and deactivates the program when it
// reaches zero. The caller must have verified amount <= RemainingBudget.
func (p *IncentiveProgram) Debit(amount uint64) {
	p.RemainingBudget -= amount
	if p.RemainingBudget == 0 {
		p.Active = false
	}
}

// ChainConfig is the on-ledger configuration written by the admin.
type ChainConfig struct {
	CollectorPercent uint64 `json:"collectorPercent"`
	OwnerPercent     uint64 `json:"ownerPercent"`
	TokenChaincode   string `json:"tokenChaincode"`
	Charity          string `json:"charity"`
}

// SupplyChainStats aggregates global counters across the whole ledger.
type SupplyChainStats struct {
	TotalWastes      uint64 `json:"totalWastes"`
	TotalWeightGrams uint64 `json:"totalWeightGrams"`
	TotalTokens      uint64 `json:"totalTokens"`
}
