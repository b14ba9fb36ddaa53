/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"strconv"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"go.uber.org/zap"
)

// payment is one computed settlement disbursement, resolved in full before
// any value moves.
type payment struct {
	to     string
	amount uint64
}

// pay moves tokens through the configured token chaincode. Zero amounts are
// skipped. A non-OK response fails the call, which aborts the enclosing
// transaction and discards every pending write.
func (s *SmartContract) pay(ctx contractapi.TransactionContextInterface, cfg *ChainConfig, from, to string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	args := [][]byte{
		[]byte("Transfer"),
		[]byte(from),
		[]byte(to),
		[]byte(strconv.FormatUint(amount, 10)),
	}
	resp := ctx.GetStub().InvokeChaincode(cfg.TokenChaincode, args, "")
	if resp.Status != shim.OK {
		return fmt.Errorf("token transfer of %d from %s to %s failed: %s", amount, from, to, resp.Message)
	}
	return nil
}

// SettleRewards disburses the reward for one waste unit against one incentive
// program and debits the program's budget. Settlement is decoupled from the
// unit's status field; only the category must match the program.
//
// The full payout plan is computed and validated before the first payment:
// every collector in the unit's transfer history receives the collector
// share, the original submitter receives the owner share, and the current
// holder receives the remainder. The budget debit is written last so a failed
// payment leaves no partial state.
func (s *SmartContract) SettleRewards(ctx contractapi.TransactionContextInterface, wasteID uint64, incentiveID uint64, issuer string) (uint64, error) {
	if err := s.requireCaller(ctx, issuer); err != nil {
		return 0, err
	}
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return 0, err
	}
	unit, err := s.loadActiveWaste(ctx, wasteID)
	if err != nil {
		return 0, err
	}
	program, err := s.loadIncentive(ctx, incentiveID)
	if err != nil {
		return 0, err
	}
	if program.Issuer != issuer {
		return 0, fmt.Errorf("%w: only the issuer can settle against incentive %d", ErrUnauthorized, incentiveID)
	}
	if !program.Active {
		return 0, fmt.Errorf("%w: incentive %d is not active", ErrInvalidState, incentiveID)
	}
	if program.Category != unit.Category {
		return 0, fmt.Errorf("%w: incentive category %s does not match waste category %s", ErrInvalidInput, program.Category, unit.Category)
	}

	totalReward, err := program.RewardFor(unit.WeightGrams)
	if err != nil {
		return 0, err
	}
	if totalReward > program.RemainingBudget {
		return 0, fmt.Errorf("%w: reward %d exceeds remaining budget %d", ErrInsufficientBudget, totalReward, program.RemainingBudget)
	}

	history, err := s.GetWasteTransferHistory(ctx, wasteID)
	if err != nil {
		return 0, err
	}
	collectorShare, err := checkedMul(totalReward, cfg.CollectorPercent)
	if err != nil {
		return 0, err
	}
	collectorShare /= 100
	ownerShare, err := checkedMul(totalReward, cfg.OwnerPercent)
	if err != nil {
		return 0, err
	}
	ownerShare /= 100

	// Every historical collector recipient gets the full collector share.
	// The transition table keeps any chain to at most one collector hop,
	// which is what makes the remainder below non-negative.
	var distributed uint64
	payments := []payment{}
	for _, record := range history {
		if !s.hasCapability(ctx, record.To, CapCollect) {
			continue
		}
		payments = append(payments, payment{to: record.To, amount: collectorShare})
		distributed, err = checkedAdd(distributed, collectorShare)
		if err != nil {
			return 0, err
		}
	}
	payments = append(payments, payment{to: unit.Submitter, amount: ownerShare})
	distributed, err = checkedAdd(distributed, ownerShare)
	if err != nil {
		return 0, err
	}
	remainder, err := checkedSub(totalReward, distributed)
	if err != nil {
		return 0, err
	}
	payments = append(payments, payment{to: unit.CurrentOwner, amount: remainder})

	for _, p := range payments {
		if p.amount == 0 {
			continue
		}
		if err := s.pay(ctx, cfg, issuer, p.to, p.amount); err != nil {
			return 0, err
		}
		if err := s.creditEarnings(ctx, p.to, p.amount); err != nil {
			return 0, err
		}
	}

	program.Debit(totalReward)
	if err := putJSON(ctx, incentiveKey(incentiveID), program); err != nil {
		return 0, err
	}
	if err := addToTotal(ctx, totalTokensKey, totalReward); err != nil {
		return 0, err
	}

	emitEvent(ctx, eventRewardsSettled, settlementEvent{
		WasteID:     wasteID,
		IncentiveID: incentiveID,
		Issuer:      issuer,
		TotalReward: totalReward,
	})
	s.log().Info("rewards settled",
		zap.Uint64("wasteId", wasteID),
		zap.Uint64("incentiveId", incentiveID),
		zap.String("issuer", issuer),
		zap.Uint64("totalReward", totalReward),
		zap.Uint64("remainingBudget", program.RemainingBudget))
	return totalReward, nil
}

// DonateToCharity moves tokens from a donor to the configured charity.
func (s *SmartContract) DonateToCharity(ctx contractapi.TransactionContextInterface, donor string, amount uint64) error {
	if err := s.requireCaller(ctx, donor); err != nil {
		return err
	}
	if amount == 0 {
		return fmt.Errorf("%w: donation amount must be greater than zero", ErrInvalidInput)
	}
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Charity == "" {
		return fmt.Errorf("%w: no charity configured", ErrInvalidState)
	}
	if err := s.pay(ctx, cfg, donor, cfg.Charity, amount); err != nil {
		return err
	}
	emitEvent(ctx, eventDonationMade, donationEvent{Donor: donor, Charity: cfg.Charity, Amount: amount})
	s.log().Info("donation made",
		zap.String("donor", donor),
		zap.String("charity", cfg.Charity),
		zap.Uint64("amount", amount))
	return nil
}
