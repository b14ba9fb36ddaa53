/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// settleFixture builds the canonical chain: recycler1 submits a 5000 gram
// plastic unit, hands it to collector1, who delivers it to manufacturer1.
func settleFixture(t *testing.T, budget uint64) (*SmartContract, *testCtx) {
	t.Helper()
	s := newTestContract()
	ctx := newTestContext()
	registerDefaults(t, s, ctx)
	initDefaultConfig(t, s, ctx)

	ctx.actAs("recycler1")
	_, err := s.SubmitWaste(ctx, "PLASTIC", 5000, "recycler1", "depot A")
	require.NoError(t, err)
	_, err = s.TransferWaste(ctx, 1, "recycler1", "collector1", "")
	require.NoError(t, err)
	ctx.actAs("collector1")
	_, err = s.TransferWaste(ctx, 1, "collector1", "manufacturer1", "")
	require.NoError(t, err)

	ctx.actAs("manufacturer1")
	_, err = s.CreateIncentive(ctx, "manufacturer1", "PLASTIC", 100, budget)
	require.NoError(t, err)
	return s, ctx
}

func TestSettleRewards(t *testing.T) {
	s, ctx := settleFixture(t, 10000)

	reward, err := s.SettleRewards(ctx, 1, 1, "manufacturer1")
	require.NoError(t, err)
	assert.Equal(t, uint64(500), reward)

	program, err := s.GetIncentiveByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(9500), program.RemainingBudget)
	assert.True(t, program.Active)

	// 30% to the collector, 20% to the submitter, remainder to the holder.
	collector, err := s.GetParticipant(ctx, "collector1")
	require.NoError(t, err)
	assert.Equal(t, uint64(150), collector.TotalEarned)
	submitter, err := s.GetParticipant(ctx, "recycler1")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), submitter.TotalEarned)
	holder, err := s.GetParticipant(ctx, "manufacturer1")
	require.NoError(t, err)
	assert.Equal(t, uint64(250), holder.TotalEarned)

	stats, err := s.GetSupplyChainStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), stats.TotalTokens)

	// One token transfer per non-zero payment, through the token chaincode.
	require.Len(t, ctx.stub.invocations, 3)
	assert.Equal(t, []string{"waste-token", "Transfer", "manufacturer1", "collector1", "150"}, ctx.stub.invocations[0])
	assert.Equal(t, []string{"waste-token", "Transfer", "manufacturer1", "recycler1", "100"}, ctx.stub.invocations[1])
	assert.Equal(t, []string{"waste-token", "Transfer", "manufacturer1", "manufacturer1", "250"}, ctx.stub.invocations[2])

	assert.Contains(t, ctx.stub.events, eventRewardsSettled)
}

func TestSettleRewardsInsufficientBudget(t *testing.T) {
	s, ctx := settleFixture(t, 600)

	reward, err := s.SettleRewards(ctx, 1, 1, "manufacturer1")
	require.NoError(t, err)
	require.Equal(t, uint64(500), reward)

	program, err := s.GetIncentiveByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(100), program.RemainingBudget)

	_, err = s.SettleRewards(ctx, 1, 1, "manufacturer1")
	assert.ErrorIs(t, err, ErrInsufficientBudget)

	// The failed settlement changed nothing.
	program, err = s.GetIncentiveByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), program.RemainingBudget)
	collector, err := s.GetParticipant(ctx, "collector1")
	require.NoError(t, err)
	assert.Equal(t, uint64(150), collector.TotalEarned)
}

func TestSettleRewardsExhaustsBudget(t *testing.T) {
	s, ctx := settleFixture(t, 500)

	reward, err := s.SettleRewards(ctx, 1, 1, "manufacturer1")
	require.NoError(t, err)
	require.Equal(t, uint64(500), reward)

	// Spending the whole budget deactivates the program.
	program, err := s.GetIncentiveByID(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, program.RemainingBudget)
	assert.False(t, program.Active)

	_, err = s.SettleRewards(ctx, 1, 1, "manufacturer1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSettleRewardsValidation(t *testing.T) {
	s, ctx := settleFixture(t, 10000)
	ctx.actAs("manufacturer2")
	_, err := s.RegisterParticipant(ctx, "manufacturer2", "MANUFACTURER", "manufacturer2")
	require.NoError(t, err)

	// Only the issuer settles against its program.
	_, err = s.SettleRewards(ctx, 1, 1, "manufacturer2")
	assert.ErrorIs(t, err, ErrUnauthorized)

	ctx.actAs("manufacturer1")
	_, err = s.SettleRewards(ctx, 99, 1, "manufacturer1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.SettleRewards(ctx, 1, 99, "manufacturer1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Category mismatch.
	ctx.actAs("recycler1")
	_, err = s.SubmitWaste(ctx, "PAPER", 3000, "recycler1", "")
	require.NoError(t, err)
	ctx.actAs("manufacturer1")
	_, err = s.SettleRewards(ctx, 2, 1, "manufacturer1")
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Manually deactivated programs refuse settlement.
	_, err = s.SetIncentiveActive(ctx, 1, "manufacturer1", false)
	require.NoError(t, err)
	_, err = s.SettleRewards(ctx, 1, 1, "manufacturer1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSettleRewardsZeroRewardBelowOneKilogram(t *testing.T) {
	s := newTestContract()
	ctx := newTestContext()
	registerDefaults(t, s, ctx)
	initDefaultConfig(t, s, ctx)

	ctx.actAs("recycler1")
	_, err := s.SubmitWaste(ctx, "PLASTIC", 900, "recycler1", "")
	require.NoError(t, err)
	ctx.actAs("manufacturer1")
	_, err = s.CreateIncentive(ctx, "manufacturer1", "PLASTIC", 100, 10000)
	require.NoError(t, err)

	// Fractional kilograms round down to zero; nothing is paid.
	reward, err := s.SettleRewards(ctx, 1, 1, "manufacturer1")
	require.NoError(t, err)
	assert.Zero(t, reward)
	assert.Empty(t, ctx.stub.invocations)

	program, err := s.GetIncentiveByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), program.RemainingBudget)
	assert.True(t, program.Active)
}

func TestSettleRewardsTokenFailureAborts(t *testing.T) {
	s, ctx := settleFixture(t, 10000)
	ctx.stub.invokeFailure = "token ledger unavailable"

	_, err := s.SettleRewards(ctx, 1, 1, "manufacturer1")
	require.Error(t, err)

	// The first payment fails before any write lands.
	program, err := s.GetIncentiveByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), program.RemainingBudget)
	collector, err := s.GetParticipant(ctx, "collector1")
	require.NoError(t, err)
	assert.Zero(t, collector.TotalEarned)
	stats, err := s.GetSupplyChainStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTokens)
}

func TestSettleRewardsDeactivatedWaste(t *testing.T) {
	s, ctx := settleFixture(t, 10000)

	ctx.actAsAdmin()
	_, err := s.DeactivateWaste(ctx, 1)
	require.NoError(t, err)

	ctx.actAs("manufacturer1")
	_, err = s.SettleRewards(ctx, 1, 1, "manufacturer1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDonateToCharity(t *testing.T) {
	s := newTestContract()
	ctx := newTestContext()
	registerDefaults(t, s, ctx)
	initDefaultConfig(t, s, ctx)

	ctx.actAs("recycler1")
	require.NoError(t, s.DonateToCharity(ctx, "recycler1", 250))
	require.Len(t, ctx.stub.invocations, 1)
	assert.Equal(t, []string{"waste-token", "Transfer", "recycler1", "charity1", "250"}, ctx.stub.invocations[0])
	assert.Contains(t, ctx.stub.events, eventDonationMade)

	err := s.DonateToCharity(ctx, "recycler1", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	ctx.actAs("collector1")
	err = s.DonateToCharity(ctx, "recycler1", 10)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
