/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// State key layout. Records are JSON blobs under prefixed keys; index lists
// and counters live beside the records they point at.
const (
	configKey = "CONFIG"

	wasteCounterKey     = "WASTE_COUNT"
	transferCounterKey  = "TRANSFER_COUNT"
	incentiveCounterKey = "INCENTIVE_COUNT"

	totalWeightKey = "TOTAL_WEIGHT"
	totalTokensKey = "TOTAL_TOKENS"
)

func wasteKey(id uint64) string         { return fmt.Sprintf("WASTE_%d", id) }
func transfersKey(id uint64) string     { return fmt.Sprintf("TRANSFERS_%d", id) }
func incentiveKey(id uint64) string     { return fmt.Sprintf("INCENTIVE_%d", id) }
func participantKey(id string) string   { return "PARTICIPANT_" + id }
func issuerIndexKey(id string) string   { return "INC_ISSUER_" + id }
func participantWastesKey(id string) string { return "PWASTE_" + id }

func categoryIndexKey(c WasteCategory) string { return "INC_CAT_" + string(c) }

// getJSON unmarshals the record under key into out. The bool reports whether
// the key exists; absence is not an error.
func getJSON(ctx contractapi.TransactionContextInterface, key string, out interface{}) (bool, error) {
	data, err := ctx.GetStub().GetState(key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %v", key, err)
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %v", key, err)
	}
	return true, nil
}

func putJSON(ctx contractapi.TransactionContextInterface, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %v", key, err)
	}
	return ctx.GetStub().PutState(key, data)
}

// nextID advances the monotonic counter for one id space. Fabric discards the
// write on transaction failure, so counters stay gap-free per successful
// allocation.
func nextID(ctx contractapi.TransactionContextInterface, counterKey string) (uint64, error) {
	var current uint64
	if _, err := getJSON(ctx, counterKey, &current); err != nil {
		return 0, err
	}
	next := current + 1
	if err := putJSON(ctx, counterKey, next); err != nil {
		return 0, err
	}
	return next, nil
}

func getCounter(ctx contractapi.TransactionContextInterface, counterKey string) (uint64, error) {
	var current uint64
	if _, err := getJSON(ctx, counterKey, &current); err != nil {
		return 0, err
	}
	return current, nil
}

// addToTotal accumulates a global uint64 counter with overflow checking.
func addToTotal(ctx contractapi.TransactionContextInterface, key string, amount uint64) error {
	var current uint64
	if _, err := getJSON(ctx, key, &current); err != nil {
		return err
	}
	total, err := checkedAdd(current, amount)
	if err != nil {
		return err
	}
	return putJSON(ctx, key, total)
}

func getIDList(ctx contractapi.TransactionContextInterface, key string) ([]uint64, error) {
	ids := []uint64{}
	if _, err := getJSON(ctx, key, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// appendIDOnce appends id to the list under key, keeping insertion order and
// skipping duplicates. Index lists stay small (per participant, per issuer,
// per category), so a linear scan is fine.
func appendIDOnce(ctx contractapi.TransactionContextInterface, key string, id uint64) error {
	ids, err := getIDList(ctx, key)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return putJSON(ctx, key, append(ids, id))
}

// txTime returns the transaction timestamp in unix seconds. Timestamps are
// non-decreasing across calls but not required to be strictly increasing.
func txTime(ctx contractapi.TransactionContextInterface) (int64, error) {
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return 0, fmt.Errorf("failed to read tx timestamp: %v", err)
	}
	return ts.GetSeconds(), nil
}
