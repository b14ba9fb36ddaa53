/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"crypto/x509"
	"fmt"
	"testing"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// mockStub backs the contract with an in-memory key-value map. Only the stub
// methods the contract touches are implemented; anything else panics through
// the embedded nil interface, which keeps accidental usage visible.
type mockStub struct {
	shim.ChaincodeStubInterface

	state  map[string][]byte
	events map[string][]byte
	ts     int64

	// invokeFailure, when set, makes every cross-chaincode call fail with
	// that message. invocations records the calls in order.
	invokeFailure string
	invocations   [][]string
}

func (m *mockStub) GetState(key string) ([]byte, error) {
	return m.state[key], nil
}

func (m *mockStub) PutState(key string, value []byte) error {
	m.state[key] = value
	return nil
}

func (m *mockStub) SetEvent(name string, payload []byte) error {
	m.events[name] = payload
	return nil
}

func (m *mockStub) GetTxTimestamp() (*timestamppb.Timestamp, error) {
	return &timestamppb.Timestamp{Seconds: m.ts}, nil
}

func (m *mockStub) InvokeChaincode(chaincodeName string, args [][]byte, channel string) peer.Response {
	call := []string{chaincodeName}
	for _, arg := range args {
		call = append(call, string(arg))
	}
	m.invocations = append(m.invocations, call)
	if m.invokeFailure != "" {
		return shim.Error(m.invokeFailure)
	}
	return shim.Success(nil)
}

// mockClientIdentity carries identity attributes as a plain map. The contract
// reads "hf.EnrollmentID" for caller checks and "role" for admin gating.
type mockClientIdentity struct {
	attrs map[string]string
}

func (m *mockClientIdentity) GetID() (string, error) {
	return m.attrs["hf.EnrollmentID"], nil
}

func (m *mockClientIdentity) GetMSPID() (string, error) {
	return "Org1MSP", nil
}

func (m *mockClientIdentity) GetAttributeValue(attrName string) (string, bool, error) {
	value, found := m.attrs[attrName]
	return value, found, nil
}

func (m *mockClientIdentity) AssertAttributeValue(attrName, attrValue string) error {
	value, found := m.attrs[attrName]
	if !found || value != attrValue {
		return fmt.Errorf("attribute %s does not have value %s", attrName, attrValue)
	}
	return nil
}

func (m *mockClientIdentity) GetX509Certificate() (*x509.Certificate, error) {
	return nil, nil
}

// testCtx is the transaction context handed to contract methods under test.
type testCtx struct {
	stub     *mockStub
	identity *mockClientIdentity
}

func (c *testCtx) GetStub() shim.ChaincodeStubInterface { return c.stub }
func (c *testCtx) GetClientIdentity() cid.ClientIdentity { return c.identity }

// actAs switches the caller to a participant enrollment id.
func (c *testCtx) actAs(id string) *testCtx {
	c.identity.attrs = map[string]string{"hf.EnrollmentID": id}
	return c
}

// actAsAdmin switches the caller to an identity carrying the admin role.
func (c *testCtx) actAsAdmin() *testCtx {
	c.identity.attrs = map[string]string{"role": "admin"}
	return c
}

func newTestContext() *testCtx {
	return &testCtx{
		stub: &mockStub{
			state:  map[string][]byte{},
			events: map[string][]byte{},
			ts:     1700000000,
		},
		identity: &mockClientIdentity{attrs: map[string]string{}},
	}
}

func newTestContract() *SmartContract {
	return NewSmartContract(nil)
}

// registerDefaults seeds one participant per role: recycler1, collector1 and
// manufacturer1.
func registerDefaults(t *testing.T, s *SmartContract, ctx *testCtx) {
	t.Helper()
	for _, p := range []struct{ id, role string }{
		{"recycler1", "RECYCLER"},
		{"collector1", "COLLECTOR"},
		{"manufacturer1", "MANUFACTURER"},
	} {
		ctx.actAs(p.id)
		_, err := s.RegisterParticipant(ctx, p.id, p.role, p.id)
		require.NoError(t, err)
	}
}

// initDefaultConfig writes the standard test split: 30% collector, 20% owner.
func initDefaultConfig(t *testing.T, s *SmartContract, ctx *testCtx) {
	t.Helper()
	ctx.actAsAdmin()
	require.NoError(t, s.InitializeConfig(ctx, 30, 20, "waste-token", "charity1"))
}
