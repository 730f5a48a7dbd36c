package solana

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"
)

func decodeJSON(t *testing.T, s string) interface{} {
	var v interface{}
	d := json.NewDecoder(bytes.NewBufferString(s))
	d.UseNumber()
	require.NoError(t, d.Decode(&v))
	return v
}

func TestParseTransactionError(t *testing.T) {
	txErr, err := ParseTransactionError(nil)
	assert.NoError(t, err)
	assert.Nil(t, txErr)

	txErr, err = ParseTransactionError("AccountInUse")
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorAccountInUse, txErr.Key)
	assert.Nil(t, txErr.Instruction)
	assert.Equal(t, "AccountInUse", txErr.Error())

	txErr, err = ParseTransactionError(decodeJSON(t, `{"InstructionError": [1, "InvalidInstructionData"]}`))
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorInstructionError, txErr.Key)
	require.NotNil(t, txErr.Instruction)
	assert.Equal(t, 1, txErr.Instruction.Index)
	assert.Equal(t, InstructionErrorInvalidInstructionData, txErr.Instruction.Key)
	assert.Equal(t, "instruction 1 failed: InvalidInstructionData", txErr.Error())

	txErr, err = ParseTransactionError(decodeJSON(t, `{"InstructionError": [0, {"Custom": 17}]}`))
	require.NoError(t, err)
	require.NotNil(t, txErr.Instruction)
	assert.Equal(t, InstructionErrorCustom, txErr.Instruction.Key)
	assert.EqualValues(t, 17, txErr.Instruction.Code)
	assert.Equal(t, "instruction 0 failed: custom program error: 0x11", txErr.Error())

	// Without UseNumber, numbers decode as float64.
	var raw interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"InstructionError": [2, {"Custom": 1}]}`), &raw))
	txErr, err = ParseTransactionError(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, txErr.Instruction.Index)
	assert.EqualValues(t, 1, txErr.Instruction.Code)

	for _, invalid := range []string{
		`{"a": 1, "b": 2}`,
		`{"InstructionError": [1]}`,
		`{"InstructionError": ["x", "InvalidArgument"]}`,
		`{"InstructionError": [1, {"Custom": "x"}]}`,
		`{"InstructionError": [1, 5]}`,
	} {
		_, err = ParseTransactionError(decodeJSON(t, invalid))
		assert.Error(t, err, invalid)
	}

	_, err = ParseTransactionError(10)
	assert.Error(t, err)
}

func TestParseRPCError(t *testing.T) {
	txErr, err := ParseRPCError(nil)
	assert.NoError(t, err)
	assert.Nil(t, txErr)

	data := decodeJSON(t, `{
		"err": {"InstructionError": [1, "IncorrectProgramId"]},
		"logs": ["Program log: writing_account isn't owned by program"]
	}`)

	txErr, err = ParseRPCError(&jsonrpc.RPCError{Code: -32002, Message: "simulation failed", Data: data})
	require.NoError(t, err)
	require.NotNil(t, txErr)
	assert.Equal(t, InstructionErrorIncorrectProgramID, txErr.Instruction.Key)
	assert.Equal(t, []string{"Program log: writing_account isn't owned by program"}, txErr.Logs)

	txErr, err = ParseRPCError(&jsonrpc.RPCError{Code: -32002, Data: decodeJSON(t, `{"err": null}`)})
	assert.NoError(t, err)
	assert.Nil(t, txErr)

	_, err = ParseRPCError(&jsonrpc.RPCError{Code: -32602, Data: "bad"})
	assert.Error(t, err)
}

func TestNewTransactionError(t *testing.T) {
	txErr := NewTransactionError(TransactionErrorBlockhashNotFound)
	assert.Equal(t, TransactionErrorBlockhashNotFound, txErr.Key)
	assert.Equal(t, "BlockhashNotFound", txErr.Error())
}
