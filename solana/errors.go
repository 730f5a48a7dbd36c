package solana

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"
)

// TransactionErrorKey names a transaction failure reported by a node.
//
// Source: https://github.com/solana-labs/solana/blob/master/sdk/src/transaction.rs#L22
type TransactionErrorKey string

const (
	TransactionErrorAccountInUse            TransactionErrorKey = "AccountInUse"
	TransactionErrorAccountNotFound         TransactionErrorKey = "AccountNotFound"
	TransactionErrorInsufficientFundsForFee TransactionErrorKey = "InsufficientFundsForFee"
	TransactionErrorBlockhashNotFound       TransactionErrorKey = "BlockhashNotFound"
	TransactionErrorInstructionError        TransactionErrorKey = "InstructionError"
)

// InstructionErrorKey names the failure of a single instruction.
//
// Source: https://github.com/solana-labs/solana/blob/master/sdk/src/instruction.rs#L11
type InstructionErrorKey string

// The keys the campaign and system programs can fail with.
const (
	InstructionErrorInvalidInstructionData  InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData      InstructionErrorKey = "InvalidAccountData"
	InstructionErrorInsufficientFunds       InstructionErrorKey = "InsufficientFunds"
	InstructionErrorIncorrectProgramID      InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorProgramFailedToComplete InstructionErrorKey = "ProgramFailedToComplete"
	InstructionErrorCustom                  InstructionErrorKey = "Custom"
)

// InstructionError is the failure of the instruction at Index. Code is only
// meaningful when Key is InstructionErrorCustom.
type InstructionError struct {
	Index int
	Key   InstructionErrorKey
	Code  uint32
}

func (i InstructionError) Error() string {
	if i.Key == InstructionErrorCustom {
		return fmt.Sprintf("instruction %d failed: custom program error: 0x%x", i.Index, i.Code)
	}
	return fmt.Sprintf("instruction %d failed: %s", i.Index, i.Key)
}

// TransactionError is a transaction rejected during preflight or failed on
// chain. Instruction is set when Key is TransactionErrorInstructionError.
type TransactionError struct {
	Key         TransactionErrorKey
	Instruction *InstructionError

	// Logs are the program logs of a failed preflight simulation.
	Logs []string
}

func NewTransactionError(key TransactionErrorKey) *TransactionError {
	return &TransactionError{Key: key}
}

func (t TransactionError) Error() string {
	if t.Instruction != nil {
		return t.Instruction.Error()
	}
	return string(t.Key)
}

// ParseRPCError extracts the transaction failure carried by a JSON-RPC error,
// along with any simulation logs.
//
// A nil TransactionError is returned if the RPC error is not about the
// transaction itself (for example, a malformed request).
func ParseRPCError(rpcErr *jsonrpc.RPCError) (*TransactionError, error) {
	if rpcErr == nil {
		return nil, nil
	}

	data, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("unexpected rpc error data: %T", rpcErr.Data)
	}

	txErr, err := ParseTransactionError(data["err"])
	if txErr == nil || err != nil {
		return nil, err
	}

	logs, _ := data["logs"].([]interface{})
	for _, l := range logs {
		if s, ok := l.(string); ok {
			txErr.Logs = append(txErr.Logs, s)
		}
	}

	return txErr, nil
}

// ParseTransactionError parses the "err" value of a signature status or a
// simulation result. Known shapes are a bare key, or a single keyed object:
//
//   "AccountInUse"
//   {"InstructionError": [1, "InvalidInstructionData"]}
//   {"InstructionError": [0, {"Custom": 1}]}
func ParseTransactionError(raw interface{}) (*TransactionError, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return &TransactionError{Key: TransactionErrorKey(t)}, nil
	case map[string]interface{}:
		key, v, err := singleEntry(t)
		if err != nil {
			return nil, errors.Wrap(err, "invalid transaction error")
		}

		txErr := &TransactionError{Key: TransactionErrorKey(key)}
		if txErr.Key != TransactionErrorInstructionError {
			return txErr, nil
		}

		if txErr.Instruction, err = parseInstructionError(v); err != nil {
			return nil, errors.Wrap(err, "invalid instruction error")
		}
		return txErr, nil
	default:
		return nil, errors.Errorf("unexpected transaction error type: %T", raw)
	}
}

func parseInstructionError(v interface{}) (*InstructionError, error) {
	tuple, ok := v.([]interface{})
	if !ok || len(tuple) != 2 {
		return nil, errors.Errorf("expected [index, error] tuple, got %v", v)
	}

	index, err := parseNumber(tuple[0])
	if err != nil {
		return nil, err
	}
	ie := &InstructionError{Index: int(index)}

	switch t := tuple[1].(type) {
	case string:
		ie.Key = InstructionErrorKey(t)
	case map[string]interface{}:
		key, code, err := singleEntry(t)
		if err != nil {
			return nil, err
		}

		ie.Key = InstructionErrorKey(key)
		if ie.Key == InstructionErrorCustom {
			n, err := parseNumber(code)
			if err != nil {
				return nil, err
			}
			ie.Code = uint32(n)
		}
	default:
		return nil, errors.Errorf("unexpected instruction error type: %T", tuple[1])
	}

	return ie, nil
}

func singleEntry(m map[string]interface{}) (key string, value interface{}, err error) {
	if len(m) != 1 {
		return "", nil, errors.Errorf("expected a single entry, got %d", len(m))
	}
	for key, value = range m {
	}
	return key, value, nil
}

// parseNumber accepts what encoding/json can produce for an integer, with or
// without UseNumber.
func parseNumber(v interface{}) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Int64()
	case float64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, errors.Errorf("non numeric value: %v", v)
	}
}
