package entity

import (
	"errors"
	"fmt"
)

// ReadFailure describes a single remote read that failed. It never aborts a run;
// the affected report cell is rendered with SentinelAmount.
type ReadFailure struct {
	WalletAddress string `json:"walletAddress,omitempty"`
	TokenAddress  string `json:"tokenAddress,omitempty"`
	Operation     string `json:"operation"`
	Message       string `json:"message"`
	Err           error  `json:"-"`
}

func (e *ReadFailure) Error() string {
	switch {
	case e.WalletAddress != "" && e.TokenAddress != "":
		return fmt.Sprintf("%s failed for wallet %s token %s: %s", e.Operation, e.WalletAddress, e.TokenAddress, e.Message)
	case e.TokenAddress != "":
		return fmt.Sprintf("%s failed for token %s: %s", e.Operation, e.TokenAddress, e.Message)
	default:
		return fmt.Sprintf("%s failed for wallet %s: %s", e.Operation, e.WalletAddress, e.Message)
	}
}

func (e *ReadFailure) Unwrap() error { return e.Err }

// NewReadFailure wraps err as a ReadFailure.
func NewReadFailure(op, wallet, token string, err error) *ReadFailure {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &ReadFailure{WalletAddress: wallet, TokenAddress: token, Operation: op, Message: msg, Err: err}
}

// ConfigurationError is fatal and reported before any read is issued.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// ExportError means the final report could not be written.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export report to %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// ErrInvalidWalletAddress is returned for malformed wallet addresses.
var ErrInvalidWalletAddress = errors.New("invalid wallet address")
