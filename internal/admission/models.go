package admission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ai-capital/ai-capital-backend/internal/chain"
	"github.com/ai-capital/ai-capital-backend/internal/ledger"
)

var (
	ErrUnpaid          = errors.New("User is not whitelisted.")
	ErrBusy            = errors.New("Another pitch from this address is being processed.")
	ErrRejectedContent = errors.New("pitch content rejected")

	ErrSettlementPending = errors.New("A winning pitch from this address is still being settled.")

	maxAllocation = decimal.NewFromInt(2)
)

// ValidationError is reported to the caller as a bad request with Message.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type (
	// UserMessage is accepted both as an object and as a JSON encoded string.
	UserMessage struct {
		Token      string           `json:"token"`
		TradeType  string           `json:"tradeType"`
		Allocation *decimal.Decimal `json:"allocation"`
		Pitch      string           `json:"pitch"`
	}

	Request struct {
		UserAddress             string       `json:"userAddress"`
		UserMessage             *UserMessage `json:"userMessage"`
		SwapATargetTokenAddress string       `json:"swapATargetTokenAddress"`
		SwapBTargetTokenAddress string       `json:"swapBTargetTokenAddress"`
	}

	// Submission is a validated request.
	Submission struct {
		User       common.Address
		Token      string
		TradeType  ledger.TradeType
		Allocation decimal.Decimal
		Pitch      string
		SellToken  common.Address
		BuyToken   common.Address
	}

	Outcome struct {
		AIResponse string
		Success    bool
		Handle     *uuid.UUID
	}
)

func (m *UserMessage) UnmarshalJSON(data []byte) error {
	type plain UserMessage

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return err
		}
		data = []byte(encoded)
	}

	var msg plain
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	*m = UserMessage(msg)

	return nil
}

func (r Request) Validate() (Submission, error) {
	if r.UserAddress == "" || r.UserMessage == nil {
		return Submission{}, invalid("Address & Prompt required")
	}

	user, err := chain.ParseAddress(r.UserAddress)
	if err != nil {
		return Submission{}, invalid("Invalid user address")
	}

	msg := r.UserMessage
	if strings.TrimSpace(msg.Token) == "" || strings.TrimSpace(msg.Pitch) == "" {
		return Submission{}, invalid("Token & Pitch required")
	}

	tradeType := ledger.TradeType(strings.ToLower(msg.TradeType))
	if !tradeType.Valid() {
		return Submission{}, invalid("Trade type must be buy or sell")
	}

	if msg.Allocation == nil {
		return Submission{}, invalid("Allocation required")
	}

	if msg.Allocation.IsNegative() || msg.Allocation.GreaterThan(maxAllocation) {
		return Submission{}, invalid("Allocation must be between 0 and %s", maxAllocation)
	}

	if r.SwapATargetTokenAddress == "" || r.SwapBTargetTokenAddress == "" {
		return Submission{}, invalid("Swap target token addresses required")
	}

	sell, err := chain.ParseAddress(r.SwapATargetTokenAddress)
	if err != nil {
		return Submission{}, invalid("Invalid swap target token address")
	}

	buy, err := chain.ParseAddress(r.SwapBTargetTokenAddress)
	if err != nil {
		return Submission{}, invalid("Invalid swap target token address")
	}

	return Submission{
		User:       user,
		Token:      msg.Token,
		TradeType:  tradeType,
		Allocation: *msg.Allocation,
		Pitch:      msg.Pitch,
		SellToken:  sell,
		BuyToken:   buy,
	}, nil
}

// Address is the lower case hex form stored in the ledger.
func (s Submission) Address() string {
	return ledger.NormalizeAddress(s.User.Hex())
}

// SwapPercent is the whole percent passed to the swap, fractions round up.
func (s Submission) SwapPercent() uint64 {
	return uint64(s.Allocation.Ceil().IntPart())
}
