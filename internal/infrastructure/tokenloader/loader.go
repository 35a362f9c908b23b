package tokenloader

import (
	"fmt"
	"strings"

	"balance_reporter/internal/app/port"
	"balance_reporter/internal/domain/entity"
	"balance_reporter/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

const defaultInputFilePath = "data/input.json"

type inputFile struct {
	Tokens []string `json:"tokens"`
}

// TokenFileLoader implements the port.TokenProvider interface over the "tokens"
// array of the input JSON file.
type TokenFileLoader struct {
	inputPath  string
	loggerInfo func(msg string, args ...any)
	loggerWarn func(msg string, args ...any)
}

// NewTokenLoader creates a new TokenFileLoader.
func NewTokenLoader(inputPath string, loggerInfo, loggerWarn func(msg string, args ...any)) port.TokenProvider {
	if inputPath == "" {
		inputPath = defaultInputFilePath
	}
	return &TokenFileLoader{
		inputPath:  inputPath,
		loggerInfo: loggerInfo,
		loggerWarn: loggerWarn,
	}
}

// GetTokens returns the configured token contracts in file order. Addresses are
// deduplicated case-insensitively (first occurrence wins) and invalid ones skipped.
func (l *TokenFileLoader) GetTokens() ([]entity.TokenInfo, error) {
	var in inputFile
	if err := utils.ReadJSONFile(l.inputPath, &in); err != nil {
		return nil, fmt.Errorf("failed to load tokens from %s: %w", l.inputPath, err)
	}

	unique := utils.UniqueFold(in.Tokens)
	if dropped := countNonBlank(in.Tokens) - len(unique); dropped > 0 && l.loggerWarn != nil {
		l.loggerWarn("Duplicate token addresses ignored", "path", l.inputPath, "count", dropped)
	}

	tokens := make([]entity.TokenInfo, 0, len(unique))
	for _, address := range unique {
		if !common.IsHexAddress(address) {
			if l.loggerWarn != nil {
				l.loggerWarn("Skipping invalid token address", "path", l.inputPath, "address", address)
			}
			continue
		}
		tokens = append(tokens, entity.TokenInfo{Address: address})
	}

	if l.loggerInfo != nil {
		l.loggerInfo("Tokens loaded successfully", "count", len(tokens), "path", l.inputPath)
	}
	return tokens, nil
}

func countNonBlank(items []string) int {
	n := 0
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			n++
		}
	}
	return n
}
