package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"balance_reporter/internal/app/port"
	"balance_reporter/internal/domain/entity"
	"balance_reporter/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

const defaultInputFilePath = "data/input.json"

// inputFile is the wallet part of the structured input document.
type inputFile struct {
	Wallets []string `json:"wallets"`
}

// WalletFileLoader implements port.WalletProvider. Wallets come from the "wallets"
// array of the input JSON file, or from a line-based text file when one is set.
type WalletFileLoader struct {
	inputPath   string
	walletsFile string
	loggerInfo  func(msg string, args ...any)
	loggerWarn  func(msg string, args ...any)
}

// NewWalletFileLoader creates a new WalletFileLoader. walletsFile may be empty.
func NewWalletFileLoader(inputPath, walletsFile string, loggerInfo, loggerWarn func(msg string, args ...any)) port.WalletProvider {
	if inputPath == "" {
		inputPath = defaultInputFilePath
	}
	return &WalletFileLoader{
		inputPath:   inputPath,
		walletsFile: walletsFile,
		loggerInfo:  loggerInfo,
		loggerWarn:  loggerWarn,
	}
}

// GetWallets returns the configured wallets in file order. Entries that are not
// hex addresses are skipped with a warning; duplicates are kept, one row each.
func (l *WalletFileLoader) GetWallets() ([]entity.Wallet, error) {
	var (
		raw    []string
		source string
		err    error
	)
	if l.walletsFile != "" {
		source = l.walletsFile
		raw, err = readLines(l.walletsFile)
	} else {
		source = l.inputPath
		var in inputFile
		if err = utils.ReadJSONFile(l.inputPath, &in); err == nil {
			raw = in.Wallets
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wallets from %s: %w", source, err)
	}

	wallets := make([]entity.Wallet, 0, len(raw))
	for i, address := range raw {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		// Invalid addresses keep their row; every read for them fails and renders the sentinel.
		if !common.IsHexAddress(address) && l.loggerWarn != nil {
			l.loggerWarn("Invalid wallet address, its balances will be reported as failed", "file", source, "position", i+1, "address", address)
		}
		wallets = append(wallets, entity.Wallet{Address: address})
	}

	if l.loggerInfo != nil {
		l.loggerInfo("Wallets loaded successfully", "count", len(wallets), "path", source)
	}
	return wallets, nil
}

// readLines returns the non-empty, non-comment lines of a text file.
func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}
	return lines, nil
}
