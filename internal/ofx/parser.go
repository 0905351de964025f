// Package ofx reads transactions and balances from OFX/QFX bank exports.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Statement holds everything read from one OFX file.
type Statement struct {
	Accounts     []model.Account
	Transactions []model.Transaction
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{logger: slog.Default().With("component", "ofx")}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Mixed-case SEVERITY values are rejected by the parser
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing bracket of an opening tag
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Parse reads bank and credit card statements from reader.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) (*Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	stmt := &Statement{
		Accounts:     []model.Account{},
		Transactions: []model.Transaction{},
	}

	for _, msg := range resp.Bank {
		bank, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		accountID := string(bank.BankAcctFrom.AcctID)
		stmt.Accounts = append(stmt.Accounts, statementAccount(accountID, bank.BankAcctFrom.AcctType.String(), bank.BalAmt, bank.AvailBalAmt))
		stmt.Transactions = append(stmt.Transactions, p.convertList(bank.BankTranList, accountID)...)
	}

	for _, msg := range resp.CreditCard {
		cc, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		accountID := string(cc.CCAcctFrom.AcctID)
		stmt.Accounts = append(stmt.Accounts, statementAccount(accountID, "CREDITCARD", cc.BalAmt, cc.AvailBalAmt))
		stmt.Transactions = append(stmt.Transactions, p.convertList(cc.BankTranList, accountID)...)
	}

	p.logger.Info("Parsed OFX file",
		"accounts", len(stmt.Accounts),
		"transactions", len(stmt.Transactions))

	return stmt, nil
}

// ParseFile parses an OFX/QFX file and returns its transactions.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	stmt, err := p.Parse(ctx, reader)
	if err != nil {
		return nil, err
	}
	return stmt.Transactions, nil
}

func statementAccount(id, name string, ledger ofxgo.Amount, available *ofxgo.Amount) model.Account {
	current := amountToDecimal(ledger)
	avail := current
	if available != nil {
		avail = amountToDecimal(*available)
	}
	return model.Account{
		ID:        id,
		Name:      name,
		Available: avail,
		Current:   current,
	}
}

func (p *Parser) convertList(list *ofxgo.TransactionList, accountID string) []model.Transaction {
	if list == nil {
		return nil
	}

	transactions := make([]model.Transaction, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		transactions = append(transactions, p.convertTransaction(ofxTx, accountID))
	}
	return transactions
}

// convertTransaction converts an OFX transaction to our model. OFX amounts are
// negative for debits; they are flipped so money out is positive.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) model.Transaction {
	posted := ofxTx.DtPosted.Time
	trnType := ofxTx.TrnType.String()

	return model.Transaction{
		ID:           string(ofxTx.FiTID),
		Date:         time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC),
		Name:         strings.TrimSpace(string(ofxTx.Name)),
		MerchantName: p.extractMerchantName(ofxTx),
		Amount:       amountToDecimal(ofxTx.TrnAmt).Neg(),
		AccountID:    accountID,
		Category:     []string{trnType},
	}
}

func amountToDecimal(a ofxgo.Amount) decimal.Decimal {
	d, err := decimal.NewFromString(a.Rat.FloatString(2))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE is the cleanest source when present
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading MM/DD date stamps
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
