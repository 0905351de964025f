package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/wealth-builder/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>DEBIT
<MEMO>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 3,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transactions, err := NewParser().ParseFile(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, transactions, tt.expectedCount)
			}
		})
	}
}

func TestParseBankStatement(t *testing.T) {
	stmt, err := NewParser().Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)

	require.Len(t, stmt.Accounts, 1)
	assert.Equal(t, "1234567890", stmt.Accounts[0].ID)
	assert.Equal(t, "CHECKING", stmt.Accounts[0].Name)
	assert.True(t, decimal.NewFromInt(1000).Equal(stmt.Accounts[0].Current))
	assert.True(t, stmt.Accounts[0].Available.Equal(stmt.Accounts[0].Current), "available falls back to ledger balance")

	require.Len(t, stmt.Transactions, 3)

	tx1 := stmt.Transactions[0]
	assert.Equal(t, "2024011501", tx1.ID)
	assert.Equal(t, "STARBUCKS STORE #1234", tx1.Name)
	assert.Equal(t, "STARBUCKS STORE #1234", tx1.MerchantName)
	assert.True(t, decimal.RequireFromString("25.50").Equal(tx1.Amount), "debits are positive")
	assert.Equal(t, "1234567890", tx1.AccountID)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), tx1.Date)
	assert.Equal(t, []string{"DEBIT"}, tx1.Category)

	tx2 := stmt.Transactions[1]
	assert.Equal(t, "DEBIT", tx2.Name)
	assert.Equal(t, "Whole Foods Market", tx2.MerchantName, "generic name falls back to memo")
	assert.True(t, decimal.NewFromInt(125).Equal(tx2.Amount))

	tx3 := stmt.Transactions[2]
	assert.Equal(t, "CHECK #1234", tx3.Name)
	assert.True(t, decimal.NewFromInt(500).Equal(tx3.Amount))
}

func TestParseCreditCardStatement(t *testing.T) {
	stmt, err := NewParser().Parse(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)

	require.Len(t, stmt.Accounts, 1)
	assert.Equal(t, "4111111111111111", stmt.Accounts[0].ID)
	assert.True(t, decimal.NewFromInt(-500).Equal(stmt.Accounts[0].Current))

	require.Len(t, stmt.Transactions, 2)
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", stmt.Transactions[0].Name)
	assert.True(t, decimal.RequireFromString("45.99").Equal(stmt.Transactions[0].Amount))
	assert.Equal(t, "NETFLIX.COM", stmt.Transactions[1].MerchantName)
}

func TestParse_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().Parse(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractMerchantName(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "remove POS prefix",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"},
			expected: "STARBUCKS",
		},
		{
			name:     "remove DEBIT CARD prefix",
			tx:       ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"},
			expected: "WHOLE FOODS",
		},
		{
			name:     "keep clean name",
			tx:       ofxgo.Transaction{Name: "NETFLIX.COM"},
			expected: "NETFLIX.COM",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  AMAZON.COM  "},
			expected: "AMAZON.COM",
		},
		{
			name:     "strip date stamp",
			tx:       ofxgo.Transaction{Name: "01/05 ACME GYM"},
			expected: "ACME GYM",
		},
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "ACH DEBIT 99812", Payee: &ofxgo.Payee{Name: "Acme Gym"}},
			expected: "Acme Gym",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.extractMerchantName(tt.tx))
		})
	}
}

func TestFileSource_GetTransactions(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	source := NewFileSource([]model.Transaction{
		{ID: "a", Date: day(1)},
		{ID: "b", Date: day(15)},
		{ID: "c", Date: day(31)},
	})

	local := time.FixedZone("UTC-8", -8*60*60)
	got, err := source.GetTransactions(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, local),
		time.Date(2024, 1, 31, 0, 0, 0, 0, local))
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, tx := range got {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids, "start is inclusive, end is exclusive")
	assert.Len(t, source.All(), 3)
}
