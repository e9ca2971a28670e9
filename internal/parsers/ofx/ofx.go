// Package ofx parses OFX/QFX statements into raw statement rows.
package ofx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/rumor-ml/commons.systems/finledger/internal/parser"
)

// Parser implements OFX/QFX parsing with a stateless design. Each method
// operates solely on the input data provided, making the parser safe for
// concurrent use without locking.
type Parser struct{}

var parserInstance = &Parser{}

// NewParser returns the shared OFX parser instance.
func NewParser() *Parser {
	return parserInstance
}

// Name returns the parser identifier.
func (p *Parser) Name() string {
	return "ofx"
}

// CanParse checks the file extension and header markers (both v1 SGML and
// v2 XML formats).
func (p *Parser) CanParse(path string, header []byte) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".ofx" && ext != ".qfx" {
		return false
	}

	headerUpper := strings.ToUpper(string(header))
	return strings.Contains(headerUpper, "OFXHEADER") ||
		strings.Contains(headerUpper, "<?OFX") ||
		strings.Contains(headerUpper, "<OFX>")
}

// Parse extracts raw rows from an OFX/QFX file. Bank and credit card
// statements are supported. Amounts render as exact two-decimal strings and
// dates as ISO, which the normalizer accepts under any date policy.
func (p *Parser) Parse(ctx context.Context, r io.Reader, path string) (*parser.Statement, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX content from %s: %w", path, err)
	}

	// ofxgo.ParseResponse does not support cancellation; this check covers
	// the window between read and parse.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	response, err := ofxgo.ParseResponse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file %s (%d bytes): %w", path, len(content), err)
	}

	if len(response.Bank) > 0 {
		return p.parseBank(response, path)
	}
	if len(response.CreditCard) > 0 {
		return p.parseCreditCard(response, path)
	}

	return nil, fmt.Errorf("no supported statement type in OFX file %s: expected a bank (BANKMSGSRSV1) or credit card (CREDITCARDMSGSRSV1) statement", path)
}

// parseBank extracts rows from a bank account statement.
func (p *Parser) parseBank(resp *ofxgo.Response, path string) (*parser.Statement, error) {
	stmt, ok := resp.Bank[0].(*ofxgo.StatementResponse)
	if !ok {
		return nil, fmt.Errorf("failed to type assert bank statement: expected *ofxgo.StatementResponse, got %T", resp.Bank[0])
	}

	account := accountLabel(resp, stmt.BankAcctFrom.AcctID.String())
	if stmt.BankTranList == nil {
		return nil, fmt.Errorf("missing transaction list in bank statement %s", path)
	}

	rows, err := extractRows(stmt.BankTranList, account)
	if err != nil {
		return nil, err
	}
	return &parser.Statement{Source: path, Rows: rows}, nil
}

// parseCreditCard extracts rows from a credit card statement.
func (p *Parser) parseCreditCard(resp *ofxgo.Response, path string) (*parser.Statement, error) {
	stmt, ok := resp.CreditCard[0].(*ofxgo.CCStatementResponse)
	if !ok {
		return nil, fmt.Errorf("failed to type assert credit card statement: expected *ofxgo.CCStatementResponse, got %T", resp.CreditCard[0])
	}

	account := accountLabel(resp, stmt.CCAcctFrom.AcctID.String())
	if stmt.BankTranList == nil {
		return nil, fmt.Errorf("missing transaction list in credit card statement %s", path)
	}

	rows, err := extractRows(stmt.BankTranList, account)
	if err != nil {
		return nil, err
	}
	return &parser.Statement{Source: path, Rows: rows}, nil
}

// extractRows converts OFX transactions to raw rows.
func extractRows(tranList *ofxgo.TransactionList, account string) ([]parser.Row, error) {
	rows := make([]parser.Row, 0, len(tranList.Transactions))

	for i, txn := range tranList.Transactions {
		date := txn.DtPosted.Time
		if date.IsZero() {
			date = txn.DtUser.Time
		}
		if date.IsZero() {
			return nil, fmt.Errorf("transaction %s missing both posted date and user date", txn.FiTID.String())
		}

		// Name first, Memo as fallback, matching how banks fill the fields.
		description := strings.TrimSpace(txn.Name.String())
		if description == "" {
			description = strings.TrimSpace(txn.Memo.String())
		}

		rows = append(rows, parser.Row{
			Line:        i + 1,
			Date:        date.Format("2006-01-02"),
			Description: description,
			// FloatString performs exact rational-to-decimal rendering; no
			// float64 on the amount path.
			Amount:  txn.TrnAmt.FloatString(2),
			Account: account,
		})
	}

	return rows, nil
}

// accountLabel builds a readable account label from the signon organization
// and the account number, e.g. "TESTBANK 9876543210". Falls back to the bare
// account ID when the organization is absent.
func accountLabel(resp *ofxgo.Response, acctID string) string {
	org := strings.TrimSpace(resp.Signon.Org.String())
	if org == "" {
		return acctID
	}
	return fmt.Sprintf("%s %s", org, acctID)
}
