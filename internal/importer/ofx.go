package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/normalize"
	"github.com/Veraticus/ledgerbook/internal/service"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Statement is one bank or credit card statement read from an OFX file.
// Transactions carry signed cents, their posting date and derived labels;
// container and account are left for the importer to fill in.
type Statement struct {
	AccountID    string
	Transactions []model.Transaction
}

// OFXImporter imports OFX/QFX statements through a TransactionImporter.
type OFXImporter struct {
	store service.TransactionImporter
	opts  options
}

// NewOFXImporter creates an OFX importer writing to store.
func NewOFXImporter(store service.TransactionImporter, opts ...Option) *OFXImporter {
	return &OFXImporter{store: store, opts: buildOptions(opts)}
}

// Import parses an OFX/QFX file and inserts every statement transaction into
// the container, assigned to accountID when it is non-zero. Failed inserts
// are collected in the result like CSV row errors. When ctx is canceled the
// import stops before the next transaction and returns the partial result
// with the context error.
func (o *OFXImporter) Import(ctx context.Context, r io.Reader, containerID, accountID int64) (*model.ImportResult, error) {
	statements, err := ParseOFX(r)
	if err != nil {
		return nil, err
	}

	var total int
	for _, stmt := range statements {
		total += len(stmt.Transactions)
	}

	result := &model.ImportResult{}
	done := 0
	for _, stmt := range statements {
		for i, txn := range stmt.Transactions {
			if err := ctx.Err(); err != nil {
				return result, fmt.Errorf("import canceled after %d transactions: %w", done, err)
			}

			txn.ContainerID = containerID
			txn.AccountID = accountID
			if _, err := o.store.ImportTransaction(ctx, txn); err != nil {
				msg := fmt.Sprintf("Account %s transaction %d: Failed to insert - %v", stmt.AccountID, i+1, err)
				result.ErrorCount++
				result.Errors = append(result.Errors, msg)
				slog.Warn("Skipped OFX transaction", "account", stmt.AccountID, "index", i+1, "error", err)
			} else {
				result.SuccessCount++
			}
			done++
			o.opts.progress(done, total)
		}
	}

	slog.Info("Imported OFX file",
		"container_id", containerID,
		"statements", len(statements),
		"imported", result.SuccessCount,
		"failed", result.ErrorCount)
	return result, nil
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing bracket of a bare tag line.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseOFX parses the bank and credit card statements of an OFX/QFX file.
func ParseOFX(r io.Reader) ([]Statement, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var statements []Statement

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		converted, err := convertStatement(string(stmt.BankAcctFrom.AcctID), stmt.BankTranList)
		if err != nil {
			return nil, err
		}
		statements = append(statements, converted)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		converted, err := convertStatement(string(stmt.CCAcctFrom.AcctID), stmt.BankTranList)
		if err != nil {
			return nil, err
		}
		statements = append(statements, converted)
	}

	slog.Debug("Parsed OFX file", "statements", len(statements))
	return statements, nil
}

func convertStatement(accountID string, list *ofxgo.TransactionList) (Statement, error) {
	stmt := Statement{AccountID: accountID}
	if list == nil {
		return stmt, nil
	}

	for _, ofxTx := range list.Transactions {
		txn, err := convertTransaction(ofxTx)
		if err != nil {
			return Statement{}, fmt.Errorf("account %s: %w", accountID, err)
		}
		stmt.Transactions = append(stmt.Transactions, txn)
	}
	return stmt, nil
}

// convertTransaction converts an OFX transaction to a ledger entry. OFX
// amounts are already signed: debits are negative.
func convertTransaction(ofxTx ofxgo.Transaction) (model.Transaction, error) {
	amount, err := normalize.ParseAmount(ofxTx.TrnAmt.FloatString(2))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", ofxTx.FiTID, err)
	}

	posted := ofxTx.DtPosted.UTC()
	return model.Transaction{
		Amount:      amount,
		Description: extractPayee(ofxTx),
		Category:    categoryForType(ofxTx.TrnType.String()),
		Date:        time.Date(posted.Year(), posted.Month(), posted.Day(), posted.Hour(), posted.Minute(), posted.Second(), 0, time.UTC),
	}, nil
}

// categoryForType infers a category label from the OFX transaction type
// name, such as "INT" or "DEBIT".
func categoryForType(trnType string) string {
	switch trnType {
	case "INT", "DIV":
		return "Income"
	case "FEE", "SRVCHG":
		return "Bills & Utilities"
	default:
		return model.ImportedCategory
	}
}

// extractPayee tries to get a clean payee name from OFX data.
func extractPayee(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
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
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Drop a leading "MM/DD " posting date
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
