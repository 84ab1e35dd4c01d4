package report

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"

	"github.com/Veraticus/ledgerbook/internal/model"
)

const profitLossTemplate = `{{define "profitloss"}}## Profit and loss

_{{.StartDate}} to {{.EndDate}}_

| Income | Amount |
|:---|---:|
{{range .Income}}| {{cell .Category}} | {{money .Total}} |
{{else}}| _none_ | |
{{end}}| **Total income** | **{{money .TotalIncome}}** |

| Expense | Amount |
|:---|---:|
{{range .Expense}}| {{cell .Category}} | {{money .Total}} |
{{else}}| _none_ | |
{{end}}| **Total expense** | **{{money .TotalExpense}}** |

**Net income:** {{money .NetIncome}}
{{end}}`

const balanceSheetTemplate = `{{define "section"}}| {{.Title}} | Balance |
|:---|---:|
{{range .Accounts}}| {{cell .Name}} | {{money .Balance}} |
{{else}}| _none_ | |
{{end}}| **Total {{lower .Title}}** | **{{money .Total}}** |
{{end}}{{define "balancesheet"}}## Balance sheet

_As of {{.AsOf}}_

{{template "section" section "Assets" .Assets .TotalAssets}}
{{template "section" section "Liabilities" .Liabilities .TotalLiabilities}}
{{template "section" section "Equity" .Equity .TotalEquity}}{{end}}`

const categoryTemplate = `{{define "categories"}}| Category | Spent |
|:---|---:|
{{range .}}| {{cell .Category}} | {{money .Total}} |
{{else}}| _no expenses_ | |
{{end}}{{end}}`

const documentTemplate = `{{define "pnl-doc"}}# {{.Title}}

{{template "profitloss" .Report}}{{end}}
{{define "bs-doc"}}# {{.Title}}

{{template "balancesheet" .Report}}{{end}}
{{define "categories-doc"}}# {{.Title}}

{{template "categories" .Report}}{{end}}
{{define "summary-doc"}}# {{.Title}}

**Net flow:** {{money .Report.FlowBalance}}

### Spending by category

{{template "categories" .Report.CategoryTotals}}
{{template "profitloss" .Report.ProfitLoss}}
{{template "balancesheet" .Report.BalanceSheet}}{{end}}`

type sectionData struct {
	Title    string
	Accounts []model.AccountBalance
	Total    int64
}

type document struct {
	Report any
	Title  string
}

// Markdown renders reports as markdown documents.
type Markdown struct {
	tmpl     *template.Template
	currency Currency
}

// NewMarkdown creates a markdown renderer formatting amounts in currency.
func NewMarkdown(currency Currency) *Markdown {
	funcs := template.FuncMap{
		"money": currency.Format,
		"cell":  escapeCell,
		"lower": strings.ToLower,
		"section": func(title string, accounts []model.AccountBalance, total int64) sectionData {
			return sectionData{Title: title, Accounts: accounts, Total: total}
		},
	}

	tmpl := template.New("report").Funcs(funcs)
	for _, text := range []string{profitLossTemplate, balanceSheetTemplate, categoryTemplate, documentTemplate} {
		tmpl = template.Must(tmpl.Parse(text))
	}

	return &Markdown{tmpl: tmpl, currency: currency}
}

// ProfitLoss renders a profit and loss report for month.
func (m *Markdown) ProfitLoss(month string, r *model.ProfitLossReport) (string, error) {
	return m.execute("pnl-doc", document{Title: "Profit and loss " + month, Report: r})
}

// BalanceSheet renders a balance sheet for month.
func (m *Markdown) BalanceSheet(month string, r *model.BalanceSheetReport) (string, error) {
	return m.execute("bs-doc", document{Title: "Balance sheet " + month, Report: r})
}

// CategoryTotals renders the spending per category for month.
func (m *Markdown) CategoryTotals(month string, totals []model.CategoryTotal) (string, error) {
	return m.execute("categories-doc", document{Title: "Spending " + month, Report: totals})
}

// Summary renders a monthly summary.
func (m *Markdown) Summary(container string, s *model.MonthlySummary) (string, error) {
	return m.execute("summary-doc", document{Title: fmt.Sprintf("%s: %s", container, s.Month), Report: s})
}

func (m *Markdown) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// escapeCell keeps user text from breaking a markdown table row.
func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

// Terminal renders markdown for a terminal with glamour.
type Terminal struct {
	renderer *glamour.TermRenderer
}

// NewTerminal creates a terminal renderer. With styled false the output
// carries no color codes, for pipes and tests.
func NewTerminal(width int, styled bool) (*Terminal, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if styled {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &Terminal{renderer: r}, nil
}

// Render converts markdown to terminal output.
func (t *Terminal) Render(markdown string) (string, error) {
	out, err := t.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
